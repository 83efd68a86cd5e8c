package notify

import "sync"

// Recorder is a Sink that records every request. Err, if set, is returned
// from Send after recording.
type Recorder struct {
	Err error

	mu       sync.Mutex
	requests []Request
}

var _ Sink = &Recorder{}

func (r *Recorder) Send(req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.Err
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

// Summaries returns the summary of each recorded request, in order.
func (r *Recorder) Summaries() []string {
	var s []string
	for _, req := range r.Requests() {
		s = append(s, req.Summary)
	}
	return s
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = nil
}
