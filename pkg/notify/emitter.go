package notify

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/pkg/sound"
)

// Emitter hands a request to the sink and then plays its sound. Delivery is
// fire-and-forget: failures are logged and never retried.
type Emitter struct {
	Sink   Sink
	Player sound.Player
	// OnSent, if set, is called after every delivery attempt.
	OnSent func(req Request, err error)
}

func (e *Emitter) Emit(req Request, soundPath string) {
	err := e.Sink.Send(req)
	entry := logrus.WithFields(logrus.Fields{
		"summary": req.Summary,
		"body":    req.Body,
		"urgency": req.Urgency,
	})
	if err != nil {
		entry.Errorf("failed to send notification: %v", err)
	} else {
		entry.Info("notification sent")
	}

	if e.OnSent != nil {
		e.OnSent(req, err)
	}

	if soundPath == "" || e.Player == nil {
		return
	}
	if err := e.Player.Play(soundPath); err != nil {
		logrus.WithField("sound", soundPath).Warnf("failed to play sound: %v", err)
	}
}
