package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/events"
	"github.com/charlie0129/battnotify/pkg/monitor"
)

// statusStore holds the latest snapshot for the API handlers. The loop is
// the only writer.
type statusStore struct {
	mu      sync.RWMutex
	snap    monitor.Snapshot
	started time.Time
}

func newStatusStore(initial monitor.Snapshot) *statusStore {
	return &statusStore{snap: initial, started: time.Now()}
}

func (s *statusStore) set(snap monitor.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func (s *statusStore) get() monitor.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// ticker is the part of the monitor the loop drives.
type ticker interface {
	Tick() monitor.Snapshot
	SetConfig(config.Config)
}

// pollLoop runs the monitor at a fixed interval. Every mutation of monitor
// state happens on the goroutine running run.
type pollLoop struct {
	mon      ticker
	conf     config.Config
	interval time.Duration
	status   *statusStore
	hub      *events.EventHub
	reload   chan struct{}
}

func newPollLoop(mon ticker, conf config.Config, status *statusStore, hub *events.EventHub) *pollLoop {
	return &pollLoop{
		mon:      mon,
		conf:     conf,
		interval: conf.PollInterval(),
		status:   status,
		hub:      hub,
		reload:   make(chan struct{}, 1),
	}
}

// requestReload asks the loop to reload the config before its next tick.
// Requests made while one is pending are merged.
func (l *pollLoop) requestReload() {
	select {
	case l.reload <- struct{}{}:
	default:
	}
}

func (l *pollLoop) run(ctx context.Context) {
	logrus.WithField("interval", l.interval.String()).Debug("poll loop starts")

	t := time.NewTicker(l.interval)
	defer t.Stop()

	l.tick()
	for {
		select {
		case <-ctx.Done():
			logrus.Debug("poll loop stopped")
			return
		case <-l.reload:
			l.reloadConfig()
		case <-t.C:
			l.tick()
		}
	}
}

func (l *pollLoop) tick() {
	snap := l.mon.Tick()
	l.status.set(snap)

	logrus.WithFields(logrus.Fields{
		"state":        snap.Stats.CurrentState,
		"prevState":    snap.Stats.PrevState,
		"lastNotified": snap.Stats.LastNotifiedState,
		"percentage":   snap.Stats.Percentage,
		"fired":        snap.FiredLevels,
	}).Trace("poll loop tick")

	if snap.Transition {
		l.hub.Publish(events.PowerTransition, events.PowerTransitionEvent{
			From:       snap.Stats.CurrentState.Opposite().String(),
			To:         snap.Stats.CurrentState.String(),
			Percentage: snap.Stats.Percentage,
			Ts:         snap.Time.Unix(),
		})
	}
}

func (l *pollLoop) reloadConfig() {
	if err := l.conf.Load(); err != nil {
		logrus.Errorf("failed to reload config, keeping the current one: %v", err)
		return
	}
	l.mon.SetConfig(l.conf)

	if l.conf.PollInterval() != l.interval {
		logrus.Warnf("poll interval changed to %s, restart the daemon to apply it", l.conf.PollInterval())
	}
	logrus.WithFields(l.conf.LogrusFields()).Info("config reloaded")
}
