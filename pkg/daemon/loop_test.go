package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/events"
	"github.com/charlie0129/battnotify/pkg/monitor"
	"github.com/charlie0129/battnotify/pkg/notify"
	"github.com/charlie0129/battnotify/pkg/powerinfo"
	"github.com/charlie0129/battnotify/pkg/probe"
)

type fakeTicker struct {
	mu      sync.Mutex
	snaps   []monitor.Snapshot
	ticks   int
	configs []config.Config
}

func (f *fakeTicker) Tick() monitor.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.snaps[f.ticks%len(f.snaps)]
	f.ticks++
	return s
}

func (f *fakeTicker) SetConfig(c config.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, c)
}

func (f *fakeTicker) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticks, len(f.configs)
}

func snapshot(prev, current powerinfo.PowerState, pct int, transition bool) monitor.Snapshot {
	return monitor.Snapshot{
		Stats: monitor.BatteryStats{
			PrevState:    prev,
			CurrentState: current,
			Percentage:   pct,
		},
		Transition: transition,
		Time:       time.Unix(1700000000, 0),
	}
}

func TestPollLoopTickPublishesTransitions(t *testing.T) {
	hub := events.NewEventHub()
	sub := hub.Subscribe()
	mon := &fakeTicker{snaps: []monitor.Snapshot{
		snapshot(powerinfo.Charging, powerinfo.Charging, 90, false),
		snapshot(powerinfo.Discharging, powerinfo.Discharging, 89, true),
	}}
	status := newStatusStore(snapshot(powerinfo.Charging, powerinfo.Charging, 91, false))
	l := newPollLoop(mon, config.NewDefault(""), status, hub)

	l.tick()
	assert.Equal(t, 90, status.get().Stats.Percentage)
	assert.Len(t, sub, 0)

	l.tick()
	assert.Equal(t, 89, status.get().Stats.Percentage)
	require.Len(t, sub, 1)
	ev, err := events.DecodeAs[events.PowerTransitionEvent](<-sub)
	require.NoError(t, err)
	assert.Equal(t, events.PowerTransitionEvent{
		From:       "Charging",
		To:         "Discharging",
		Percentage: 89,
		Ts:         1700000000,
	}, ev)
}

func TestPollLoopPublishesOnlyRealTransitions(t *testing.T) {
	hub := events.NewEventHub()
	sub := hub.Subscribe()

	p := probe.NewFake(
		probe.Sample{State: powerinfo.Discharging, Percentage: 0.605},
		probe.Sample{State: powerinfo.Discharging, Percentage: 0.605},
		probe.Sample{State: powerinfo.Unknown, Percentage: 0.605},
		probe.Sample{State: powerinfo.Unknown, Percentage: 0.605},
		probe.Sample{State: powerinfo.Discharging, Percentage: 0.595},
		probe.Sample{State: powerinfo.Charging, Percentage: 0.595},
	)
	conf := config.NewDefault("")
	mon, err := monitor.New(p, conf, &notify.Emitter{Sink: &notify.Recorder{}})
	require.NoError(t, err)

	l := newPollLoop(mon, conf, newStatusStore(mon.Snapshot()), hub)

	// Startup, then a blip of Unknown readings while discharging.
	for i := 0; i < 4; i++ {
		l.tick()
	}
	assert.Len(t, sub, 0)

	l.tick()
	require.Len(t, sub, 1)
	ev := <-sub
	assert.Equal(t, events.PowerTransition, ev.Name)
	got, err := events.DecodeAs[events.PowerTransitionEvent](ev)
	require.NoError(t, err)
	assert.Equal(t, "Discharging", got.From)
	assert.Equal(t, "Charging", got.To)
	assert.Equal(t, 59, got.Percentage)
}

func TestPollLoopRunAndReload(t *testing.T) {
	p := filepath.Join(t.TempDir(), "battnotify.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"poll_interval": 10}`), 0644))
	conf, err := config.NewFile(p)
	require.NoError(t, err)

	mon := &fakeTicker{snaps: []monitor.Snapshot{snapshot(powerinfo.Charging, powerinfo.Charging, 50, false)}}
	l := newPollLoop(mon, conf, newStatusStore(monitor.Snapshot{}), events.NewEventHub())
	assert.Equal(t, 10*time.Millisecond, l.interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.run(ctx)
	}()

	require.Eventually(t, func() bool {
		ticks, _ := mon.counts()
		return ticks >= 3
	}, 2*time.Second, 5*time.Millisecond)

	// A broken file is rejected and the current config is kept.
	require.NoError(t, os.WriteFile(p, []byte(`{"poll_interval": `), 0644))
	l.requestReload()
	l.requestReload()

	require.NoError(t, os.WriteFile(p, []byte(`{"poll_interval": 10, "notification_time": 1234}`), 0644))
	require.Eventually(t, func() bool {
		l.requestReload()
		_, reloads := mon.counts()
		return reloads >= 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1234, conf.NotificationTime())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll loop did not stop")
	}
}
