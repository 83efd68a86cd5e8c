package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/events"
	"github.com/charlie0129/battnotify/pkg/monitor"
	"github.com/charlie0129/battnotify/pkg/notify"
	"github.com/charlie0129/battnotify/pkg/probe"
	"github.com/charlie0129/battnotify/pkg/sound"
)

const appName = "battnotify"

// Options configures Run.
type Options struct {
	ConfigPath string
	// DefaultConfig runs with the built-in configuration instead of reading
	// ConfigPath.
	DefaultConfig  bool
	UnixSocketPath string
	BatteryIndex   int
	NoSound        bool
}

func loadConfig(opts Options) (*config.File, error) {
	if opts.DefaultConfig {
		logrus.Info("using built-in default config")
		return config.NewDefault(""), nil
	}
	return config.NewFile(opts.ConfigPath)
}

// newEmitter wires the sink and player, publishing every delivery to hub.
func newEmitter(sink notify.Sink, player sound.Player, hub *events.EventHub) *notify.Emitter {
	return &notify.Emitter{
		Sink:   sink,
		Player: player,
		OnSent: func(req notify.Request, err error) {
			ev := events.NotificationSentEvent{
				Summary: req.Summary,
				Body:    req.Body,
				Urgency: req.Urgency.String(),
				Ts:      time.Now().Unix(),
			}
			if err != nil {
				ev.Error = err.Error()
			}
			hub.Publish(events.NotificationSent, ev)
		},
	}
}

func Run(opts Options) error {
	conf, err := loadConfig(opts)
	if err != nil {
		if errors.Is(err, config.ErrNoConfigFile) {
			logrus.Errorf("config file %s not found. Create one with `battnotify config init' or run with --default-config", opts.ConfigPath)
		}
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	bat, err := probe.Open(opts.BatteryIndex)
	if err != nil {
		logrus.Fatalf("failed to open battery: %v", err)
	}

	sink, err := notify.NewDBusSink(appName)
	if err != nil {
		logrus.Fatalf("failed to connect to the notification server: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logrus.Errorf("failed to close dbus connection: %v", err)
		}
	}()

	var player sound.Player = sound.Nop{}
	if !opts.NoSound {
		player = sound.NewPlayer(conf.SoundCommand(), filepath.Dir(opts.ConfigPath))
	}

	hub := events.NewEventHub()
	emitter := newEmitter(sink, player, hub)

	mon, err := monitor.New(bat, conf, emitter)
	if err != nil {
		logrus.Fatalf("failed to start battery monitor: %v", err)
	}

	status := newStatusStore(mon.Snapshot())
	loop := newPollLoop(mon, conf, status, hub)

	router := setupRoutes(&handlers{
		conf:    conf,
		status:  status,
		hub:     hub,
		emitter: emitter,
	})
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	l, err := listen(opts.UnixSocketPath)
	if err != nil {
		return err
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.run(ctx)
	}()

	// Receive SIGHUP to reload config. The loop applies it between ticks.
	hupc := make(chan os.Signal, 1)
	signal.Notify(hupc, syscall.SIGHUP)
	defer signal.Stop(hupc)
	go func() {
		for range hupc {
			logrus.Info("caught SIGHUP, reloading config")
			loop.requestReload()
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	cancel()
	<-loopDone

	logrus.Info("shutting down http server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	shutdownCancel()

	logrus.Info("exiting")
	return nil
}

// listen creates the unix socket, replacing a stale one left by a crashed
// daemon. Only the owner can connect.
func listen(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, pkgerrors.Wrapf(err, "failed to remove stale socket %s", path)
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to listen on %s", path)
	}
	if err := os.Chmod(path, 0600); err != nil {
		_ = l.Close()
		return nil, pkgerrors.Wrapf(err, "failed to chmod %s", path)
	}
	return l, nil
}
