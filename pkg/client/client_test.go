package client

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/battnotify/pkg/daemon"
	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

// socketDir keeps socket paths short, unix socket paths are limited to ~100 bytes.
func socketDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "bn")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func serve(t *testing.T, h http.Handler) *Client {
	t.Helper()

	sock := filepath.Join(socketDir(t), "d.sock")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(h)
	srv.Listener = l
	srv.Start()
	t.Cleanup(srv.Close)

	return NewClient(sock)
}

func TestGetStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{
  "stats": {"prevState": "Discharging", "lastNotifiedState": "Discharging", "currentState": "Unknown", "percentage": 42},
  "inferredState": "Charging",
  "firedLevels": [20],
  "version": "v1.2.3"
}`)
	})
	c := serve(t, mux)

	s, err := c.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 42, s.Stats.Percentage)
	assert.Equal(t, powerinfo.Unknown, s.Stats.CurrentState)
	assert.Equal(t, powerinfo.Charging, s.InferredState)
	assert.Equal(t, []int{20}, s.FiredLevels)
	assert.Equal(t, "v1.2.3", s.Version)
}

func TestGetConfigAndVersion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/config", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"poll_interval": 2000, "low_battery_levels": {"15": {"message": "low"}}}`)
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `"v1.2.3"`)
	})
	c := serve(t, mux)

	conf, err := c.GetConfig()
	require.NoError(t, err)
	require.NotNil(t, conf.PollInterval)
	assert.Equal(t, 2000, *conf.PollInterval)
	assert.Equal(t, "low", conf.LowBatteryLevels[15].Message)

	v, err := c.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", v)
}

func TestNotifyTest(t *testing.T) {
	var gotBody, gotType string
	mux := http.NewServeMux()
	mux.HandleFunc("/notify-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `"ok"`)
	})
	c := serve(t, mux)

	ret, err := c.NotifyTest(daemon.TestNotification{Summary: "hello"})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, ret)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"summary":"hello","body":"","icon":"","urgency":"","sound":""}`, gotBody)
}

func TestErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := serve(t, mux)

	_, err := c.Get("/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Get("/broken")
	assert.ErrorContains(t, err, "got 500")

	_, err = c.Send(http.MethodDelete, "/broken", "")
	assert.ErrorContains(t, err, "unknown method")
}

func TestDaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(socketDir(t), "nothing.sock"))

	_, err := c.GetVersion()
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}
