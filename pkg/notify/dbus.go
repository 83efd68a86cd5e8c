package notify

import (
	"sync"

	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	notificationsName   = "org.freedesktop.Notifications"
	notificationsPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsNotify = notificationsName + ".Notify"
)

// caller is the part of dbus.BusObject we use.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DBusSink sends notifications to the freedesktop notification server on the
// session bus.
type DBusSink struct {
	appName string
	conn    *dbus.Conn
	obj     caller

	mu sync.Mutex
	// lastID remembers the server id of the last notification per IDHint,
	// so the next one with the same hint replaces it.
	lastID map[string]uint32
}

var _ Sink = &DBusSink{}

// NewDBusSink connects to the session bus.
func NewDBusSink(appName string) (*DBusSink, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to session bus")
	}

	return newDBusSink(appName, conn.Object(notificationsName, notificationsPath), conn), nil
}

func newDBusSink(appName string, obj caller, conn *dbus.Conn) *DBusSink {
	return &DBusSink{
		appName: appName,
		conn:    conn,
		obj:     obj,
		lastID:  make(map[string]uint32),
	}
}

// Send implements Sink.
func (s *DBusSink) Send(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var replacesID uint32
	if req.IDHint != "" {
		replacesID = s.lastID[req.IDHint]
	}

	call := s.obj.Call(notificationsNotify, 0,
		s.appName,
		replacesID,
		req.Icon,
		req.Summary,
		req.Body,
		[]string{},
		hints(req),
		int32(req.TimeoutMs),
	)
	if call.Err != nil {
		return pkgerrors.Wrapf(call.Err, "failed to call %s", notificationsNotify)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return pkgerrors.Wrapf(err, "failed to read notification id")
	}
	if req.IDHint != "" {
		s.lastID[req.IDHint] = id
	}

	logrus.WithFields(logrus.Fields{
		"id":         id,
		"replacesID": replacesID,
		"summary":    req.Summary,
	}).Trace("notification delivered over dbus")

	return nil
}

// Close closes the bus connection.
func (s *DBusSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func hints(req Request) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(req.Urgency)),
		// Transient notifications bypass the server's persistence.
		"transient": dbus.MakeVariant(true),
	}
	if req.IDHint != "" {
		h["synchronous"] = dbus.MakeVariant(req.IDHint)
		h["x-canonical-private-synchronous"] = dbus.MakeVariant(req.IDHint)
	}
	return h
}
