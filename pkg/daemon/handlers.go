package daemon

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/events"
	"github.com/charlie0129/battnotify/pkg/monitor"
	"github.com/charlie0129/battnotify/pkg/notify"
	"github.com/charlie0129/battnotify/pkg/version"
)

// Status is the response of GET /status.
type Status struct {
	monitor.Snapshot
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// TestNotification is the optional body of POST /notify-test.
type TestNotification struct {
	Summary string `json:"summary"`
	Body    string `json:"body"`
	Icon    string `json:"icon"`
	Urgency string `json:"urgency"`
	Sound   string `json:"sound"`
}

type handlers struct {
	conf    config.Config
	status  *statusStore
	hub     *events.EventHub
	emitter *notify.Emitter
}

func setupRoutes(h *handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", h.getStatus)
	router.GET("/config", h.getConfig)
	router.GET("/version", getVersion)
	router.GET("/events", h.getEvents)
	router.POST("/notify-test", h.postNotifyTest)

	return router
}

func (h *handlers) getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, Status{
		Snapshot: h.status.get(),
		Version:  version.Version,
		Uptime:   time.Since(h.status.started).Round(time.Second).String(),
	})
}

func (h *handlers) getConfig(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, h.conf.Raw())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// getEvents streams hub events as server-sent events until the client goes
// away.
func (h *handlers) getEvents(c *gin.Context) {
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	// Clients wait for headers before reading, and the first event may be
	// hours away.
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-sub:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *handlers) postNotifyTest(c *gin.Context) {
	var body TestNotification
	if c.Request.ContentLength != 0 {
		if err := c.BindJSON(&body); err != nil {
			c.IndentedJSON(http.StatusBadRequest, err.Error())
			_ = c.AbortWithError(http.StatusBadRequest, err)
			return
		}
	}

	snap := h.status.get()
	req := notify.Request{
		IDHint:    notify.BatteryIDHint,
		Summary:   body.Summary,
		Body:      body.Body,
		Icon:      body.Icon,
		Urgency:   notify.Normal,
		TimeoutMs: h.conf.NotificationTime(),
	}
	if req.Summary == "" {
		req.Summary = "battnotify test"
	}
	if req.Body == "" {
		req.Body = monitor.RemainingBody(snap.Stats.Percentage)
	}
	if body.Urgency != "" {
		req.Urgency = notify.ParseUrgency(body.Urgency)
	}

	h.emitter.Emit(req, body.Sound)

	logrus.Infof("test notification requested")

	c.IndentedJSON(http.StatusCreated, "ok")
}
