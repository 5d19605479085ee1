package httpapi

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer; Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = parseLevel(os.Getenv("KOISERVE_LOG_LEVEL"))

// SetDefaultLogLevel sets the level used when a request carries no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logStart and logEnd bracket a prediction request at the request's level.
func logStart(r *http.Request, lvl LogLevel, msg string) {
	if lvl < LevelInfo {
		return
	}
	withRequest(zlog.Info(), r).Str("path", r.URL.Path).Msg(msg + " start")
}

func logEnd(r *http.Request, lvl LogLevel, msg string, status int, start time.Time, err error) {
	var ev *zerolog.Event
	switch {
	case err != nil && status >= http.StatusInternalServerError && lvl >= LevelError:
		ev = zlog.Error()
	case lvl >= LevelInfo:
		ev = zlog.Info()
	default:
		return
	}
	ev = withRequest(ev, r).Int("status", status).Dur("dur", time.Since(start))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg + " end")
}

func withRequest(ev *zerolog.Event, r *http.Request) *zerolog.Event {
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	return ev
}
