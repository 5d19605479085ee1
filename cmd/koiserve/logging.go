package main

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"koiserve/internal/common/fsutil"
	"koiserve/internal/config"
)

// newLogger builds the process logger: JSON (or console when pretty) on
// stderr, plus a rotated file when cfg.File is set. The returned closer
// releases the file.
func newLogger(cfg config.LogConfig, stderr io.Writer) (zerolog.Logger, func() error, error) {
	var out io.Writer = stderr
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}
	}
	closer := func() error { return nil }
	if cfg.File != "" {
		path, err := fsutil.ExpandHome(cfg.File)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		if err := fsutil.EnsureParentDir(path); err != nil {
			return zerolog.Nop(), closer, err
		}
		lj := &lumberjack.Logger{Filename: path, MaxSize: 50, MaxBackups: 5, MaxAge: 28}
		out = zerolog.MultiLevelWriter(out, lj)
		closer = lj.Close
	}
	return zerolog.New(out).Level(zerologLevel(cfg.Level)).With().Timestamp().Logger(), closer, nil
}

// zerologLevel maps the request-level vocabulary (off|error|info|debug) onto
// zerolog levels for the process logger.
func zerologLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return zerolog.Disabled
	case "error":
		return zerolog.ErrorLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
