package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Logger is a service-scoped structured logger. Every entry carries the
// service name, the action being logged and the host it ran on.
type Logger struct {
	service string
	entry   *log.Entry
}

var base = newBase()

func newBase() *log.Logger {
	l := log.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{log.FieldKeyTime: "timestamp", log.FieldKeyMsg: "message"},
	})
	return l
}

// SetLevel adjusts the level of every logger created by New.
func SetLevel(level string) {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	base.SetLevel(lvl)
}

// SetOutput redirects every logger created by New, e.g. away from a
// terminal that is drawing the board.
func SetOutput(w io.Writer) { base.SetOutput(w) }

func New(service string) *Logger { return NewWithLogger(service, base) }

// NewWithLogger binds a service logger to an explicit logrus logger; tests
// use it with a null logger and a hook.
func NewWithLogger(service string, l *log.Logger) *Logger {
	return &Logger{
		service: service,
		entry:   l.WithFields(log.Fields{"service": service, "hostname": hostname()}),
	}
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{service: l.service, entry: l.entry.WithFields(fields)}
}

func (l *Logger) log(level log.Level, action string, fields map[string]any, err error) {
	e := l.entry.WithField("action", action)
	if fields != nil {
		e = e.WithFields(fields)
	}
	if err != nil {
		e = e.WithError(err)
	}
	e.Log(level, action)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log(log.InfoLevel, action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log(log.DebugLevel, action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any)  { l.log(log.WarnLevel, action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(log.ErrorLevel, action, fields, err)
}

func hostname() string { h, _ := os.Hostname(); return h }
