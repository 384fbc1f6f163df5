package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var base = newBase(os.Stdout)

func newBase(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return l
}

// Configure sets the level and destination shared by every Logger.
func Configure(level string, out io.Writer) error {
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		base.SetLevel(lvl)
	}
	if out != nil {
		base.SetOutput(out)
	}
	return nil
}

type Logger struct{ entry *logrus.Entry }

func New(service string) *Logger { return attach(base, service) }

// Discard returns a logger that writes nowhere. Used by tests.
func Discard(service string) *Logger { return attach(newBase(io.Discard), service) }

func attach(l *logrus.Logger, service string) *Logger {
	return &Logger{entry: l.WithFields(logrus.Fields{
		"service":  service,
		"hostname": hostname(),
	})}
}

// With returns a child logger carrying extra fields on every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) log(level logrus.Level, action string, fields map[string]any, err error) {
	e := l.entry.WithField("action", action)
	if fields != nil {
		e = e.WithFields(fields)
	}
	if err != nil {
		e = e.WithError(err)
	}
	e.Log(level, action)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log(logrus.InfoLevel, action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log(logrus.DebugLevel, action, fields, nil) }
func (l *Logger) Warn(action string, err error, fields map[string]any) {
	l.log(logrus.WarnLevel, action, fields, err)
}
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(logrus.ErrorLevel, action, fields, err)
}

func hostname() string { h, _ := os.Hostname(); return h }
