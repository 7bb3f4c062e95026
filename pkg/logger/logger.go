package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the key/value logging interface used across the server.
// Arguments after the message are alternating keys and values.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

type logrusLogger struct {
	log *logrus.Logger
}

func New(level string) Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return &logrusLogger{log: log}
}

func fields(args []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		f[key] = args[i+1]
	}
	return f
}

func (l *logrusLogger) Debug(msg string, args ...interface{}) {
	l.log.WithFields(fields(args)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, args ...interface{}) {
	l.log.WithFields(fields(args)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, args ...interface{}) {
	l.log.WithFields(fields(args)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, args ...interface{}) {
	l.log.WithFields(fields(args)).Error(msg)
}

func (l *logrusLogger) Fatal(msg string, args ...interface{}) {
	l.log.WithFields(fields(args)).Fatal(msg)
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything. Used in tests.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

