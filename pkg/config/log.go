package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from c, writing to stderr.
func NewLogger(c LogConfig) (*logrus.Logger, error) {
	return newLogger(c, os.Stderr)
}

func newLogger(c LogConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("log format %q: %w", c.Format, ErrInvalidConfig)
	}
	return l, nil
}

// NamedLogger returns a package logger tagged with its name.
func NamedLogger(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("logger", name)
}
