package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/moffa90/go-mysb/bootloader"
	"github.com/moffa90/go-mysb/config"
)

// configureLogger applies the log settings; verbose forces debug level.
func configureLogger(log *logrus.Logger, cfg config.Log, verbose bool) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, config.FormatJSON) {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return nil
}

// logrusLogger adapts a logrus entry to bootloader.Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogger returns a bootloader.Logger writing to entry.
func NewLogger(entry *logrus.Entry) bootloader.Logger {
	return logrusLogger{entry: entry}
}

func (l logrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Info(msg)
}

func (l logrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}

// fields turns alternating keys and values into logrus fields.
// A trailing key without value is kept with a nil value.
func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 < len(keysAndValues) {
			f[key] = keysAndValues[i+1]
		} else {
			f[key] = nil
		}
	}
	return f
}
