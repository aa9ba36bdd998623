package cmd

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/moffa90/go-mysb/config"
)

func TestFields(t *testing.T) {
	f := fields([]interface{}{"node", "12", "block", uint16(3), 7})

	if f["node"] != "12" {
		t.Errorf("node = %v", f["node"])
	}
	if f["block"] != uint16(3) {
		t.Errorf("block = %v", f["block"])
	}
	if v, ok := f["7"]; !ok || v != nil {
		t.Errorf("trailing key should map to nil, got %v (present %v)", v, ok)
	}
	if len(fields(nil)) != 0 {
		t.Error("expected no fields")
	}
}

func TestLoggerAdapter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	log := NewLogger(logger.WithField("component", "dispatcher"))
	log.Debug("sending block", "node", "12", "block", 4)
	log.Info("sent config", "node", "12")
	log.Error("dropping message", "error", errors.New("boom"))

	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []logrus.Level{logrus.DebugLevel, logrus.InfoLevel, logrus.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d: level %v, want %v", i, e.Level, want[i])
		}
		if e.Data["component"] != "dispatcher" {
			t.Errorf("entry %d: missing component field", i)
		}
	}
	if entries[0].Data["block"] != 4 {
		t.Errorf("block field = %v", entries[0].Data["block"])
	}
	if entries[2].Message != "dropping message" {
		t.Errorf("message = %q", entries[2].Message)
	}
}

func TestConfigureLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Log
		verbose bool
		level   logrus.Level
		json    bool
		wantErr bool
	}{
		{name: "text info", cfg: config.Log{Level: "info", Format: "text"}, level: logrus.InfoLevel},
		{name: "json warn", cfg: config.Log{Level: "warn", Format: "JSON"}, level: logrus.WarnLevel, json: true},
		{name: "verbose", cfg: config.Log{Level: "error"}, verbose: true, level: logrus.DebugLevel},
		{name: "bad level", cfg: config.Log{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logrus.New()

			err := configureLogger(logger, tt.cfg, tt.verbose)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if logger.GetLevel() != tt.level {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.level)
			}
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			if isJSON != tt.json {
				t.Errorf("json formatter = %v, want %v", isJSON, tt.json)
			}
		})
	}
}
