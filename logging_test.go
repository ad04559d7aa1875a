package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if err != nil {
			t.Errorf("parseLogLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := parseLogLevel("verbose"); err == nil {
		t.Error("parseLogLevel(\"verbose\") error = nil, want error")
	}
}

func TestNewLogger_Prod(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "prod", slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("hello", "k", 1)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("prod output is not a single JSON line: %q", buf.String())
	}
	if got["msg"] != "hello" || got["app"] != appName || got["env"] != "prod" {
		t.Errorf("log line = %v", got)
	}
}

func TestNewLogger_Dev(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "dev", slog.LevelDebug)
	logger.Debug("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("dev output = %q, want it to contain the message", buf.String())
	}
}
