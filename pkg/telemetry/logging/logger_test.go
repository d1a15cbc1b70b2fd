package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"lcopilot-hq/lcopilot/pkg/config"
)

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"bad level", config.LoggingConfig{Level: "loud", Format: "json"}},
		{"bad format", config.LoggingConfig{Level: "info", Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, &bytes.Buffer{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("ruleset activated", "domain", "icc.ucp600", "rule_count", 12)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "ruleset activated" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["domain"] != "icc.ucp600" {
		t.Errorf("domain = %v", record["domain"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn record missing")
	}
}

func TestSensitiveAttributesRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("comparator configured",
		"api_key", "sk-verysecretvalue1234",
		"model", "gpt-4o-mini",
	)

	out := buf.String()
	if strings.Contains(out, "verysecretvalue") {
		t.Errorf("credential leaked: %s", out)
	}
	if !strings.Contains(out, "gpt-4o-mini") {
		t.Error("benign attribute lost")
	}
}
