package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartupLoggerEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	NewStartupLogger("generate").
		Version("v1.2.3").
		Storage("galleries", "/tmp/galleries").
		Feature("metrics", true).
		Config("tagger", "heuristic").
		InitDuration(3 * time.Millisecond).
		event(logger.Info())

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	app, _ := doc["app"].(map[string]any)
	if app["command"] != "generate" || app["version"] != "v1.2.3" {
		t.Errorf("app = %v", app)
	}
	if storage, _ := doc["storage"].(map[string]any); storage["galleries"] != "/tmp/galleries" {
		t.Errorf("storage = %v", doc["storage"])
	}
	if features, _ := doc["features"].(map[string]any); features["metrics"] != true {
		t.Errorf("features = %v", doc["features"])
	}
	if cfg, _ := doc["config"].(map[string]any); cfg["tagger"] != "heuristic" {
		t.Errorf("config = %v", doc["config"])
	}
	if doc["message"] != "Startup configuration" {
		t.Errorf("message = %v", doc["message"])
	}
}
