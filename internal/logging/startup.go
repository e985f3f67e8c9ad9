package logging

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects how a command was configured (storage, tagger,
// enhancer and feature flags) and emits it as one structured event, so a
// log excerpt is enough to tell which backend produced a result.
type StartupLogger struct {
	name         string
	version      string
	initDuration time.Duration

	storage  map[string]string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the named command
// (e.g. "generate", "gallery list").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		storage:  make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the build version baked into the binary.
func (s *StartupLogger) Version(v string) *StartupLogger {
	s.version = v
	return s
}

// Storage registers a storage location (directory, bucket, table).
func (s *StartupLogger) Storage(label, location string) *StartupLogger {
	s.storage[label] = location
	return s
}

// Feature registers a boolean feature flag (e.g. "metrics", "enhance").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
// Never pass API keys here.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long setup took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits a single structured event at debug level with everything collected.
func (s *StartupLogger) Log() {
	s.event(log.Debug())
}

func (s *StartupLogger) event(evt *zerolog.Event) {
	app := zerolog.Dict().
		Str("command", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH)
	if s.version != "" {
		app = app.Str("version", s.version)
	}
	evt = evt.Dict("app", app)

	if len(s.storage) > 0 {
		evt = evt.Dict("storage", dictFromMap(s.storage))
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Startup configuration")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
