// Package logger holds the process-wide zerolog logger for the sweet shop API.
//
// main calls Init once; packages that receive no logger through their
// constructor use Get or Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	// Level accepts any zerolog level name plus "warning". Unknown or empty
	// values fall back to info.
	Level string
	// Pretty switches to zerolog's console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, when set, is stamped on every entry as "service".
	Service string
}

var (
	mu       sync.RWMutex
	root     zerolog.Logger
	rootSet  bool
	initOnce sync.Once
)

// Init builds the root logger from opts. Only the first call takes effect;
// later calls return the logger already built.
func Init(opts Options) zerolog.Logger {
	initOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		w := opts.Output
		if w == nil {
			w = os.Stdout
		}
		if opts.Pretty {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		lc := zerolog.New(w).Level(lvl).With().Timestamp().Caller()
		if opts.Service != "" {
			lc = lc.Str("service", opts.Service)
		}

		mu.Lock()
		root, rootSet = lc.Logger(), true
		mu.Unlock()
	})
	return Get()
}

// Get returns the root logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !rootSet {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component returns the root logger tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset discards the root logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	initOnce = sync.Once{}
	root, rootSet = zerolog.Logger{}, false
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
