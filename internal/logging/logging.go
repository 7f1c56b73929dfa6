// Package logging configures the process-wide logger.
//
// Level and format come from the environment (LOG_LEVEL, LOG_FORMAT) so a
// debug session never needs a rebuild.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	log  = logrus.New()

	seenMu sync.Mutex
	seen   = map[string]struct{}{}
)

// L returns the shared logger, initializing it on first use.
func L() *logrus.Logger {
	once.Do(setup)
	return log
}

func setup() {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
}

// WarnOnce logs a warning the first time class is seen and swallows repeats.
// Per-frame code paths use it so a degenerate polygon cannot flood the log at
// render rate.
func WarnOnce(class string, fields logrus.Fields, msg string) {
	seenMu.Lock()
	_, dup := seen[class]
	if !dup {
		seen[class] = struct{}{}
	}
	seenMu.Unlock()
	if dup {
		return
	}
	L().WithFields(fields).Warn(msg)
}
