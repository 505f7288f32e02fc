// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package boxlog is the engine's single logging entry point. Every other
// package logs through here instead of calling fmt or the stdlib log
// package directly, so verbosity and output destination stay centrally
// controlled.
package boxlog

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.Mutex
	log = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    false,
		FullTimestamp:    true,
		DisableTimestamp: false,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose switches the default logger to debug level, used by the CLI's
// -v/--dry-run flag to show skipped-ingredient noise.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// AddEventWriter tees engine events to an additional writer, used to
// maintain the append-only plain-text event log required by spec.md §6 in
// parallel with the structured stderr stream.
func AddEventWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.AddHook(&writerHook{w: w})
}

type writerHook struct{ w io.Writer }

func (h *writerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}
	_, err = h.w.Write([]byte(line))
	return err
}

func Debugf(format string, args ...interface{})   { log.Debugf(format, args...) }
func Infof(format string, args ...interface{})    { log.Infof(format, args...) }
func Warningf(format string, args ...interface{}) { log.Warnf(format, args...) }
func Errorf(format string, args ...interface{})   { log.Errorf(format, args...) }

// Fatalf logs at fatal level and terminates the process with exit code 1,
// matching the CLI's "non-zero on any error" contract (spec.md §6).
func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}
