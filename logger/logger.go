/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger wraps github.com/sirupsen/logrus with the narrow surface
// this client subsystem actually needs: connection open/close, reaper
// ticks, and swallowed teardown errors. It deliberately does not reproduce
// the teacher lineage's full syslog/gorm/hclog bridging, which belongs to
// server-side programs, not a client library.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Level mirrors logrus' severity ordering, narrowed to what this library
// emits.
type Level uint8

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

func (l Level) toLogrus() logrus.Level {
	switch l {
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// Fields is one structured log entry's key/value payload.
type Fields map[string]interface{}

// Field builds a single-entry Fields, for call sites that only have one
// value to attach.
func Field(key string, val interface{}) Fields {
	return Fields{key: val}
}

func (f Fields) merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Logger is the logging contract every client subsystem depends on.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warning(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	SetLevel(level Level)
	WithFields(fields Fields) Logger
}

type logger struct {
	entry  *logrus.Logger
	fields Fields
}

// New builds a Logger backed by a fresh logrus.Logger at InfoLevel.
func New() Logger {
	l := logrus.New()
	l.SetLevel(InfoLevel.toLogrus())
	return &logger{entry: l, fields: Fields{}}
}

// NewNop builds a Logger that discards everything, for tests that only
// care about behaviour and not log output.
func NewNop() Logger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return &logger{entry: l, fields: Fields{}}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (l *logger) log(level logrus.Level, msg string, fields []Fields) {
	merged := l.fields
	for _, f := range fields {
		merged = merged.merge(f)
	}
	l.entry.WithFields(logrus.Fields(merged)).Log(level, msg)
}

func (l *logger) Debug(msg string, fields ...Fields)   { l.log(logrus.DebugLevel, msg, fields) }
func (l *logger) Info(msg string, fields ...Fields)    { l.log(logrus.InfoLevel, msg, fields) }
func (l *logger) Warning(msg string, fields ...Fields) { l.log(logrus.WarnLevel, msg, fields) }
func (l *logger) Error(msg string, fields ...Fields)   { l.log(logrus.ErrorLevel, msg, fields) }

func (l *logger) SetLevel(level Level) {
	l.entry.SetLevel(level.toLogrus())
}

func (l *logger) WithFields(fields Fields) Logger {
	return &logger{entry: l.entry, fields: l.fields.merge(fields)}
}
