// Package logging provides a leveled JSON logger. The interactive viewer
// owns stdout, so the default sink is a file under the data directory.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	}
	return "unknown"
}

func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type entry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// JSONLogger writes one JSON object per line.
type JSONLogger struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	fields []Field
}

func New(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{w: w, level: level}
}

// NewFile opens (and creates, if needed) an append-only log file.
func NewFile(path string, level Level) (*JSONLogger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// Discard drops everything; handy in tests.
func Discard() *JSONLogger {
	return New(io.Discard, ErrorLevel+1)
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	var fm map[string]any
	if len(l.fields)+len(fields) > 0 {
		fm = make(map[string]any, len(l.fields)+len(fields))
		for _, f := range l.fields {
			fm[f.Key] = f.Value
		}
		for _, f := range fields {
			fm[f.Key] = f.Value
		}
	}

	e := entry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
		Fields:  fm,
	}

	data, err := json.Marshal(e)
	if err != nil {
		l.mu.Lock()
		fmt.Fprintf(l.w, `{"level":"error","msg":"marshal log entry: %v"}`+"\n", err)
		l.mu.Unlock()
		return
	}

	l.mu.Lock()
	l.w.Write(data)
	l.w.Write([]byte("\n"))
	l.mu.Unlock()
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *JSONLogger) With(fields ...Field) Logger {
	child := &JSONLogger{w: l.w, level: l.level}
	child.fields = append(append([]Field{}, l.fields...), fields...)
	return child
}
