// Package logger 日志：进程级 zap 日志，以及可替换 Sink 的具名 Logger。
package logger

import (
	"ddi/internal/infra/container"
	"encoding/json"
	"fmt"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Event 一条日志。Name 为空表示未命名的 Logger
type Event struct {
	Name  string
	Level Level
	Args  []any
}

// Message 参数拼接：字符串原样，error/Stringer 取文本，其余 JSON
func (e Event) Message() string {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		switch v := arg.(type) {
		case string:
			parts = append(parts, v)
		case error:
			parts = append(parts, v.Error())
		case fmt.Stringer:
			parts = append(parts, v.String())
		default:
			if b, err := json.Marshal(v); err == nil {
				parts = append(parts, string(b))
			} else {
				parts = append(parts, fmt.Sprint(v))
			}
		}
	}
	return strings.Join(parts, " ")
}

// Sink 日志输出端
type Sink interface {
	Log(e Event)
}

// SinkAlias 容器里的日志输出能力，同一容器只能有一个提供者
var SinkAlias = container.NewAlias[Sink]("Sink")

type Logger struct {
	sink Sink
	name string
}

func New(sink Sink) *Logger {
	return &Logger{sink: sink}
}

// Named 返回同一 Sink 上的具名 Logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{sink: l.sink, name: name}
}

// For 以类型名命名
func (l *Logger) For(sym container.Symbol) *Logger {
	return l.Named(sym.Name())
}

func (l *Logger) Name() string { return l.name }

func (l *Logger) Debug(args ...any)   { l.log(LevelDebug, args) }
func (l *Logger) Info(args ...any)    { l.log(LevelInfo, args) }
func (l *Logger) Warning(args ...any) { l.log(LevelWarning, args) }
func (l *Logger) Error(args ...any)   { l.log(LevelError, args) }

func (l *Logger) log(level Level, args []any) {
	l.sink.Log(Event{Name: l.name, Level: level, Args: args})
}
