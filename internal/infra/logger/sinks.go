package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// ConsoleSink logrus 文本输出，可选按日期切割的 JSON 文件
type ConsoleSink struct {
	log *logrus.Logger
}

type ConsoleOption func(l *logrus.Logger) error

// WithFile 同时写入 dir/sink-%Y-%m-%d.log (JSON)
func WithFile(dir string) ConsoleOption {
	return func(l *logrus.Logger) error {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("logger: create %s: %w", dir, err)
		}
		writer, err := rotatelogs.New(
			path.Join(dir, "sink-%Y-%m-%d.log"),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("logger: rotatelogs: %w", err)
		}
		l.AddHook(lfshook.NewHook(writer, &logrus.JSONFormatter{TimestampFormat: time.DateTime}))
		return nil
	}
}

func NewConsoleSink(w io.Writer, opts ...ConsoleOption) (*ConsoleSink, error) {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return &ConsoleSink{log: l}, nil
}

func (s *ConsoleSink) Log(e Event) {
	entry := logrus.NewEntry(s.log)
	if e.Name != "" {
		entry = entry.WithField("name", e.Name)
	}
	entry.Log(logrusLevel(e.Level), e.Message())
}

func logrusLevel(l Level) logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarning:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

// ZapSink 转发到进程级 zap 日志
type ZapSink struct {
	log *zap.Logger
}

func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log.WithOptions(zap.AddCallerSkip(3))}
}

func (s *ZapSink) Log(e Event) {
	l := s.log
	if e.Name != "" {
		l = l.Named(e.Name)
	}
	switch e.Level {
	case LevelDebug:
		l.Debug(e.Message())
	case LevelWarning:
		l.Warn(e.Message())
	case LevelError:
		l.Error(e.Message())
	default:
		l.Info(e.Message())
	}
}

// MockSink 记录所有事件，测试用
type MockSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *MockSink) Log(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *MockSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *MockSink) Reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

// VoidSink 丢弃所有事件
type VoidSink struct{}

func (VoidSink) Log(Event) {}
