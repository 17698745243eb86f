package logger

import (
	"bytes"
	"ddi/internal/infra/container"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestModuleWithMockSink(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Use(Module(MockSinkType)))

	log, err := Resolve(c, "UserService")
	require.NoError(t, err)
	log.Info("hello", 42)
	log.Named("Other").Error(errors.New("boom"))

	sink, err := container.Resolve[*MockSink](c, MockSinkType)
	require.NoError(t, err)
	viaAlias, err := container.Resolve[Sink](c, SinkAlias)
	require.NoError(t, err)
	assert.Same(t, sink, viaAlias)

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Name: "UserService", Level: LevelInfo, Args: []any{"hello", 42}}, events[0])
	assert.Equal(t, "hello 42", events[0].Message())
	assert.Equal(t, "Other", events[1].Name)
	assert.Equal(t, "boom", events[1].Message())

	sink.Reset()
	assert.Empty(t, sink.Events())
}

func TestOnlyOneSinkPerContainer(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register(VoidSinkType))
	assert.ErrorIs(t, c.Use(Module(MockSinkType)), container.ErrDuplicateRegistration)
}

func TestLoggerWithoutSink(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register(LoggerType))
	_, err := Resolve(c, "x")
	assert.ErrorIs(t, err, container.ErrUnregisteredType)
}

func TestEventMessage(t *testing.T) {
	e := Event{Args: []any{"user", map[string]int{"id": 1}, LevelWarning, nil}}
	assert.Equal(t, `user {"id":1} WARNING null`, e.Message())
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewConsoleSink(&buf)
	require.NoError(t, err)

	New(sink).Named("Auth").Warning("denied", "GET /users/1")
	out := buf.String()
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, `msg="denied GET /users/1"`)
	assert.Contains(t, out, "name=Auth")

	buf.Reset()
	New(sink).Debug("quiet")
	assert.Contains(t, buf.String(), "level=debug")
	assert.NotContains(t, buf.String(), "name=")
}

func TestConsoleSinkWithFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	sink, err := NewConsoleSink(&buf, WithFile(dir))
	require.NoError(t, err)

	New(sink).Error("disk")

	files, err := filepath.Glob(filepath.Join(dir, "sink-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"disk"`)
}

func TestZapSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(NewZapSink(zap.New(core)))

	log.Named("Router").Debug("route", "/foo")
	log.Warning("slow")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Router", entries[0].LoggerName)
	assert.Equal(t, "route /foo", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNewZapWritesJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewZap(dir, "test")
	require.NoError(t, err)

	log.Info("started", zap.String("app", "ddi"))
	_ = log.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "app-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), `"app":"ddi"`)
}
