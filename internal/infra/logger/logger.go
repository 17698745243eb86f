package logger

import (
	"fmt"
	"os"
	"path"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZap 进程级结构化日志：文件写 JSON，控制台彩色输出
func NewZap(dir, env string) (*zap.Logger, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("logger: create %s: %w", dir, err)
	}

	// 1. 按日期切割 (app-2025-12-14.log)，保留 30 天
	writer, err := rotatelogs.New(
		path.Join(dir, "app-%Y-%m-%d.log"),
		rotatelogs.WithMaxAge(30*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("logger: rotatelogs: %w", err)
	}

	// 2. 时间格式去掉毫秒
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format(time.DateTime))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleConfig := encoderConfig
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleLevel := zap.DebugLevel
	if env == "prod" {
		consoleLevel = zap.InfoLevel
	}

	// 3. Tee：文件 JSON (Info 以上) + 控制台
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), zap.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(os.Stdout), consoleLevel),
	)
	return zap.New(core, zap.AddCaller()), nil
}
