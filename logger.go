package polyglot

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelSink 是日志输出阈值的持有者。zap.AtomicLevel 满足该接口。
type LevelSink interface {
	Level() zapcore.Level
	SetLevel(level zapcore.Level)
}

var zapLogLevel = zap.NewAtomicLevelAt(zap.DebugLevel)

var zapLoggerConfig = zap.Config{
	Level:       zapLogLevel,
	Development: false,
	Encoding:    "console",
	EncoderConfig: zapcore.EncoderConfig{
		// Keys can be anything except the empty string.
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	},
	OutputPaths:      []string{"stdout"},
	ErrorOutputPaths: []string{"stderr"},
}

var ZapLogger = NewZapLogger()
var ZapSugarLogger = NewZapSugarLogger()

var log = ZapSugarLogger

func ZapLoggerConfig() zap.Config {
	return zapLoggerConfig
}

// LogLevel 返回进程日志共用的阈值。
func LogLevel() LevelSink {
	return zapLogLevel
}

func NewZapLogger() *zap.Logger {
	logger, err := zapLoggerConfig.Build()
	if nil != err {
		return zap.NewNop()
	}
	return logger
}

func NewZapSugarLogger() *zap.SugaredLogger {
	return ZapLogger.Sugar()
}
