package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger Logger 的 zap 实现，Named/With 派生的子日志器与父日志器共享级别
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

var _ Logger = (*ZapLogger)(nil)

// New 创建输出到 out 的控制台格式日志器，out 为 nil 时输出到 stderr
func New(out io.Writer, level Level, opts ...Option) *ZapLogger {
	if out == nil {
		out = os.Stderr
	}
	lv := zap.NewAtomicLevelAt(toZapLevel(level))
	core := zapcore.NewCore(newConsoleEncoder(), zapcore.AddSync(out), lv)
	return wrap(zap.New(core, opts...), lv)
}

// Nop 返回丢弃所有输出的日志器
func Nop() *ZapLogger {
	return wrap(zap.NewNop(), zap.NewAtomicLevel())
}

func wrap(l *zap.Logger, lv zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{base: l, sugar: l.Sugar(), level: lv}
}

const timeLayout = "2006-01-02 15:04:05.000"

// newConsoleEncoder 单行输出：[时间] [级别] <名称> [文件:行] 消息 字段
func newConsoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.ConsoleSeparator = " "
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + t.Format(timeLayout) + "]")
	}
	cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + l.CapitalString() + "]")
	}
	cfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("<" + name + ">")
	}
	cfg.EncodeCaller = func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + c.TrimmedPath() + "]")
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// Named 返回带名称的子日志器，多次调用以 "." 连接
func (l *ZapLogger) Named(name string) *ZapLogger {
	return wrap(l.base.Named(name), l.level)
}

// With 返回携带固定字段的子日志器
func (l *ZapLogger) With(fields ...Field) *ZapLogger {
	return wrap(l.base.With(fields...), l.level)
}

// SetLevel 调整级别，对所有共享级别的日志器生效
func (l *ZapLogger) SetLevel(level Level) { l.level.SetLevel(toZapLevel(level)) }

func (l *ZapLogger) Debug(msg string, fields ...Field) { l.base.Debug(msg, fields...) }
func (l *ZapLogger) Info(msg string, fields ...Field)  { l.base.Info(msg, fields...) }
func (l *ZapLogger) Warn(msg string, fields ...Field)  { l.base.Warn(msg, fields...) }
func (l *ZapLogger) Error(msg string, fields ...Field) { l.base.Error(msg, fields...) }
func (l *ZapLogger) Panic(msg string, fields ...Field) { l.base.Panic(msg, fields...) }
func (l *ZapLogger) Fatal(msg string, fields ...Field) { l.base.Fatal(msg, fields...) }

func (l *ZapLogger) Debugf(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }
func (l *ZapLogger) Infof(format string, v ...interface{})  { l.sugar.Infof(format, v...) }
func (l *ZapLogger) Warnf(format string, v ...interface{})  { l.sugar.Warnf(format, v...) }
func (l *ZapLogger) Errorf(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }
func (l *ZapLogger) Panicf(format string, v ...interface{}) { l.sugar.Panicf(format, v...) }
func (l *ZapLogger) Fatalf(format string, v ...interface{}) { l.sugar.Fatalf(format, v...) }

// Sync 刷新缓冲
func (l *ZapLogger) Sync() error { return l.base.Sync() }
