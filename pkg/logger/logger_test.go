package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func Test_LOG(t *testing.T) {
	defer func() { _ = Sync() }()
	Info("Info msg")
	Warn("Warn msg")
	Error("Error msg")
	Debug("Debug msg", Int("age", 3))
}

// CustomLogger 自定义日志实现示例
type CustomLogger struct{}

func (c *CustomLogger) Debug(msg string, fields ...Field)      {}
func (c *CustomLogger) Info(msg string, fields ...Field)       {}
func (c *CustomLogger) Warn(msg string, fields ...Field)       {}
func (c *CustomLogger) Error(msg string, fields ...Field)      {}
func (c *CustomLogger) Panic(msg string, fields ...Field)      {}
func (c *CustomLogger) Fatal(msg string, fields ...Field)      {}
func (c *CustomLogger) Debugf(format string, v ...interface{}) {}
func (c *CustomLogger) Infof(format string, v ...interface{})  {}
func (c *CustomLogger) Warnf(format string, v ...interface{})  {}
func (c *CustomLogger) Errorf(format string, v ...interface{}) {}
func (c *CustomLogger) Panicf(format string, v ...interface{}) {}
func (c *CustomLogger) Fatalf(format string, v ...interface{}) {}
func (c *CustomLogger) SetLevel(level Level)                   {}
func (c *CustomLogger) Sync() error                            { return nil }

func Test_CustomLogger(t *testing.T) {
	custom := &CustomLogger{}
	ReplaceDefault(custom)

	Info("test custom logger")
	Debugf("test %s", "custom logger")

	ReplaceDefault(New(nil, InfoLevel, AddCaller(), AddCallerSkip(2)))
}

func Test_LevelMapping(t *testing.T) {
	if toZapLevel(DebugLevel) != -1 {
		t.Errorf("DebugLevel mapping failed: got %d, want -1", toZapLevel(DebugLevel))
	}
	if toZapLevel(InfoLevel) != 0 {
		t.Errorf("InfoLevel mapping failed: got %d, want 0", toZapLevel(InfoLevel))
	}
	if toZapLevel(WarnLevel) != 1 {
		t.Errorf("WarnLevel mapping failed: got %d, want 1", toZapLevel(WarnLevel))
	}
	if toZapLevel(ErrorLevel) != 2 {
		t.Errorf("ErrorLevel mapping failed: got %d, want 2", toZapLevel(ErrorLevel))
	}
	if toZapLevel(PanicLevel) != 4 {
		t.Errorf("PanicLevel mapping failed: got %d, want 4 (skip DPanic=3)", toZapLevel(PanicLevel))
	}
	if toZapLevel(FatalLevel) != 5 {
		t.Errorf("FatalLevel mapping failed: got %d, want 5", toZapLevel(FatalLevel))
	}
}

func Test_ParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		" warn ":  WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) 返回错误: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("未知级别应返回错误")
	}
}

func Test_SetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("Warn 级别下不应输出 Info: %q", buf.String())
	}

	l.SetLevel(DebugLevel)
	l.Debug("shown", String("k", "v"))
	out := buf.String()
	if !strings.Contains(out, "[DEBUG]") || !strings.Contains(out, "shown") || !strings.Contains(out, "v") {
		t.Errorf("输出格式错误: %q", out)
	}
}

func Test_NamedWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("fsm").With(String("machine", "player"))
	l.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "<fsm>") {
		t.Errorf("缺少名称: %q", out)
	}
	if !strings.Contains(out, "player") {
		t.Errorf("缺少固定字段: %q", out)
	}
}

type countingStringer struct{ calls int }

func (c *countingStringer) String() string {
	c.calls++
	return "a => b"
}

func Test_StringerLazy(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	s := &countingStringer{}

	l.Debug("filtered", Stringer("rule", s))
	if s.calls != 0 {
		t.Errorf("被过滤的日志不应调用 String(): %d", s.calls)
	}

	l.Info("kept", Stringer("rule", s), Duration("elapsed", 1500*time.Millisecond))
	out := buf.String()
	if s.calls != 1 || !strings.Contains(out, "a => b") || !strings.Contains(out, "1.5s") {
		t.Errorf("输出错误: calls=%d %q", s.calls, out)
	}
}

func Test_SugarFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("fsm")
	l.Infof("state %s", "ready")
	l.Debugf("hidden %d", 1)

	out := buf.String()
	if !strings.Contains(out, "[INFO] <fsm>") || !strings.Contains(out, "state ready") || strings.Contains(out, "hidden") {
		t.Errorf("格式化输出错误: %q", out)
	}
}

func Test_Nop(t *testing.T) {
	l := Nop()
	l.SetLevel(DebugLevel)
	l.Info("discarded")
	if err := l.Sync(); err != nil {
		t.Errorf("Nop Sync 返回错误: %v", err)
	}
}

func Test_NewFromConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, closer, err := NewFromConfig(Config{Level: "info", File: path, MaxSizeMB: 1}, nil)
	if err != nil {
		t.Fatalf("创建日志器失败: %v", err)
	}
	if closer == nil {
		t.Fatal("文件输出应返回 closer")
	}

	l.Info("written to file")
	_ = l.Sync()
	_ = closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("日志文件内容错误: %q", string(data))
	}
}

func Test_NewFromConfig_Fallback(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := NewFromConfig(Config{Level: "debug"}, &buf)
	if err != nil {
		t.Fatalf("创建日志器失败: %v", err)
	}
	if closer != nil {
		t.Error("标准输出不应返回 closer")
	}
	l.Debug("to buffer")
	if !strings.Contains(buf.String(), "to buffer") {
		t.Errorf("输出错误: %q", buf.String())
	}

	if _, _, err := NewFromConfig(Config{Level: "loud"}, &buf); err == nil {
		t.Error("非法级别应返回错误")
	}
}

func Test_NewDailyRotateWriter(t *testing.T) {
	if _, err := NewDailyRotateWriter("", 0); err == nil {
		t.Error("空文件名应返回错误")
	}

	w, err := NewDailyRotateWriter(filepath.Join(t.TempDir(), "daily.log"), 0)
	if err != nil {
		t.Fatalf("创建按天切割输出失败: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("line\n")); err != nil {
		t.Errorf("写入失败: %v", err)
	}
}
