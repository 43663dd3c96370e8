package logger

import (
	"errors"
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewSizeRotateWriter 按文件大小切割的输出
// maxSizeMB/maxBackups/maxAgeDays 为 0 时使用 lumberjack 默认值
func NewSizeRotateWriter(filename string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compress,
		LocalTime:  true,
	}
}

// NewDailyRotateWriter 按天切割的输出，filename 指向最新文件的软链接
func NewDailyRotateWriter(filename string, maxAge time.Duration) (io.WriteCloser, error) {
	if filename == "" {
		return nil, errors.New("log filename is empty")
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return rotatelogs.New(
		filename+".%Y%m%d",
		rotatelogs.WithLinkName(filename),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
}
