package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Field = zap.Field

func String(key, val string) Field                 { return zap.String(key, val) }
func Strings(key string, val []string) Field       { return zap.Strings(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Err(e error) Field                            { return zap.Error(e) }

// Stringer 延迟调用 String()，级别被过滤时不求值
func Stringer(key string, val fmt.Stringer) Field { return zap.Stringer(key, val) }
