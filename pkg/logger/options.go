package logger

import "go.uber.org/zap"

type Option = zap.Option

func AddCaller() Option { return zap.AddCaller() }

func AddCallerSkip(skip int) Option { return zap.AddCallerSkip(skip) }
