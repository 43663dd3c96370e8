package main

import (
	"io"
	"sync"
)

// lockedWriter 串行化并发写入，watch 的回调运行在监听协程中
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
