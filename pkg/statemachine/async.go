package statemachine

import (
	"context"
	"sync"
)

type transitRequest struct {
	ctx     context.Context
	to      State
	payload Payload
}

// AsyncMachine 通过队列串行处理转换请求
type AsyncMachine struct {
	*Synchronized
	queue     chan transitRequest
	stopCh    chan struct{}
	onError   func(to State, err error)
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewAsyncMachine 创建异步状态机，onError 接收失败的转换，可为 nil
func NewAsyncMachine(m *Machine, queueSize int, onError func(to State, err error)) *AsyncMachine {
	return &AsyncMachine{
		Synchronized: NewSynchronized(m),
		queue:        make(chan transitRequest, queueSize),
		stopCh:       make(chan struct{}),
		onError:      onError,
	}
}

// Start 启动处理协程
func (a *AsyncMachine) Start() {
	a.startOnce.Do(func() {
		a.wg.Add(1)
		go a.process()
	})
}

// Stop 停止处理，已入队的请求会先处理完
func (a *AsyncMachine) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
	a.wg.Wait()
}

// TransitAsync 将转换请求入队
func (a *AsyncMachine) TransitAsync(ctx context.Context, to State, p Payload) error {
	select {
	case <-a.stopCh:
		return ErrAsyncStopped
	default:
	}

	select {
	case a.queue <- transitRequest{ctx: ctx, to: to, payload: p}:
		return nil
	case <-a.stopCh:
		return ErrAsyncStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueLength 返回队列长度
func (a *AsyncMachine) QueueLength() int {
	return len(a.queue)
}

func (a *AsyncMachine) process() {
	defer a.wg.Done()

	for {
		select {
		case <-a.stopCh:
			a.drain()
			return
		case req := <-a.queue:
			a.handle(req)
		}
	}
}

func (a *AsyncMachine) drain() {
	for {
		select {
		case req := <-a.queue:
			a.handle(req)
		default:
			return
		}
	}
}

func (a *AsyncMachine) handle(req transitRequest) {
	if err := a.Transit(req.ctx, req.to, req.payload); err != nil && a.onError != nil {
		a.onError(req.to, err)
	}
}
