package utils

import (
	"sync"

	"go.uber.org/zap"
)

// WorkerPool 通用协程池，用于把提交后的副作用（如事件发布）移出请求路径
type WorkerPool struct {
	jobs      chan func()
	workerNum int
	logger    *zap.Logger
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewWorkerPool(workerNum, queueSize int, logger *zap.Logger) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	return &WorkerPool{
		jobs:      make(chan func(), queueSize),
		workerNum: workerNum,
		logger:    logger,
	}
}

// Start 启动协程池
func (p *WorkerPool) Start() {
	for i := range p.workerNum {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(workerID, job)
			}
		}(i)
	}
	p.logger.Info("worker pool started", zap.Int("workers", p.workerNum))
}

// a panicking job must not take its worker down
func (p *WorkerPool) run(workerID int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker job panicked", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()
	job()
}

// Submit 提交任务到协程池，队列已满时阻塞直到有空位
func (p *WorkerPool) Submit(job func()) {
	p.jobs <- job
}

// Stop 停止接收任务，并等待队列中已有任务执行完毕
func (p *WorkerPool) Stop() {
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
