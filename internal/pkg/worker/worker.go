package worker

import (
	"time"

	"openbook_backend/pkg/logger"

	"go.uber.org/zap"
)

// VerdictTask 举报裁定后的内容下架任务
type VerdictTask struct {
	ReportID   string
	TargetType string
	TargetID   string
	Retry      int // 重试次数
}

// ContentRemover 执行内容软删除
type ContentRemover interface {
	RemoveContent(targetType, targetID string) error
}

type WorkerPool struct {
	TaskQueue  chan VerdictTask
	RetryQueue chan VerdictTask // 重试队列
	Remover    ContentRemover
	WorkerNum  int
	MaxRetry   int // 最大重试次数
}

func NewWorkerPool(remover ContentRemover, workerNum int, bufferSize int) *WorkerPool {
	return &WorkerPool{
		TaskQueue:  make(chan VerdictTask, bufferSize),
		RetryQueue: make(chan VerdictTask, bufferSize/2),
		Remover:    remover,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	logger.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WorkerPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.Remover.RemoveContent(task.TargetType, task.TargetID); err != nil {
			logger.Warn("verdict task failed",
				zap.Int("worker", id),
				zap.String("reportId", task.ReportID),
				zap.String("targetId", task.TargetID),
				zap.Error(err))

			// 如果未达到最大重试次数，加入重试队列
			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
				default:
					p.logFailedTask(task, err)
				}
			} else {
				p.logFailedTask(task, err)
			}
		}
	}
}

func (p *WorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			p.logFailedTask(task, nil)
		}
	}
}

func (p *WorkerPool) logFailedTask(task VerdictTask, err error) {
	// TODO: 接入死信队列持久化失败任务
	logger.Error("verdict task dropped",
		zap.String("reportId", task.ReportID),
		zap.String("targetType", task.TargetType),
		zap.String("targetId", task.TargetID),
		zap.Error(err))
}

func (p *WorkerPool) AddTask(task VerdictTask) {
	select {
	case p.TaskQueue <- task:
		// 任务入队成功
	default:
		p.logFailedTask(task, nil)
	}
}
