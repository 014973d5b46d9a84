package game

import (
	"sync"
	"time"
)

// CancelFunc 取消一个周期任务，可重复调用
type CancelFunc func()

// Scheduler 周期任务调度器
type Scheduler interface {
	// Every 每隔 interval 执行一次 task，直到返回的 CancelFunc 被调用
	Every(interval time.Duration, task func()) CancelFunc
}

// TickerScheduler 基于 time.Ticker 的调度器
type TickerScheduler struct{}

// NewTickerScheduler 创建调度器
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Every 启动一个 goroutine 周期执行任务
func (s *TickerScheduler) Every(interval time.Duration, task func()) CancelFunc {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				task()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// ManualScheduler 手动推进的调度器，用于测试
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]func()
}

// NewManualScheduler 创建手动调度器
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

// Every 登记任务，间隔被忽略
func (s *ManualScheduler) Every(_ time.Duration, task func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.tasks[id] = task

	return func() {
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
	}
}

// Advance 对所有登记中的任务执行 n 次
func (s *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		s.mu.Lock()
		tasks := make([]func(), 0, len(s.tasks))
		for _, task := range s.tasks {
			tasks = append(tasks, task)
		}
		s.mu.Unlock()

		for _, task := range tasks {
			task()
		}
	}
}

// Active 当前登记中的任务数
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
