package game

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTickInterval 计时精度为百分之一秒
const DefaultTickInterval = 10 * time.Millisecond

// SessionClock 秒表式计时器，以百分之一秒为单位累计
type SessionClock struct {
	mu        sync.Mutex
	elapsed   int64
	running   bool
	cancel    CancelFunc
	scheduler Scheduler
	interval  time.Duration
}

// NewSessionClock 创建计时器
func NewSessionClock(scheduler Scheduler, interval time.Duration) *SessionClock {
	if scheduler == nil {
		scheduler = NewTickerScheduler()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &SessionClock{
		scheduler: scheduler,
		interval:  interval,
	}
}

// Start 开始计时，已在运行时无操作
func (c *SessionClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.cancel = c.scheduler.Every(c.interval, c.tick)
}

// Stop 停止计时并保留已累计的时间，可重复调用
func (c *SessionClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *SessionClock) stopLocked() {
	if !c.running {
		return
	}
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// tick 停止后才到达的 tick 直接丢弃
func (c *SessionClock) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.elapsed++
	}
}

// Elapsed 已累计的百分之一秒数
func (c *SessionClock) Elapsed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Running 是否正在计时
func (c *SessionClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Display 格式化为 mm:ss:hh
func (c *SessionClock) Display() string {
	return FormatHundredths(c.Elapsed())
}

// FormatHundredths 将百分之一秒数格式化为 mm:ss:hh
func FormatHundredths(t int64) string {
	hundredths := t % 100
	seconds := (t / 100) % 60
	minutes := (t / 100) / 60
	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, hundredths)
}
