package tracker

import (
    "context"
    "sync"
    "time"
)

// Pipeline 一次在途抓取流水线的运行句柄。
// 说明：只持有上下文与取消函数，不复制任何任务状态——状态以 Status Store 为准。
type Pipeline struct {
    Ctx    context.Context
    cancel context.CancelFunc
}

// Manager 在途流水线注册表。
// 功能：登记每个 job 的后台执行，支撑优雅停机时等待在途任务收尾。
type Manager struct {
    mu      sync.RWMutex
    wg      sync.WaitGroup
    running map[string]*Pipeline
}

// NewManager 构造。
func NewManager() *Manager { return &Manager{running: map[string]*Pipeline{}} }

// Start 登记流水线并返回其独立上下文。
// 说明：上下文派生自 Background 而非请求上下文，流水线生命周期长于触发它的请求。
func (m *Manager) Start(jobID string) *Pipeline {
    m.mu.Lock()
    defer m.mu.Unlock()
    ctx, cancel := context.WithCancel(context.Background())
    p := &Pipeline{Ctx: ctx, cancel: cancel}
    m.running[jobID] = p
    m.wg.Add(1)
    return p
}

// Done 注销流水线。流水线结束时必须调用，重复调用无害。
func (m *Manager) Done(jobID string) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if p, ok := m.running[jobID]; ok {
        p.cancel()
        delete(m.running, jobID)
        m.wg.Done()
    }
}

// Count 当前在途流水线数量。
func (m *Manager) Count() int {
    m.mu.RLock()
    defer m.mu.RUnlock()
    return len(m.running)
}

// Wait 等待全部在途流水线结束，最多等待 timeout。
// 返回：true 表示全部收尾；false 表示超时放弃。
func (m *Manager) Wait(timeout time.Duration) bool {
    done := make(chan struct{})
    go func() { m.wg.Wait(); close(done) }()
    select {
    case <-done:
        return true
    case <-time.After(timeout):
        return false
    }
}
