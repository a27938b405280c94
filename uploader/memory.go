package uploader

import (
    "context"
    "sync"
)

// Memory 线程安全的内存 Uploader，用于开发与测试场景。
type Memory struct {
    mu sync.RWMutex
    m  map[string][]byte
}

// NewMemory 创建内存上传器。
func NewMemory() *Memory { return &Memory{m: map[string][]byte{}} }

// Store 实现 Uploader.Store，返回 mem://<key> 形式的引用。
func (s *Memory) Store(ctx context.Context, jobID string, seq int, name string, data []byte) (string, error) {
    key := KeyFor(jobID, seq, name)
    cp := make([]byte, len(data))
    copy(cp, data)
    s.mu.Lock()
    s.m[key] = cp
    s.mu.Unlock()
    return "mem://" + key, nil
}

// Get 按键读取已存内容（测试辅助）。
func (s *Memory) Get(key string) ([]byte, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    b, ok := s.m[key]
    return b, ok
}

// Len 已存对象数量。
func (s *Memory) Len() int {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return len(s.m)
}
