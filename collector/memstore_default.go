package collector

import (
    "context"
    "sync"
    "time"
)

// inMemoryStore 包内置的线程安全内存存储，默认与测试场景使用。
// 设计：为避免 import cycle 不依赖外部子包；独立部署版见 storage/memstore。
type inMemoryStore struct {
    mu sync.RWMutex
    m  map[string]*JobRecord
}

// NewMemStore 创建内置内存存储。
func NewMemStore() Storage { return &inMemoryStore{m: map[string]*JobRecord{}} }

func (s *inMemoryStore) Create(ctx context.Context, rec *JobRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.m[rec.JobID]; ok {
        return ErrAlreadyExists
    }
    s.m[rec.JobID] = rec.Clone()
    return nil
}

func (s *inMemoryStore) Transition(ctx context.Context, jobID string, expect, next Status, jerr *JobError) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.m[jobID]
    if !ok {
        return ErrNotFound
    }
    if r.Status != expect || !ValidTransition(expect, next) {
        return ErrConflict
    }
    r.Status = next
    r.UpdatedAt = time.Now()
    if next == StatusFailed && jerr != nil {
        e := *jerr
        r.Error = &e
    }
    return nil
}

func (s *inMemoryStore) AppendFile(ctx context.Context, jobID string, ref string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.m[jobID]
    if !ok {
        return ErrNotFound
    }
    r.UploadedFiles = append(r.UploadedFiles, ref)
    r.UpdatedAt = time.Now()
    return nil
}

func (s *inMemoryStore) Get(ctx context.Context, jobID string) (*JobRecord, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    r, ok := s.m[jobID]
    if !ok {
        return nil, ErrNotFound
    }
    return r.Clone(), nil
}

func (s *inMemoryStore) ListActive(ctx context.Context) ([]JobRecord, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]JobRecord, 0)
    for _, r := range s.m {
        if !r.Status.Terminal() {
            out = append(out, *r.Clone())
        }
    }
    return out, nil
}
