package memstore

import (
    "context"
    "sync"
    "time"

    "github.com/mengeric/billing-collector-go/collector"
)

// Store 线程安全的内存 Storage 实现，面向开发/轻量场景的独立部署版。
// 说明：与 collector 包内置实现语义一致；保留独立包便于宿主显式注入。
type Store struct {
    mu sync.RWMutex
    m  map[string]*collector.JobRecord
}

// New 创建内存存储。
func New() *Store { return &Store{m: map[string]*collector.JobRecord{}} }

func (s *Store) Create(ctx context.Context, rec *collector.JobRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.m[rec.JobID]; ok {
        return collector.ErrAlreadyExists
    }
    s.m[rec.JobID] = rec.Clone()
    return nil
}

func (s *Store) Transition(ctx context.Context, jobID string, expect, next collector.Status, jerr *collector.JobError) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.m[jobID]
    if !ok {
        return collector.ErrNotFound
    }
    if r.Status != expect || !collector.ValidTransition(expect, next) {
        return collector.ErrConflict
    }
    r.Status = next
    r.UpdatedAt = time.Now()
    if next == collector.StatusFailed && jerr != nil {
        e := *jerr
        r.Error = &e
    }
    return nil
}

func (s *Store) AppendFile(ctx context.Context, jobID string, ref string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.m[jobID]
    if !ok {
        return collector.ErrNotFound
    }
    r.UploadedFiles = append(r.UploadedFiles, ref)
    r.UpdatedAt = time.Now()
    return nil
}

func (s *Store) Get(ctx context.Context, jobID string) (*collector.JobRecord, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    r, ok := s.m[jobID]
    if !ok {
        return nil, collector.ErrNotFound
    }
    return r.Clone(), nil
}

func (s *Store) ListActive(ctx context.Context) ([]collector.JobRecord, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]collector.JobRecord, 0)
    for _, r := range s.m {
        if !r.Status.Terminal() {
            out = append(out, *r.Clone())
        }
    }
    return out, nil
}
