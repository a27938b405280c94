package scheduler

import (
    "context"
    "time"

    "github.com/mengeric/billing-collector-go/logging"
)

// Active 非终态任务的精简视图，避免与具体存储强耦合。
type Active struct {
    JobID     string
    Status    string
    UpdatedAt time.Time
}

// activeLister 仅需要列出非终态任务。
type activeLister interface {
    ListActive(ctx context.Context) ([]Active, error)
}

// StallWatcher 周期性巡检滞留任务。
// 功能：宿主进程曾中途崩溃时，任务会永远停在非终态；巡检把这类任务
// 持续写入运维日志，便于人工处置。本组件不做自动补偿。
type StallWatcher struct {
    repo       activeLister
    interval   time.Duration
    stallAfter time.Duration
}

// NewStallWatcher 构造。
// 参数：interval 巡检周期；stallAfter 超过该时长未更新的非终态任务视为滞留。
func NewStallWatcher(repo activeLister, interval, stallAfter time.Duration) *StallWatcher {
    return &StallWatcher{repo: repo, interval: interval, stallAfter: stallAfter}
}

// Start 启动巡检任务，ctx.Done 时退出。
func (w *StallWatcher) Start(ctx context.Context) {
    ticker := time.NewTicker(w.interval)
    go func() {
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                stalled, err := w.Check(ctx)
                if err != nil {
                    logging.L().Warn(ctx, "stall check failed", "err", err)
                    continue
                }
                for _, it := range stalled {
                    logging.L().Warn(ctx, "job appears stalled",
                        "job_id", it.JobID, "status", it.Status, "updated_at", it.UpdatedAt)
                }
            }
        }
    }()
}

// Check 执行一次巡检并返回滞留任务列表。
func (w *StallWatcher) Check(ctx context.Context) ([]Active, error) {
    list, err := w.repo.ListActive(ctx)
    if err != nil {
        return nil, err
    }
    cutoff := time.Now().Add(-w.stallAfter)
    out := make([]Active, 0)
    for _, it := range list {
        if it.UpdatedAt.Before(cutoff) {
            out = append(out, it)
        }
    }
    return out, nil
}
