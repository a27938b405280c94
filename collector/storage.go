package collector

import "context"

// Storage 状态存储接口——任务状态的唯一权威（可由宿主实现或使用内置 gormstore）。
// 并发约定：设计上每个 job_id 只有唯一写者（其后台流水线）；Transition 的
// compare-and-set 作为纵深防御，出现第二写者时返回 ErrConflict 而不是丢更新。
type Storage interface {
    // Create 原子创建记录；job_id 冲突时返回 ErrAlreadyExists。
    Create(ctx context.Context, rec *JobRecord) error
    // Transition 按期望状态做 compare-and-set 迁移，同时刷新 updated_at；
    // jerr 仅在 next 为 FAILED 时写入。存量状态不等于 expect 时返回 ErrConflict，
    // 记录不存在时返回 ErrNotFound，迁移不满足单调序时返回 ErrConflict。
    Transition(ctx context.Context, jobID string, expect, next Status, jerr *JobError) error
    // AppendFile 向 uploaded_files 追加一条存储引用（仅追加，立即持久化，
    // 以便轮询方观察到部分进度）。记录不存在时返回 ErrNotFound。
    AppendFile(ctx context.Context, jobID string, ref string) error
    // Get 读取记录快照；返回值为副本，可安全并发读取。未知 id 返回 ErrNotFound。
    Get(ctx context.Context, jobID string) (*JobRecord, error)
    // ListActive 列出全部非终态记录（滞留巡检与就绪探针使用）。
    ListActive(ctx context.Context) ([]JobRecord, error)
}
