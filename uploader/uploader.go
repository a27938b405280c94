package uploader

import (
    "context"
    "fmt"
    "strings"
)

// Uploader 账单文件上传接口。
// 功能：把下载到的文件写入持久对象存储并返回稳定引用；
// 约定：不做内部自动重试（重试策略由实现或配置决定），失败即向调用方返回 *Error。
type Uploader interface {
    Store(ctx context.Context, jobID string, seq int, name string, data []byte) (ref string, err error)
}

// Error 上传失败。
type Error struct {
    Key string
    Err error
}

func (e *Error) Error() string { return fmt.Sprintf("upload %s: %v", e.Key, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// KeyFor 推导对象存储键：<job_id>/<序号>_<文件名>。
// 说明：job_id 作为命名空间前缀隔离并发任务；序号保证同一任务内键稳定、重放不冲突。
func KeyFor(jobID string, seq int, name string) string {
    return fmt.Sprintf("%s/%04d_%s", jobID, seq, sanitize(name))
}

// sanitize 清洗文件名中的路径分隔符与空白。
func sanitize(name string) string {
    name = strings.TrimSpace(name)
    if name == "" {
        return "artifact"
    }
    r := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
    return r.Replace(name)
}
