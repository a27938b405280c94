package collector

import (
    "context"
    "errors"
    "io"

    "github.com/mengeric/billing-collector-go/driver"
    "github.com/mengeric/billing-collector-go/logging"
    "github.com/mengeric/billing-collector-go/notifier"
    "github.com/mengeric/billing-collector-go/uploader"
)

// execute 单个任务的后台流水线：下载 → 逐件上传 → 终态 → 通知。
// 并发模型：每个 job_id 只有这一个写者，流水线内严格串行；
// 任何失败都终结本任务并记入任务记录，绝不向外抛出。
func (s *Service) execute(ctx context.Context, jobID string, drv driver.Driver, creds driver.Credentials, maxPages int) {
    defer s.trk.Done(jobID)
    log := logging.WithJob(jobID)

    cur := StatusPending
    if err := s.advance(ctx, jobID, &cur, StatusDownloading, nil); err != nil {
        log.Error(ctx, "enter DOWNLOADING failed", "err", err)
        return
    }

    stream, err := drv.Open(ctx, creds, maxPages)
    if err != nil {
        s.finishFailed(ctx, jobID, &cur, classifyDriverErr(err), log)
        return
    }
    defer stream.Close()

    seq := 0
    for {
        art, err := stream.Next(ctx)
        if errors.Is(err, io.EOF) {
            break
        }
        if err != nil {
            s.finishFailed(ctx, jobID, &cur, classifyDriverErr(err), log)
            return
        }
        if seq == 0 {
            if err := s.advance(ctx, jobID, &cur, StatusUploading, nil); err != nil {
                log.Error(ctx, "enter UPLOADING failed", "err", err)
                return
            }
        }
        ref, err := s.up.Store(ctx, jobID, seq, art.Name, art.Data)
        if err != nil {
            log.Warn(ctx, "upload failed, aborting job", "seq", seq, "err", err)
            s.finishFailed(ctx, jobID, &cur, &JobError{Kind: ErrKindUpload, Message: err.Error()}, log)
            return
        }
        // 立即持久化引用，轮询方可观察到部分进度
        if err := s.store.AppendFile(ctx, jobID, ref); err != nil {
            s.finishFailed(ctx, jobID, &cur, &JobError{Kind: ErrKindInternal, Message: err.Error()}, log)
            return
        }
        log.Info(ctx, "artifact uploaded", "seq", seq, "ref", ref)
        seq++
    }

    // 零件产出也是成功：空账单不构成错误
    if err := s.advance(ctx, jobID, &cur, StatusCompleted, nil); err != nil {
        log.Error(ctx, "enter COMPLETED failed", "err", err)
        return
    }
    log.Info(ctx, "job completed", "files", seq)
    s.notify(ctx, jobID, log)
}

// advance 推进一次状态并同步本地游标。
func (s *Service) advance(ctx context.Context, jobID string, cur *Status, next Status, jerr *JobError) error {
    if err := s.store.Transition(ctx, jobID, *cur, next, jerr); err != nil {
        return err
    }
    *cur = next
    return nil
}

// finishFailed 迁入 FAILED 并发送失败通知。错误只设置这一次。
func (s *Service) finishFailed(ctx context.Context, jobID string, cur *Status, jerr *JobError, log logging.Logger) {
    log.Warn(ctx, "job failed", "kind", jerr.Kind, "reason", jerr.Message)
    if err := s.advance(ctx, jobID, cur, StatusFailed, jerr); err != nil {
        log.Error(ctx, "enter FAILED failed", "err", err)
        return
    }
    s.notify(ctx, jobID, log)
}

// notify 以存储中的终态快照投递通知。
// 通知失败只记日志：任务状态已经持久、权威，回调绝不反向改写它。
func (s *Service) notify(ctx context.Context, jobID string, log logging.Logger) {
    rec, err := s.store.Get(ctx, jobID)
    if err != nil {
        log.Error(ctx, "load snapshot for notification failed", "err", err)
        return
    }
    ev := notifier.Event{
        JobID:         rec.JobID,
        Status:        string(rec.Status),
        UploadedFiles: rec.UploadedFiles,
    }
    if rec.Error != nil {
        ev.ErrorKind = rec.Error.Kind
        ev.ErrorMessage = rec.Error.Message
    }
    if err := s.ntf.Send(ctx, ev); err != nil {
        log.Warn(ctx, "terminal notification undelivered", "status", ev.Status, "err", err)
    }
}

// classifyDriverErr 把驱动错误映射为任务失败分类。
func classifyDriverErr(err error) *JobError {
    var derr *driver.Error
    if errors.As(err, &derr) {
        switch derr.Kind {
        case driver.KindAuthFailure:
            return &JobError{Kind: ErrKindAuthFailure, Message: err.Error()}
        case driver.KindTimeout:
            return &JobError{Kind: ErrKindTimeout, Message: err.Error()}
        default:
            return &JobError{Kind: ErrKindPartial, Message: err.Error()}
        }
    }
    if errors.Is(err, context.DeadlineExceeded) {
        return &JobError{Kind: ErrKindTimeout, Message: err.Error()}
    }
    var uerr *uploader.Error
    if errors.As(err, &uerr) {
        return &JobError{Kind: ErrKindUpload, Message: err.Error()}
    }
    return &JobError{Kind: ErrKindPartial, Message: err.Error()}
}
