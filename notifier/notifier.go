package notifier

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/mengeric/billing-collector-go/logging"
)

// Event 终态通知载荷。对应出站 Webhook 的 JSON 结构。
type Event struct {
    JobID         string   `json:"job_id"`
    Status        string   `json:"status"`
    UploadedFiles []string `json:"uploaded_files,omitempty"`
    ErrorKind     string   `json:"error_kind,omitempty"`
    ErrorMessage  string   `json:"error_message,omitempty"`
}

// Notifier 终态通知接口，便于 gomock 打桩。
// 约定：投递为 at-least-once，接收端需幂等；Send 返回错误仅供记录，
// 调用方不得据此改写任务终态。
type Notifier interface {
    Send(ctx context.Context, ev Event) error
}

// Webhook 基于 HTTP POST 的 Notifier 实现，带有界重试与指数退避。
type Webhook struct {
    url      string
    hc       *http.Client
    attempts int
    backoff  time.Duration
}

// NewWebhook 创建 Webhook 通知器。
// 参数：attempts<=0 取默认 3 次；backoff<=0 取默认 2s（第 n 次重试前等待 backoff*2^(n-1)）。
func NewWebhook(url string, attempts int, backoff time.Duration) *Webhook {
    if attempts <= 0 {
        attempts = 3
    }
    if backoff <= 0 {
        backoff = 2 * time.Second
    }
    return &Webhook{url: url, hc: &http.Client{Timeout: 10 * time.Second}, attempts: attempts, backoff: backoff}
}

// Send 实现 Notifier.Send。
// 功能：POST JSON 到配置地址，非 2xx 或传输失败时退避重试；
// 全部失败后返回最后一次错误，由调用方记录日志。
func (w *Webhook) Send(ctx context.Context, ev Event) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    var last error
    wait := w.backoff
    for attempt := 1; attempt <= w.attempts; attempt++ {
        if attempt > 1 {
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(wait):
            }
            wait *= 2
        }
        last = w.post(ctx, body)
        if last == nil {
            logging.L().Info(ctx, "webhook delivered", "job_id", ev.JobID, "status", ev.Status, "attempt", attempt)
            return nil
        }
        logging.L().Warn(ctx, "webhook attempt failed", "job_id", ev.JobID, "attempt", attempt, "err", last)
    }
    return fmt.Errorf("webhook failed after %d attempts: %w", w.attempts, last)
}

// post 单次投递。
func (w *Webhook) post(ctx context.Context, body []byte) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    res, err := w.hc.Do(req)
    if err != nil {
        return err
    }
    defer res.Body.Close()
    if res.StatusCode/100 != 2 {
        b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
        return fmt.Errorf("POST %s => %d: %s", w.url, res.StatusCode, string(b))
    }
    return nil
}

// Nop 空通知器：未配置回调地址时使用，仅记录调试日志。
type Nop struct{}

func (Nop) Send(ctx context.Context, ev Event) error {
    logging.L().Debug(ctx, "notification skipped: no webhook configured", "job_id", ev.JobID, "status", ev.Status)
    return nil
}
