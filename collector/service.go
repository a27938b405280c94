package collector

import (
    "context"
    "encoding/json"
    "errors"
    "net"
    "net/http"
    "sync"

    "github.com/google/uuid"

    "github.com/mengeric/billing-collector-go/driver"
    "github.com/mengeric/billing-collector-go/logging"
    "github.com/mengeric/billing-collector-go/metrics"
    "github.com/mengeric/billing-collector-go/notifier"
    "github.com/mengeric/billing-collector-go/scheduler"
    "github.com/mengeric/billing-collector-go/tracker"
    "github.com/mengeric/billing-collector-go/uploader"
)

// Service 账单抓取编排服务主对象：提供内置 HTTP Server 与后台流水线生命周期控制。
// 说明：Service 在 Start(ctx) 中启动 HTTP Server（监听 Options.ListenAddr），
// 接单后把抓取-上传流水线放到独立协程执行，状态全部落在 Status Store。
type Service struct {
    opt   Options
    store Storage
    up    uploader.Uploader
    ntf   notifier.Notifier

    trk   *tracker.Manager
    watch *scheduler.StallWatcher

    srv    *http.Server
    addrMu sync.RWMutex
    addr   string
    done   chan struct{}
}

// NewService 创建 Service。
// 功能：按照 With... 可选项组合出一个可运行的服务；未显式注入时，
// 存储使用内置内存实现，上传器使用内存实现，通知器为 Nop。
func NewService(opts ...Option) *Service {
    cfg := &serviceConfig{}
    for _, fn := range opts {
        fn(cfg)
    }
    cfg.opt.withDefaults()
    s := &Service{opt: cfg.opt, trk: tracker.NewManager(), done: make(chan struct{})}
    s.store = cfg.store
    if s.store == nil {
        s.store = NewMemStore()
    }
    s.up = cfg.up
    if s.up == nil {
        s.up = uploader.NewMemory()
    }
    s.ntf = cfg.ntf
    if s.ntf == nil {
        s.ntf = notifier.Nop{}
    }
    return s
}

// Start 启动 HTTP Server 与滞留巡检。
// 生命周期：受传入 ctx 控制；ctx.Done 时优雅关闭 HTTP Server，并在
// Options.StopWait 内等待在途流水线收尾，随后关闭 Done() 通道。
func (s *Service) Start(ctx context.Context) {
    mux := http.NewServeMux()
    s.registerHandlers(mux)
    ln, err := net.Listen("tcp", s.opt.ListenAddr)
    if err != nil {
        logging.L().Error(ctx, "listen failed", "addr", s.opt.ListenAddr, "err", err)
        close(s.done)
        return
    }
    s.addrMu.Lock()
    s.addr = ln.Addr().String()
    s.addrMu.Unlock()
    s.srv = &http.Server{Addr: s.addr, Handler: mux}

    s.watch = scheduler.NewStallWatcher(activeAdapter{s.store}, s.opt.WatchEvery, s.opt.StallAfter)
    s.watch.Start(ctx)

    go func() { _ = s.srv.Serve(ln) }()
    go func() {
        <-ctx.Done()
        _ = s.srv.Shutdown(context.Background())
        if !s.trk.Wait(s.opt.StopWait) {
            logging.L().Warn(context.Background(), "shutdown with pipelines still in flight", "count", s.trk.Count())
        }
        close(s.done)
    }()
    logging.L().Info(ctx, "collector started", "addr", s.addr, "version", s.opt.Version)
}

// Done 返回优雅停机完成后关闭的通道。
func (s *Service) Done() <-chan struct{} { return s.done }

// Addr 返回内置 HTTP Server 的实际监听地址（用于测试或 :0 随机端口场景）。
func (s *Service) Addr() string {
    s.addrMu.RLock()
    defer s.addrMu.RUnlock()
    return s.addr
}

// registerHandlers 挂载路由并套上各端点类的限流。
func (s *Service) registerHandlers(mux *http.ServeMux) {
    retrieve := newIPLimiter(s.opt.RetrievePerMin)
    status := newIPLimiter(s.opt.StatusPerMin)
    health := newIPLimiter(s.opt.HealthPerMin)
    mux.HandleFunc("POST /billing/retrieve", retrieve.wrap(s.handleRetrieve))
    mux.HandleFunc("GET /billing/status/{job_id}", status.wrap(s.handleStatus))
    mux.HandleFunc("GET /health", health.wrap(s.handleHealth))
    mux.HandleFunc("GET /health/status", health.wrap(s.handleHealthStatus))
}

// StartJob 受理抓取请求：校验、建档、拉起后台流水线。
// 功能：同步路径只做输入校验与 PENDING 记录创建，立即返回初始快照；
// 之后的一切失败都是异步的，只体现在任务记录里，不再抛向调用方。
func (s *Service) StartJob(ctx context.Context, req RetrieveRequest) (*JobRecord, error) {
    carrier, err := req.Normalize()
    if err != nil {
        return nil, err
    }
    drv, _ := driver.Get(carrier)
    maxPages := req.MaxPages
    if maxPages <= 0 || maxPages > s.opt.MaxPages {
        maxPages = s.opt.MaxPages
    }

    jobID := uuid.NewString()
    rec := NewJobRecord(jobID, DigestCredentials(req.Username, req.Password))
    if err := s.store.Create(ctx, rec); err != nil {
        // uuid 冲突在实践中不可达，但必须作为存储错误处理
        return nil, err
    }

    creds := driver.Credentials{Username: req.Username, Password: req.Password, ProxyURL: s.opt.ProxyURL}
    p := s.trk.Start(jobID)
    go s.execute(p.Ctx, jobID, drv, creds, maxPages)

    logging.L().Info(ctx, "job accepted", "job_id", jobID, "carrier", carrier, "max_pages", maxPages)
    return rec, nil
}

// GetStatus 读取任务快照。纯读操作，无任何副作用。
func (s *Service) GetStatus(ctx context.Context, jobID string) (*JobRecord, error) {
    return s.store.Get(ctx, jobID)
}

// handleRetrieve 受理抓取请求（202 Accepted）。
func (s *Service) handleRetrieve(w http.ResponseWriter, r *http.Request) {
    var req RetrieveRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrMsg(w, http.StatusBadRequest, "malformed request body")
        return
    }
    rec, err := s.StartJob(r.Context(), req)
    if err != nil {
        if errors.Is(err, ErrInvalidRequest) {
            writeErrMsg(w, http.StatusBadRequest, err.Error())
            return
        }
        logging.L().Error(r.Context(), "start job failed", "err", err)
        writeErrMsg(w, http.StatusInternalServerError, "failed to start job")
        return
    }
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusAccepted)
    _ = json.NewEncoder(w).Encode(rec)
}

// handleStatus 查询任务状态。
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
    rec, err := s.GetStatus(r.Context(), r.PathValue("job_id"))
    if err != nil {
        if errors.Is(err, ErrNotFound) {
            writeErrMsg(w, http.StatusNotFound, "job not found")
            return
        }
        writeErrMsg(w, http.StatusInternalServerError, "failed to read job status")
        return
    }
    writeJSON(w, rec)
}

// handleHealth 最小存活探针：不依赖状态存储可达。
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, map[string]any{"status": "OK", "version": s.opt.Version})
}

// handleHealthStatus 富就绪探针：上报在途任务数、存储连通性与系统指标。
func (s *Service) handleHealthStatus(w http.ResponseWriter, r *http.Request) {
    out := map[string]any{
        "status":  "OK",
        "version": s.opt.Version,
        "system":  metrics.Collect(r.Context()),
    }
    if list, err := s.store.ListActive(r.Context()); err != nil {
        out["status"] = "DEGRADED"
        out["store_error"] = err.Error()
    } else {
        out["jobs"] = map[string]int{"active": len(list), "in_flight": s.trk.Count()}
    }
    writeJSON(w, out)
}

// activeAdapter 适配巡检器对存储的依赖（仅用到 ListActive）。
type activeAdapter struct{ Storage }

// ListActive 将任务记录映射为巡检器精简视图。
func (a activeAdapter) ListActive(ctx context.Context) ([]scheduler.Active, error) {
    recs, err := a.Storage.ListActive(ctx)
    if err != nil {
        return nil, err
    }
    out := make([]scheduler.Active, 0, len(recs))
    for _, r := range recs {
        out = append(out, scheduler.Active{JobID: r.JobID, Status: string(r.Status), UpdatedAt: r.UpdatedAt})
    }
    return out, nil
}

// writeErrMsg/writeJSON 公共返回工具。
func writeErrMsg(w http.ResponseWriter, code int, msg string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(v)
}
