package collector

import (
    "time"

    "github.com/mengeric/billing-collector-go/notifier"
    "github.com/mengeric/billing-collector-go/uploader"
)

// Options 服务运行参数。
type Options struct {
    ListenAddr string        // 监听地址，支持形如 ":8686"、"127.0.0.1:0"（0 表示随机端口）
    Version    string        // 对外上报的版本号
    MaxPages   int           // 全局翻页上限（请求可用 max_pages 覆盖，但不得超过该值）
    ProxyURL   string        // 传递给抓取驱动的代理凭据
    WatchEvery time.Duration // 滞留任务巡检周期
    StallAfter time.Duration // 滞留判定阈值
    StopWait   time.Duration // 停机时等待在途流水线收尾的时长

    // 每客户端 IP 的限流（次/分钟），对齐外部接口的三类端点。
    RetrievePerMin int
    StatusPerMin   int
    HealthPerMin   int
}

// withDefaults 填充默认值。
func (o *Options) withDefaults() {
    if o.ListenAddr == "" {
        o.ListenAddr = ":8686"
    }
    if o.Version == "" {
        o.Version = "dev"
    }
    if o.MaxPages <= 0 {
        o.MaxPages = 50
    }
    if o.WatchEvery <= 0 {
        o.WatchEvery = time.Minute
    }
    if o.StallAfter <= 0 {
        o.StallAfter = 10 * time.Minute
    }
    if o.StopWait <= 0 {
        o.StopWait = 10 * time.Second
    }
    if o.RetrievePerMin <= 0 {
        o.RetrievePerMin = 5
    }
    if o.StatusPerMin <= 0 {
        o.StatusPerMin = 10
    }
    if o.HealthPerMin <= 0 {
        o.HealthPerMin = 50
    }
}

// serviceConfig 构造期聚合，仅在 NewService 内部使用。
type serviceConfig struct {
    opt   Options
    store Storage
    up    uploader.Uploader
    ntf   notifier.Notifier
}

// Option 服务构造可选项。
type Option func(*serviceConfig)

// WithListenAddr 设置监听地址。
func WithListenAddr(addr string) Option { return func(c *serviceConfig) { c.opt.ListenAddr = addr } }

// WithVersion 设置版本号。
func WithVersion(v string) Option { return func(c *serviceConfig) { c.opt.Version = v } }

// WithMaxPages 设置全局翻页上限。
func WithMaxPages(n int) Option { return func(c *serviceConfig) { c.opt.MaxPages = n } }

// WithProxyURL 设置驱动代理凭据。
func WithProxyURL(u string) Option { return func(c *serviceConfig) { c.opt.ProxyURL = u } }

// WithWatch 设置滞留巡检周期与阈值。
func WithWatch(every, stallAfter time.Duration) Option {
    return func(c *serviceConfig) { c.opt.WatchEvery = every; c.opt.StallAfter = stallAfter }
}

// WithStopWait 设置停机等待时长。
func WithStopWait(d time.Duration) Option { return func(c *serviceConfig) { c.opt.StopWait = d } }

// WithRateLimits 设置三类端点的每分钟限流。
func WithRateLimits(retrieve, status, health int) Option {
    return func(c *serviceConfig) {
        c.opt.RetrievePerMin = retrieve
        c.opt.StatusPerMin = status
        c.opt.HealthPerMin = health
    }
}

// WithStore 注入状态存储实现；缺省使用内置内存存储。
func WithStore(s Storage) Option { return func(c *serviceConfig) { c.store = s } }

// WithUploader 注入上传器实现；缺省使用内存上传器（仅开发场景）。
func WithUploader(u uploader.Uploader) Option { return func(c *serviceConfig) { c.up = u } }

// WithNotifier 注入通知器实现；缺省为 Nop（不发送）。
func WithNotifier(n notifier.Notifier) Option { return func(c *serviceConfig) { c.ntf = n } }
