package collector

import (
    "net"
    "net/http"
    "sync"

    "golang.org/x/time/rate"
)

// ipLimiter 按客户端 IP 的令牌桶限流器。
// 说明：桶按需创建且不回收，与上游网关的限流语义保持一致；
// 单实例部署下 IP 基数有限，不做淘汰。
type ipLimiter struct {
    mu      sync.Mutex
    buckets map[string]*rate.Limiter
    limit   rate.Limit
    burst   int
}

// newIPLimiter 创建限流器，perMin 为每分钟允许的请求数（同时作为突发额度）。
func newIPLimiter(perMin int) *ipLimiter {
    return &ipLimiter{
        buckets: map[string]*rate.Limiter{},
        limit:   rate.Limit(float64(perMin) / 60.0),
        burst:   perMin,
    }
}

// allow 判定某 IP 的本次请求是否放行。
func (l *ipLimiter) allow(ip string) bool {
    l.mu.Lock()
    b, ok := l.buckets[ip]
    if !ok {
        b = rate.NewLimiter(l.limit, l.burst)
        l.buckets[ip] = b
    }
    l.mu.Unlock()
    return b.Allow()
}

// wrap 包装 handler，超限时返回 429。
func (l *ipLimiter) wrap(next http.HandlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        ip, _, err := net.SplitHostPort(r.RemoteAddr)
        if err != nil {
            ip = r.RemoteAddr
        }
        if !l.allow(ip) {
            writeErrMsg(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
            return
        }
        next(w, r)
    }
}
