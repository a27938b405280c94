package driver

import (
    "context"
    "fmt"
    "sync"
)

// 支持的运营商标识。
const (
    CarrierUPS   = "UPS"
    CarrierFedEx = "FEDEX"
)

// Credentials 门户登录凭据。仅在抓取过程中短暂持有，不落库、不打日志。
type Credentials struct {
    Username string
    Password string
    // ProxyURL 可选的浏览器代理凭据（例如远程 CDP 接入点）。
    ProxyURL string
}

// Artifact 驱动产出的单个账单文件。
type Artifact struct {
    Name string // 原始文件名
    Data []byte
}

// Stream 惰性产出账单文件的有限序列。
// 约定：Next 在序列耗尽时返回 io.EOF；序列中途失败返回其他错误后不应再调用 Next；
// 调用方负责 Close 释放底层会话。
type Stream interface {
    Next(ctx context.Context) (*Artifact, error)
    Close() error
}

// Driver 账单门户抓取驱动接口。
// 功能：完成登录与翻页下载；maxPages 为翻页上限，达到上限后正常收束序列
// （视为截断式成功，而非失败）。
type Driver interface {
    Open(ctx context.Context, creds Credentials, maxPages int) (Stream, error)
}

// ErrorKind 驱动失败分类。
type ErrorKind string

const (
    KindAuthFailure ErrorKind = "AuthFailure"
    KindTimeout     ErrorKind = "Timeout"
    KindPartial     ErrorKind = "PartialFailure"
)

// Error 带分类的驱动错误。
type Error struct {
    Kind ErrorKind
    Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("driver %s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// NewError 构造分类错误。
func NewError(kind ErrorKind, err error) *Error { return &Error{Kind: kind, Err: err} }

var (
    regMu   sync.RWMutex
    drivers = map[string]Driver{}
)

// Register 按运营商注册驱动。重复注册时后者覆盖前者。
func Register(carrier string, d Driver) {
    regMu.Lock()
    defer regMu.Unlock()
    drivers[carrier] = d
}

// Get 获取运营商对应的驱动。
func Get(carrier string) (Driver, bool) {
    regMu.RLock()
    defer regMu.RUnlock()
    d, ok := drivers[carrier]
    return d, ok
}
