package collector

import (
    "context"
    "os"
    "os/signal"
    "syscall"
)

// WithSignalCancel 创建一个可响应系统信号（如 SIGINT/SIGTERM）的上下文。
// 功能：在收到进程关闭信号时自动取消返回的 Context，用于触发优雅关闭。
// 参数：
//   - parent：父级上下文；
//   - signals：可选信号列表，留空则默认使用 SIGINT、SIGTERM。
//
// 返回：当接收到任一信号时 Done() 即会关闭的 ctx，以及释放监听的 stop 函数。
func WithSignalCancel(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
    if len(signals) == 0 {
        signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
    }
    return signal.NotifyContext(parent, signals...)
}
