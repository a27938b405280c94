package logging

import (
    "context"
    "log/slog"
    "os"
)

// Logger 日志门面接口。
// 说明：组件内部统一通过该门面输出，宿主可注入自定义实现；
// 约定：args 为 key-value 对；凭据等敏感信息不得作为日志字段。
type Logger interface {
    Info(ctx context.Context, msg string, args ...any)
    Warn(ctx context.Context, msg string, args ...any)
    Error(ctx context.Context, msg string, args ...any)
    Debug(ctx context.Context, msg string, args ...any)
    With(args ...any) Logger
}

// slogLogger 基于标准库 slog 的默认实现（文本输出到 stderr）。
type slogLogger struct{ l *slog.Logger }

// NewSlogLogger 创建默认 slog 日志器（INFO 级别）。
func NewSlogLogger() Logger {
    return NewSlogLoggerAt(slog.LevelInfo)
}

// NewSlogLoggerAt 创建指定级别的 slog 日志器。
func NewSlogLoggerAt(level slog.Level) Logger {
    return &slogLogger{l: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

func (s *slogLogger) Info(ctx context.Context, msg string, args ...any)  { s.l.InfoContext(ctx, msg, args...) }
func (s *slogLogger) Warn(ctx context.Context, msg string, args ...any)  { s.l.WarnContext(ctx, msg, args...) }
func (s *slogLogger) Error(ctx context.Context, msg string, args ...any) { s.l.ErrorContext(ctx, msg, args...) }
func (s *slogLogger) Debug(ctx context.Context, msg string, args ...any) { s.l.DebugContext(ctx, msg, args...) }
func (s *slogLogger) With(args ...any) Logger                            { return &slogLogger{l: s.l.With(args...)} }

// 全局默认日志器，便于简化调用。
var defaultLogger Logger = NewSlogLogger()

// L 获取全局日志器。
func L() Logger { return defaultLogger }

// SetGlobal 替换全局日志器（如业务侧注入第三方实现）。
func SetGlobal(l Logger) {
    if l != nil {
        defaultLogger = l
    }
}

// WithJob 返回携带 job_id 字段的日志器，任务流水线内统一使用。
func WithJob(jobID string) Logger { return defaultLogger.With("job_id", jobID) }
