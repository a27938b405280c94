package collector

import (
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/mengeric/billing-collector-go/driver"
)

// Status 任务状态。只允许单调前进：
// PENDING → DOWNLOADING → UPLOADING → COMPLETED | FAILED。
type Status string

const (
    StatusPending     Status = "PENDING"
    StatusDownloading Status = "DOWNLOADING"
    StatusUploading   Status = "UPLOADING"
    StatusCompleted   Status = "COMPLETED"
    StatusFailed      Status = "FAILED"
)

// statusRank 状态序，用于单调性校验。
var statusRank = map[Status]int{
    StatusPending:     0,
    StatusDownloading: 1,
    StatusUploading:   2,
    StatusCompleted:   3,
    StatusFailed:      3,
}

// Terminal 是否终态。终态后不再发生任何迁移。
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// ValidTransition 校验一次状态迁移是否单调前进。
// 说明：FAILED 可从任意非终态进入；终态之间不可互迁。
func ValidTransition(from, to Status) bool {
    rf, okf := statusRank[from]
    rt, okt := statusRank[to]
    if !okf || !okt || from.Terminal() {
        return false
    }
    return rt > rf
}

// JobError 结构化失败描述。仅在迁入 FAILED 时设置一次，之后不再清除。
type JobError struct {
    Kind    string `json:"kind"`
    Message string `json:"message"`
}

// 失败分类取值。
const (
    ErrKindAuthFailure = "AuthFailure"
    ErrKindTimeout     = "Timeout"
    ErrKindPartial     = "PartialFailure"
    ErrKindUpload      = "UploadError"
    ErrKindInternal    = "Internal"
)

// JobRecord 任务记录——本服务的核心实体，唯一的状态权威存放在 Status Store。
type JobRecord struct {
    JobID         string    `json:"job_id"`
    Status        Status    `json:"status"`
    UploadedFiles []string  `json:"uploaded_files"`
    Error         *JobError `json:"error,omitempty"`
    CreatedAt     time.Time `json:"created_at"`
    UpdatedAt     time.Time `json:"updated_at"`
    // CredDigest 凭据单向指纹，仅供审计排查，不经任何接口外露。
    CredDigest string `json:"-"`
}

// NewJobRecord 创建 PENDING 态初始记录。
func NewJobRecord(jobID, credDigest string) *JobRecord {
    now := time.Now()
    return &JobRecord{
        JobID:         jobID,
        Status:        StatusPending,
        UploadedFiles: []string{},
        CreatedAt:     now,
        UpdatedAt:     now,
        CredDigest:    credDigest,
    }
}

// Clone 深拷贝，避免并发读取撕裂。
func (r *JobRecord) Clone() *JobRecord {
    cp := *r
    cp.UploadedFiles = append([]string(nil), r.UploadedFiles...)
    if r.Error != nil {
        e := *r.Error
        cp.Error = &e
    }
    return &cp
}

// RetrieveRequest 账单抓取请求。凭据仅用于创建任务与驱动登录，不持久化明文。
type RetrieveRequest struct {
    Username string `json:"username"`
    Password string `json:"password"`
    Carrier  string `json:"carrier,omitempty"`   // UPS（默认）或 FEDEX
    MaxPages int    `json:"max_pages,omitempty"` // 覆盖全局翻页上限，0 表示使用默认值
}

// Normalize 规范化并校验请求。
// 返回：解析后的运营商标识；字段缺失或非法时返回 ErrInvalidRequest 包装错误。
func (r *RetrieveRequest) Normalize() (string, error) {
    if strings.TrimSpace(r.Username) == "" {
        return "", fmt.Errorf("%w: username is required", ErrInvalidRequest)
    }
    if r.Password == "" {
        return "", fmt.Errorf("%w: password is required", ErrInvalidRequest)
    }
    if r.MaxPages < 0 {
        return "", fmt.Errorf("%w: max_pages must not be negative", ErrInvalidRequest)
    }
    carrier := strings.ToUpper(strings.TrimSpace(r.Carrier))
    if carrier == "" {
        carrier = driver.CarrierUPS
    }
    if _, ok := driver.Get(carrier); !ok {
        return "", fmt.Errorf("%w: unsupported carrier %q", ErrInvalidRequest, carrier)
    }
    return carrier, nil
}

// DigestCredentials 计算凭据的 SHA-256 指纹（十六进制）。
func DigestCredentials(username, password string) string {
    h := sha256.Sum256([]byte(username + "\x00" + password))
    return hex.EncodeToString(h[:])
}

// 错误分类。同步接口只会暴露 ErrInvalidRequest 与 ErrNotFound；
// ErrConflict 为存储层 CAS 冲突，由调用方内部消化，不对外暴露。
var (
    ErrInvalidRequest = errors.New("invalid request")
    ErrNotFound       = errors.New("job not found")
    ErrAlreadyExists  = errors.New("job already exists")
    ErrConflict       = errors.New("status transition conflict")
)
