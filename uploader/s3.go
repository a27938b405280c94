package uploader

import (
    "bytes"
    "context"
    "fmt"

    "github.com/minio/minio-go/v7"
    "github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config S3 兼容对象存储配置。
type S3Config struct {
    Endpoint  string
    Region    string
    Bucket    string
    AccessKey string
    SecretKey string
    UseSSL    bool
}

// S3 基于 minio-go 的 Uploader 实现，兼容 AWS S3 与 MinIO。
type S3 struct {
    cli    *minio.Client
    bucket string
}

// NewS3 创建 S3 上传器。
// 异常：Endpoint 非法时返回错误；Bucket 需已存在，组件不负责建桶。
func NewS3(cfg S3Config) (*S3, error) {
    cli, err := minio.New(cfg.Endpoint, &minio.Options{
        Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
        Secure: cfg.UseSSL,
        Region: cfg.Region,
    })
    if err != nil {
        return nil, fmt.Errorf("init s3 client: %w", err)
    }
    return &S3{cli: cli, bucket: cfg.Bucket}, nil
}

// Store 实现 Uploader.Store，返回 s3://<bucket>/<key> 形式的引用。
func (s *S3) Store(ctx context.Context, jobID string, seq int, name string, data []byte) (string, error) {
    key := KeyFor(jobID, seq, name)
    _, err := s.cli.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
        minio.PutObjectOptions{ContentType: "application/octet-stream"})
    if err != nil {
        return "", &Error{Key: key, Err: err}
    }
    return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
