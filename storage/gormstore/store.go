package gormstore

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "gorm.io/datatypes"
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/mengeric/billing-collector-go/collector"
)

// model 映射到数据库表 job_records。
type model struct {
    ID         uint           `gorm:"primaryKey"`
    JobID      string         `gorm:"uniqueIndex;size:64"`
    Status     string         `gorm:"index;size:16"`
    Files      datatypes.JSON `gorm:"column:uploaded_files"`
    ErrKind    string         `gorm:"size:32"`
    ErrMsg     string         `gorm:"type:text"`
    CredDigest string         `gorm:"size:64"`
    CreatedAt  time.Time
    UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (model) TableName() string { return "job_records" }

// Store 基于 GORM 的 Storage 实现。
type Store struct{ db *gorm.DB }

// New 创建 Store，调用方应先执行 AutoMigrate。
func New(db *gorm.DB) *Store { return &Store{db: db} }

// AutoMigrate 建表/补列。
func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&model{}) }

// Create 实现 Storage.Create。
func (s *Store) Create(ctx context.Context, rec *collector.JobRecord) error {
    m, err := toModel(rec)
    if err != nil {
        return err
    }
    if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
        if errors.Is(err, gorm.ErrDuplicatedKey) {
            return collector.ErrAlreadyExists
        }
        return err
    }
    return nil
}

// Transition 实现 Storage.Transition。
// 说明：compare-and-set 通过条件 UPDATE 的影响行数实现，天然防丢更新。
func (s *Store) Transition(ctx context.Context, jobID string, expect, next collector.Status, jerr *collector.JobError) error {
    if !collector.ValidTransition(expect, next) {
        return collector.ErrConflict
    }
    updates := map[string]any{"status": string(next), "updated_at": time.Now()}
    if next == collector.StatusFailed && jerr != nil {
        updates["err_kind"] = jerr.Kind
        updates["err_msg"] = jerr.Message
    }
    tx := s.db.WithContext(ctx).Model(&model{}).
        Where("job_id = ? AND status = ?", jobID, string(expect)).
        Updates(updates)
    if tx.Error != nil {
        return tx.Error
    }
    if tx.RowsAffected == 0 {
        // 区分未知任务与状态竞争
        if _, err := s.Get(ctx, jobID); err != nil {
            return err
        }
        return collector.ErrConflict
    }
    return nil
}

// AppendFile 实现 Storage.AppendFile。
// 说明：JSON 列的读改写放在行锁事务里，保证仅追加、不回退。
func (s *Store) AppendFile(ctx context.Context, jobID string, ref string) error {
    return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        var m model
        err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
            Where("job_id = ?", jobID).First(&m).Error
        if err != nil {
            if errors.Is(err, gorm.ErrRecordNotFound) {
                return collector.ErrNotFound
            }
            return err
        }
        files, err := decodeFiles(m.Files)
        if err != nil {
            return err
        }
        files = append(files, ref)
        raw, err := json.Marshal(files)
        if err != nil {
            return err
        }
        return tx.Model(&model{}).Where("job_id = ?", jobID).
            Updates(map[string]any{"uploaded_files": datatypes.JSON(raw), "updated_at": time.Now()}).Error
    })
}

// Get 实现 Storage.Get。
func (s *Store) Get(ctx context.Context, jobID string) (*collector.JobRecord, error) {
    var m model
    if err := s.db.WithContext(ctx).Where("job_id = ?", jobID).First(&m).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, collector.ErrNotFound
        }
        return nil, err
    }
    return fromModel(&m)
}

// ListActive 实现 Storage.ListActive。
func (s *Store) ListActive(ctx context.Context) ([]collector.JobRecord, error) {
    var list []model
    err := s.db.WithContext(ctx).
        Where("status NOT IN ?", []string{string(collector.StatusCompleted), string(collector.StatusFailed)}).
        Find(&list).Error
    if err != nil {
        return nil, err
    }
    out := make([]collector.JobRecord, 0, len(list))
    for i := range list {
        r, err := fromModel(&list[i])
        if err != nil {
            return nil, err
        }
        out = append(out, *r)
    }
    return out, nil
}

func toModel(r *collector.JobRecord) (*model, error) {
    raw, err := json.Marshal(r.UploadedFiles)
    if err != nil {
        return nil, err
    }
    m := &model{
        JobID:      r.JobID,
        Status:     string(r.Status),
        Files:      datatypes.JSON(raw),
        CredDigest: r.CredDigest,
        CreatedAt:  r.CreatedAt,
        UpdatedAt:  r.UpdatedAt,
    }
    if r.Error != nil {
        m.ErrKind = r.Error.Kind
        m.ErrMsg = r.Error.Message
    }
    return m, nil
}

func fromModel(m *model) (*collector.JobRecord, error) {
    files, err := decodeFiles(m.Files)
    if err != nil {
        return nil, err
    }
    r := &collector.JobRecord{
        JobID:         m.JobID,
        Status:        collector.Status(m.Status),
        UploadedFiles: files,
        CreatedAt:     m.CreatedAt,
        UpdatedAt:     m.UpdatedAt,
        CredDigest:    m.CredDigest,
    }
    if m.ErrKind != "" || m.ErrMsg != "" {
        r.Error = &collector.JobError{Kind: m.ErrKind, Message: m.ErrMsg}
    }
    return r, nil
}

func decodeFiles(raw datatypes.JSON) ([]string, error) {
    if len(raw) == 0 {
        return []string{}, nil
    }
    files := []string{}
    if err := json.Unmarshal(raw, &files); err != nil {
        return nil, err
    }
    return files, nil
}
