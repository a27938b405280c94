package localdir

import (
    "context"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "sort"

    "github.com/mengeric/billing-collector-go/driver"
)

// Driver 从本地目录回放账单文件的开发驱动。
// 功能：按文件名排序依次产出目录内的普通文件，每个文件视作一页；
// 用于本地联调与演示，不做任何门户交互。
type Driver struct{ dir string }

// New 创建回放驱动。
func New(dir string) *Driver { return &Driver{dir: dir} }

// Open 实现 driver.Driver。目录不存在视为认证失败等价的打开失败。
func (d *Driver) Open(ctx context.Context, creds driver.Credentials, maxPages int) (driver.Stream, error) {
    entries, err := os.ReadDir(d.dir)
    if err != nil {
        return nil, driver.NewError(driver.KindAuthFailure, fmt.Errorf("open replay dir: %w", err))
    }
    names := make([]string, 0, len(entries))
    for _, e := range entries {
        if e.Type().IsRegular() {
            names = append(names, e.Name())
        }
    }
    sort.Strings(names)
    // 翻页上限：达到上限即收束，截断不是失败
    if maxPages > 0 && len(names) > maxPages {
        names = names[:maxPages]
    }
    return &stream{dir: d.dir, names: names}, nil
}

type stream struct {
    dir   string
    names []string
    pos   int
}

func (s *stream) Next(ctx context.Context) (*driver.Artifact, error) {
    if err := ctx.Err(); err != nil {
        return nil, driver.NewError(driver.KindTimeout, err)
    }
    if s.pos >= len(s.names) {
        return nil, io.EOF
    }
    name := s.names[s.pos]
    s.pos++
    data, err := os.ReadFile(filepath.Join(s.dir, name))
    if err != nil {
        return nil, driver.NewError(driver.KindPartial, err)
    }
    return &driver.Artifact{Name: name, Data: data}, nil
}

func (s *stream) Close() error { return nil }
