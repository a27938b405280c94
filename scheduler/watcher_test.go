package scheduler

import (
    "context"
    "testing"
    "time"

    . "github.com/smartystreets/goconvey/convey"
)

type fakeLister struct{ items []Active }

func (f fakeLister) ListActive(ctx context.Context) ([]Active, error) { return f.items, nil }

func TestStallWatcher(t *testing.T) {
    Convey("check flags only jobs quiet for longer than the threshold", t, func() {
        now := time.Now()
        l := fakeLister{items: []Active{
            {JobID: "old", Status: "UPLOADING", UpdatedAt: now.Add(-time.Hour)},
            {JobID: "fresh", Status: "DOWNLOADING", UpdatedAt: now},
        }}
        w := NewStallWatcher(l, time.Second, 10*time.Minute)

        stalled, err := w.Check(context.Background())
        So(err, ShouldBeNil)
        So(len(stalled), ShouldEqual, 1)
        So(stalled[0].JobID, ShouldEqual, "old")
    })

    Convey("start runs without panic and stops with the context", t, func() {
        w := NewStallWatcher(fakeLister{}, 10*time.Millisecond, time.Minute)
        ctx, cancel := context.WithCancel(context.Background())
        w.Start(ctx)
        time.Sleep(30 * time.Millisecond)
        cancel()
        So(true, ShouldBeTrue)
    })
}
