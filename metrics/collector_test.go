package metrics

import (
    "context"
    "testing"

    . "github.com/smartystreets/goconvey/convey"
)

func TestCollect(t *testing.T) {
    Convey("collect metrics should not panic and be in range", t, func() {
        ctx := context.Background()
        m := Collect(ctx)
        So(m.CPUProcessors, ShouldBeGreaterThanOrEqualTo, 1)
        So(m.Score, ShouldBeGreaterThanOrEqualTo, 0)
        So(m.Score, ShouldBeLessThanOrEqualTo, 100)
    })
}
