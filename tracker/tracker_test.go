package tracker

import (
    "testing"
    "time"

    . "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
    Convey("start/done lifecycle", t, func() {
        m := NewManager()
        p := m.Start("j1")
        So(m.Count(), ShouldEqual, 1)
        So(p.Ctx.Err(), ShouldBeNil)

        m.Done("j1")
        So(m.Count(), ShouldEqual, 0)
        So(p.Ctx.Err(), ShouldNotBeNil)
        // 重复注销无害
        m.Done("j1")
    })

    Convey("wait blocks until pipelines finish", t, func() {
        m := NewManager()
        m.Start("j1")
        go func() {
            time.Sleep(20 * time.Millisecond)
            m.Done("j1")
        }()
        So(m.Wait(time.Second), ShouldBeTrue)
    })

    Convey("wait times out on a stuck pipeline", t, func() {
        m := NewManager()
        m.Start("stuck")
        So(m.Wait(20*time.Millisecond), ShouldBeFalse)
        m.Done("stuck")
    })
}
