package uploader

import (
    "context"
    "testing"

    . "github.com/smartystreets/goconvey/convey"
)

func TestKeyFor(t *testing.T) {
    Convey("key derivation is deterministic and namespaced by job", t, func() {
        So(KeyFor("j1", 0, "invoice.csv"), ShouldEqual, "j1/0000_invoice.csv")
        So(KeyFor("j1", 12, "invoice.csv"), ShouldEqual, "j1/0012_invoice.csv")
        So(KeyFor("j2", 0, "invoice.csv"), ShouldNotEqual, KeyFor("j1", 0, "invoice.csv"))
    })

    Convey("file names are sanitized", t, func() {
        So(KeyFor("j1", 1, "../a b/c.csv"), ShouldEqual, "j1/0001_.._a_b_c.csv")
        So(KeyFor("j1", 1, "  "), ShouldEqual, "j1/0001_artifact")
    })
}

func TestMemory(t *testing.T) {
    Convey("memory uploader stores an isolated copy", t, func() {
        up := NewMemory()
        data := []byte("abc")
        ref, err := up.Store(context.Background(), "j1", 0, "a.csv", data)
        So(err, ShouldBeNil)
        So(ref, ShouldEqual, "mem://j1/0000_a.csv")

        data[0] = 'x'
        got, ok := up.Get("j1/0000_a.csv")
        So(ok, ShouldBeTrue)
        So(string(got), ShouldEqual, "abc")
        So(up.Len(), ShouldEqual, 1)
    })
}
