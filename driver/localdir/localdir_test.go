package localdir

import (
    "context"
    "errors"
    "io"
    "os"
    "path/filepath"
    "testing"

    . "github.com/smartystreets/goconvey/convey"

    "github.com/mengeric/billing-collector-go/driver"
)

func TestLocalDir(t *testing.T) {
    Convey("replay dir yields files sorted, capped by maxPages", t, func() {
        dir := t.TempDir()
        for _, name := range []string{"b.csv", "a.csv", "c.csv"} {
            So(os.WriteFile(filepath.Join(dir, name), []byte("inv,"+name), 0o600), ShouldBeNil)
        }

        st, err := New(dir).Open(context.Background(), driver.Credentials{}, 2)
        So(err, ShouldBeNil)
        defer st.Close()

        first, err := st.Next(context.Background())
        So(err, ShouldBeNil)
        So(first.Name, ShouldEqual, "a.csv")
        So(string(first.Data), ShouldEqual, "inv,a.csv")

        second, err := st.Next(context.Background())
        So(err, ShouldBeNil)
        So(second.Name, ShouldEqual, "b.csv")

        // 截断式成功：上限后直接收束
        _, err = st.Next(context.Background())
        So(errors.Is(err, io.EOF), ShouldBeTrue)
    })

    Convey("missing dir maps to auth-kind open failure", t, func() {
        _, err := New("/no/such/replay").Open(context.Background(), driver.Credentials{}, 10)
        var derr *driver.Error
        So(errors.As(err, &derr), ShouldBeTrue)
        So(derr.Kind, ShouldEqual, driver.KindAuthFailure)
    })
}
