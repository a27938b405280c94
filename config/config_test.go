package config

import (
    "os"
    "path/filepath"
    "testing"

    . "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
    Convey("load yaml then env overrides win", t, func() {
        dir := t.TempDir()
        file := filepath.Join(dir, "collector.yaml")
        data := []byte("port: 9000\nwebhookUrl: http://file.example/hook\nmaxPages: 7\n")
        So(os.WriteFile(file, data, 0o600), ShouldBeNil)

        t.Setenv("WEBHOOK_URL", "http://env.example/hook")
        t.Setenv("MAX_PAGES", "3")

        c, err := Load(file)
        So(err, ShouldBeNil)
        So(c.Port, ShouldEqual, 9000)
        So(c.WebhookURL, ShouldEqual, "http://env.example/hook")
        So(c.MaxPages, ShouldEqual, 3)
    })

    Convey("no file: defaults apply", t, func() {
        os.Unsetenv("WEBHOOK_URL")
        os.Unsetenv("MAX_PAGES")
        c, err := Load("")
        So(err, ShouldBeNil)
        So(c.Port, ShouldEqual, 8686)
        So(c.MaxPages, ShouldEqual, 50)
        So(c.RateLimit.RetrievePerMin, ShouldEqual, 5)
        So(c.Watch.StallAfterSeconds, ShouldEqual, 600)
    })

    Convey("missing file returns error", t, func() {
        _, err := Load("/no/such/file.yaml")
        So(err, ShouldNotBeNil)
    })
}
