package notifier

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"
    "time"

    . "github.com/smartystreets/goconvey/convey"
)

func TestWebhookSend(t *testing.T) {
    Convey("delivers after transient failures", t, func() {
        var calls int32
        got := make(chan Event, 1)
        srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            n := atomic.AddInt32(&calls, 1)
            if n < 3 {
                w.WriteHeader(http.StatusBadGateway)
                return
            }
            var ev Event
            if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
                w.WriteHeader(http.StatusBadRequest)
                return
            }
            got <- ev
            w.WriteHeader(http.StatusOK)
        }))
        defer srv.Close()

        wh := NewWebhook(srv.URL, 3, time.Millisecond)
        err := wh.Send(context.Background(), Event{
            JobID:         "j1",
            Status:        "COMPLETED",
            UploadedFiles: []string{"s3://b/j1/0000_a.csv"},
        })
        So(err, ShouldBeNil)
        So(atomic.LoadInt32(&calls), ShouldEqual, 3)

        ev := <-got
        So(ev.JobID, ShouldEqual, "j1")
        So(ev.Status, ShouldEqual, "COMPLETED")
        So(ev.UploadedFiles, ShouldResemble, []string{"s3://b/j1/0000_a.csv"})
    })

    Convey("gives up after bounded attempts", t, func() {
        var calls int32
        srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            atomic.AddInt32(&calls, 1)
            w.WriteHeader(http.StatusInternalServerError)
        }))
        defer srv.Close()

        wh := NewWebhook(srv.URL, 3, time.Millisecond)
        err := wh.Send(context.Background(), Event{JobID: "j2", Status: "FAILED"})
        So(err, ShouldNotBeNil)
        So(atomic.LoadInt32(&calls), ShouldEqual, 3)
    })

    Convey("context cancellation stops the retry loop", t, func() {
        srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            w.WriteHeader(http.StatusInternalServerError)
        }))
        defer srv.Close()

        ctx, cancel := context.WithCancel(context.Background())
        cancel()
        wh := NewWebhook(srv.URL, 5, time.Hour)
        err := wh.Send(ctx, Event{JobID: "j3", Status: "FAILED"})
        So(err, ShouldNotBeNil)
    })
}
