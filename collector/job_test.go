package collector

import (
    "encoding/json"
    "errors"
    "strings"
    "testing"

    . "github.com/smartystreets/goconvey/convey"

    "github.com/mengeric/billing-collector-go/driver"
)

func TestValidTransition(t *testing.T) {
    Convey("status order is strictly monotone", t, func() {
        So(ValidTransition(StatusPending, StatusDownloading), ShouldBeTrue)
        So(ValidTransition(StatusDownloading, StatusUploading), ShouldBeTrue)
        So(ValidTransition(StatusUploading, StatusCompleted), ShouldBeTrue)
        So(ValidTransition(StatusDownloading, StatusCompleted), ShouldBeTrue) // 零件产出时跳过 UPLOADING
        So(ValidTransition(StatusPending, StatusFailed), ShouldBeTrue)
        So(ValidTransition(StatusUploading, StatusFailed), ShouldBeTrue)

        So(ValidTransition(StatusDownloading, StatusPending), ShouldBeFalse)
        So(ValidTransition(StatusUploading, StatusDownloading), ShouldBeFalse)
        So(ValidTransition(StatusCompleted, StatusFailed), ShouldBeFalse)
        So(ValidTransition(StatusFailed, StatusCompleted), ShouldBeFalse)
        So(ValidTransition(StatusPending, StatusPending), ShouldBeFalse)
        So(ValidTransition(Status("BOGUS"), StatusFailed), ShouldBeFalse)
    })
}

func TestDigestCredentials(t *testing.T) {
    Convey("digest is stable and never contains the secret", t, func() {
        d1 := DigestCredentials("a@b.com", "hunter2")
        d2 := DigestCredentials("a@b.com", "hunter2")
        So(d1, ShouldEqual, d2)
        So(len(d1), ShouldEqual, 64)
        So(strings.Contains(d1, "hunter2"), ShouldBeFalse)
        So(DigestCredentials("a@b.com", "other"), ShouldNotEqual, d1)
    })
}

func TestRetrieveRequestNormalize(t *testing.T) {
    driver.Register("N-TEST", &fakeDriver{stream: &fakeStream{}})

    Convey("valid request resolves its carrier", t, func() {
        r := RetrieveRequest{Username: "a@b.com", Password: "x", Carrier: "n-test"}
        carrier, err := r.Normalize()
        So(err, ShouldBeNil)
        So(carrier, ShouldEqual, "N-TEST")
    })

    Convey("missing fields are invalid", t, func() {
        for _, r := range []RetrieveRequest{
            {Username: "", Password: "x"},
            {Username: "  ", Password: "x"},
            {Username: "a@b.com", Password: ""},
            {Username: "a@b.com", Password: "x", MaxPages: -1},
            {Username: "a@b.com", Password: "x", Carrier: "DHL"},
        } {
            _, err := r.Normalize()
            So(errors.Is(err, ErrInvalidRequest), ShouldBeTrue)
        }
    })
}

func TestJobRecordJSON(t *testing.T) {
    Convey("credentials digest never leaves through the polling surface", t, func() {
        rec := NewJobRecord("j1", "deadbeef")
        rec.Error = &JobError{Kind: ErrKindTimeout, Message: "boom"}
        b, err := json.Marshal(rec)
        So(err, ShouldBeNil)
        s := string(b)
        So(s, ShouldContainSubstring, `"job_id":"j1"`)
        So(s, ShouldContainSubstring, `"uploaded_files":[]`)
        So(s, ShouldContainSubstring, `"kind":"Timeout"`)
        So(s, ShouldNotContainSubstring, "deadbeef")
    })
}
