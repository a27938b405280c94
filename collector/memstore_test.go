package collector

import (
    "context"
    "testing"

    . "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
    ctx := context.Background()

    Convey("create is atomic per job_id", t, func() {
        s := NewMemStore()
        rec := NewJobRecord("j1", "digest")
        So(s.Create(ctx, rec), ShouldBeNil)
        So(s.Create(ctx, rec), ShouldEqual, ErrAlreadyExists)
    })

    Convey("transition is compare-and-set", t, func() {
        s := NewMemStore()
        So(s.Create(ctx, NewJobRecord("j1", "d")), ShouldBeNil)

        So(s.Transition(ctx, "j1", StatusPending, StatusDownloading, nil), ShouldBeNil)
        // 期望状态已过期 -> Conflict
        So(s.Transition(ctx, "j1", StatusPending, StatusUploading, nil), ShouldEqual, ErrConflict)
        // 逆向迁移 -> Conflict
        So(s.Transition(ctx, "j1", StatusDownloading, StatusPending, nil), ShouldEqual, ErrConflict)
        // 未知任务 -> NotFound
        So(s.Transition(ctx, "nope", StatusPending, StatusDownloading, nil), ShouldEqual, ErrNotFound)
    })

    Convey("terminal states are immutable, error set exactly once", t, func() {
        s := NewMemStore()
        So(s.Create(ctx, NewJobRecord("j1", "d")), ShouldBeNil)
        So(s.Transition(ctx, "j1", StatusPending, StatusFailed, &JobError{Kind: ErrKindTimeout, Message: "t"}), ShouldBeNil)

        So(s.Transition(ctx, "j1", StatusFailed, StatusCompleted, nil), ShouldEqual, ErrConflict)
        rec, err := s.Get(ctx, "j1")
        So(err, ShouldBeNil)
        So(rec.Status, ShouldEqual, StatusFailed)
        So(rec.Error.Kind, ShouldEqual, ErrKindTimeout)
    })

    Convey("append is ordered and refreshes updated_at", t, func() {
        s := NewMemStore()
        So(s.Create(ctx, NewJobRecord("j1", "d")), ShouldBeNil)
        before, _ := s.Get(ctx, "j1")

        So(s.AppendFile(ctx, "j1", "ref1"), ShouldBeNil)
        So(s.AppendFile(ctx, "j1", "ref2"), ShouldBeNil)
        So(s.AppendFile(ctx, "nope", "ref"), ShouldEqual, ErrNotFound)

        rec, err := s.Get(ctx, "j1")
        So(err, ShouldBeNil)
        So(rec.UploadedFiles, ShouldResemble, []string{"ref1", "ref2"})
        So(rec.UpdatedAt, ShouldHappenOnOrAfter, before.UpdatedAt)
    })

    Convey("get returns an isolated snapshot", t, func() {
        s := NewMemStore()
        So(s.Create(ctx, NewJobRecord("j1", "d")), ShouldBeNil)
        So(s.AppendFile(ctx, "j1", "ref1"), ShouldBeNil)

        snap, _ := s.Get(ctx, "j1")
        snap.UploadedFiles[0] = "tampered"
        snap.Status = StatusFailed

        fresh, _ := s.Get(ctx, "j1")
        So(fresh.UploadedFiles[0], ShouldEqual, "ref1")
        So(fresh.Status, ShouldEqual, StatusPending)
    })

    Convey("list active excludes terminal jobs", t, func() {
        s := NewMemStore()
        So(s.Create(ctx, NewJobRecord("run", "d")), ShouldBeNil)
        So(s.Create(ctx, NewJobRecord("done", "d")), ShouldBeNil)
        So(s.Transition(ctx, "done", StatusPending, StatusCompleted, nil), ShouldBeNil)

        list, err := s.ListActive(ctx)
        So(err, ShouldBeNil)
        So(len(list), ShouldEqual, 1)
        So(list[0].JobID, ShouldEqual, "run")
    })
}
