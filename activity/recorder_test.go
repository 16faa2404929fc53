package activity

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/purbarunBC13/team-tracker/memstore"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixedClock struct{ at time.Time }

func (c *fixedClock) now() time.Time { return c.at }

func newTestRecorder(t *testing.T) (*Recorder, *memstore.Memory, *fixedClock) {
	t.Helper()
	mem := memstore.New()
	clock := &fixedClock{at: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewRecorder(mem, log.New(io.Discard, "", 0)).WithClock(clock.now), mem, clock
}

func TestRecordTaskCreated(t *testing.T) {
	r, _, _ := newTestRecorder(t)
	actor := primitive.NewObjectID()
	project := primitive.NewObjectID()
	task := &models.Task{ID: primitive.NewObjectID(), Title: "Design API", Project: &project}

	res := r.Record(context.Background(), actor, models.ActionTaskCreated, TaskTarget(task),
		&RequestContext{IP: "10.0.0.1", UserAgent: "curl/8"},
		Metadata{MetaPriority: "high", MetaAssigneeName: "Ana"})
	if res.Err != nil {
		t.Fatalf("record: %v", res.Err)
	}
	entry := res.Log
	want := `Created task "Design API" with high priority and assigned it to Ana`
	if entry.Description != want {
		t.Fatalf("unexpected description %q", entry.Description)
	}
	if entry.EntityType != models.EntityTask || entry.EntityID == nil || *entry.EntityID != task.ID {
		t.Fatalf("unexpected entity %+v", entry)
	}
	if entry.RelatedEntityType != models.EntityProject || entry.RelatedEntityID == nil || *entry.RelatedEntityID != project {
		t.Fatalf("unexpected related entity %+v", entry)
	}
	if entry.IPAddress != "10.0.0.1" || entry.UserAgent != "curl/8" {
		t.Fatalf("request context not attached: %+v", entry)
	}
}

func TestDescriptionsDegradeGracefully(t *testing.T) {
	cases := []struct {
		action models.Action
		target Target
		want   string
	}{
		{models.ActionTaskCreated, Target{Name: "X"}, `Created task "X" with unknown priority and assigned it to a user`},
		{models.ActionTaskStatusChanged, Target{}, `Changed status of task "unknown" to unknown`},
		{models.ActionTaskAssigned, Target{Name: "X"}, `Assigned task "X" to a user`},
		{models.ActionUserLogin, Target{}, "a user logged in"},
		{models.ActionProjectOwnerChanged, Target{Name: "P"}, `Assigned project "P" to a user`},
		{models.ActionCommentDeleted, Target{}, `Deleted a comment on task "unknown"`},
		{models.ActionTeamMemberAdded, Target{Name: "Bo"}, "Added Bo to the team as unknown"},
		{models.Action("archived"), Target{Name: "Z"}, "Performed archived on Z"},
	}
	for _, c := range cases {
		if got := Describe(c.action, c.target, nil); got != c.want {
			t.Fatalf("%s: expected %q got %q", c.action, c.want, got)
		}
	}
}

func TestRecordWithoutRequestContext(t *testing.T) {
	r, _, _ := newTestRecorder(t)
	res := r.Record(context.Background(), primitive.NewObjectID(), models.ActionUserLogout, Target{Type: models.EntityUser, Name: "Ana"}, nil, nil)
	if res.Err != nil {
		t.Fatalf("record: %v", res.Err)
	}
	if res.Log.IPAddress != "" || res.Log.UserAgent != "" {
		t.Fatalf("expected empty request details got %+v", res.Log)
	}
}

func TestRecordUnknownActionIsDropped(t *testing.T) {
	r, mem, _ := newTestRecorder(t)
	res := r.Record(context.Background(), primitive.NewObjectID(), models.Action("task_archived"), Target{}, nil, nil)
	if !errors.Is(res.Err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction got %v", res.Err)
	}
	_, total, _ := mem.ListActivity(context.Background(), store.ActivityFilter{})
	if total != 0 {
		t.Fatalf("expected nothing stored got %d", total)
	}
}

func TestRecordStoreFailureIsSwallowed(t *testing.T) {
	r, mem, _ := newTestRecorder(t)
	mem.FailActivity = errors.New("connection reset")
	res := r.Record(context.Background(), primitive.NewObjectID(), models.ActionTaskDeleted, Target{}, nil, nil)
	if res.Err == nil || res.Log != nil {
		t.Fatalf("expected failed result got %+v", res)
	}
}

func seed(t *testing.T, r *Recorder, clock *fixedClock, actor primitive.ObjectID, action models.Action, typ models.EntityType, at time.Time) {
	t.Helper()
	clock.at = at
	if res := r.Record(context.Background(), actor, action, Target{Type: typ, Name: "n"}, nil, nil); res.Err != nil {
		t.Fatalf("seed: %v", res.Err)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	ctx := context.Background()
	ana, bo := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seed(t, r, clock, ana, models.ActionTaskCreated, models.EntityTask, base.Add(time.Duration(i)*time.Hour))
	}
	seed(t, r, clock, bo, models.ActionProjectCreated, models.EntityProject, base.Add(10*time.Hour))

	all, err := r.List(ctx, Query{Limit: 4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Items) != 4 || all.Total != 6 {
		t.Fatalf("expected 4 of 6 got %d of %d", len(all.Items), all.Total)
	}
	if !all.Items[0].CreatedAt.Equal(base.Add(10 * time.Hour)) {
		t.Fatalf("expected newest first, got %v", all.Items[0].CreatedAt)
	}

	mine, err := r.Mine(ctx, ana, Query{Skip: 3, Limit: 10})
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if mine.Total != 5 || len(mine.Items) != 2 {
		t.Fatalf("expected 2 of 5 got %d of %d", len(mine.Items), mine.Total)
	}

	from, to := base.Add(time.Hour), base.Add(3*time.Hour)
	ranged, err := r.List(ctx, Query{EntityType: models.EntityTask, From: &from, To: &to})
	if err != nil {
		t.Fatalf("ranged: %v", err)
	}
	if ranged.Total != 3 {
		t.Fatalf("expected 3 in range got %d", ranged.Total)
	}

	byAction, err := r.List(ctx, Query{Action: models.ActionProjectCreated})
	if err != nil {
		t.Fatalf("by action: %v", err)
	}
	if byAction.Total != 1 || byAction.Items[0].Actor != bo {
		t.Fatalf("unexpected action filter result %+v", byAction)
	}
}

func TestListUnfilteredPageMatchesTotal(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	ctx := context.Background()
	actor := primitive.NewObjectID()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seed(t, r, clock, actor, models.ActionUserLogin, models.EntityUser, base.Add(time.Duration(i)*time.Minute))
	}

	var seen int
	for skip := int64(0); skip < 7; skip += 3 {
		page, err := r.List(ctx, Query{Skip: skip, Limit: 3})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if int64(len(page.Items)) > page.Limit {
			t.Fatalf("page larger than limit: %d > %d", len(page.Items), page.Limit)
		}
		if page.Total != 7 {
			t.Fatalf("expected total 7 got %d", page.Total)
		}
		seen += len(page.Items)
	}
	if seen != 7 {
		t.Fatalf("expected to walk 7 entries got %d", seen)
	}
}

func TestListLimitClamped(t *testing.T) {
	if f := (Query{Limit: 1000}).filter(); f.Limit != MaxLimit {
		t.Fatalf("expected %d got %d", MaxLimit, f.Limit)
	}
	if f := (Query{}).filter(); f.Limit != DefaultLimit {
		t.Fatalf("expected %d got %d", DefaultLimit, f.Limit)
	}
}

func TestStatsGroupedAndSorted(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	ctx := context.Background()
	actor := primitive.NewObjectID()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seed(t, r, clock, actor, models.ActionTaskCreated, models.EntityTask, base)
	seed(t, r, clock, actor, models.ActionTaskCreated, models.EntityTask, base.Add(2*time.Hour))
	seed(t, r, clock, actor, models.ActionUserLogin, models.EntityUser, base.Add(time.Hour))

	stats, err := r.Stats(ctx, store.GroupByAction, nil, nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 || stats[0].Key != string(models.ActionTaskCreated) || stats[0].Count != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !stats[0].LastActivity.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected last activity %v", stats[0].LastActivity)
	}

	byActor, err := r.Stats(ctx, store.GroupByActor, nil, nil)
	if err != nil {
		t.Fatalf("stats by actor: %v", err)
	}
	if len(byActor) != 1 || byActor[0].Key != actor.Hex() || byActor[0].Count != 3 {
		t.Fatalf("unexpected actor stats %+v", byActor)
	}

	if _, err := r.Stats(ctx, store.GroupBy("colour"), nil, nil); err == nil {
		t.Fatalf("expected error for unknown grouping")
	}
}

func TestCleanupRemovesOldEntries(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	ctx := context.Background()
	actor := primitive.NewObjectID()
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	seed(t, r, clock, actor, models.ActionUserLogin, models.EntityUser, now.AddDate(0, 0, -40))
	seed(t, r, clock, actor, models.ActionUserLogin, models.EntityUser, now.AddDate(0, 0, -31))
	seed(t, r, clock, actor, models.ActionUserLogin, models.EntityUser, now.AddDate(0, 0, -5))

	clock.at = now
	deleted, err := r.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted got %d", deleted)
	}
	if _, err := r.Cleanup(ctx, 0); !errors.Is(err, ErrInvalidRetention) {
		t.Fatalf("expected ErrInvalidRetention got %v", err)
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rc := FromRequest(req)
	if rc.IP != "192.168.1.5" || rc.UserAgent != "Mozilla/5.0" {
		t.Fatalf("unexpected context %+v", rc)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if rc := FromRequest(req); rc.IP != "203.0.113.9" {
		t.Fatalf("expected forwarded ip got %s", rc.IP)
	}
	if FromRequest(nil) != nil {
		t.Fatalf("expected nil context for nil request")
	}
}
