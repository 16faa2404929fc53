// Package activity records the audit trail and answers queries over it.
package activity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metadata keys read by the description templates.
const (
	MetaPriority     = "priority"
	MetaAssigneeName = "assigneeName"
	MetaNewStatus    = "newStatus"
	MetaOldStatus    = "oldStatus"
	MetaOwnerName    = "ownerName"
	MetaRole         = "role"
	MetaChanges      = "changes"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrUnknownAction    = errors.New("unknown activity action")
	ErrInvalidRetention = errors.New("retention must be at least one day")
)

type Metadata map[string]interface{}

// Target is the entity an action applied to, optionally with a related one
// (the task a comment belongs to, the project a task sits in).
type Target struct {
	Type    models.EntityType
	ID      primitive.ObjectID
	Name    string
	Related *Target
}

func UserTarget(u *models.User) Target {
	return Target{Type: models.EntityUser, ID: u.ID, Name: u.Name}
}

func ProjectTarget(p *models.Project) Target {
	return Target{Type: models.EntityProject, ID: p.ID, Name: p.Title}
}

func TaskTarget(t *models.Task) Target {
	target := Target{Type: models.EntityTask, ID: t.ID, Name: t.Title}
	if t.Project != nil {
		target.Related = &Target{Type: models.EntityProject, ID: *t.Project}
	}
	return target
}

func CommentTarget(t *models.Task, commentID primitive.ObjectID) Target {
	return Target{
		Type:    models.EntityComment,
		ID:      commentID,
		Related: &Target{Type: models.EntityTask, ID: t.ID, Name: t.Title},
	}
}

// Result is the outcome of one audit write; Err is only ever logged.
type Result struct {
	Log *models.ActivityLog
	Err error
}

type Recorder struct {
	store  store.ActivityStore
	logger *log.Logger
	now    func() time.Time
}

func NewRecorder(s store.ActivityStore, logger *log.Logger) *Recorder {
	return &Recorder{store: s, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the recorder's time source.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record writes one audit entry for action by actor on target. rc may be nil.
// Failures are logged and returned in the Result, never as an error.
func (r *Recorder) Record(ctx context.Context, actor primitive.ObjectID, action models.Action, target Target, rc *RequestContext, meta Metadata) Result {
	if !action.Valid() {
		r.logger.Printf("Dropping activity with unknown action %q by %s", action, actor.Hex())
		return Result{Err: fmt.Errorf("%w: %q", ErrUnknownAction, action)}
	}

	entry := &models.ActivityLog{
		ID:          primitive.NewObjectID(),
		Actor:       actor,
		Action:      action,
		Description: Describe(action, target, meta),
		EntityType:  target.Type,
		EntityName:  target.Name,
		Metadata:    meta,
		CreatedAt:   r.now(),
	}
	if !target.ID.IsZero() {
		id := target.ID
		entry.EntityID = &id
	}
	if rel := target.Related; rel != nil {
		entry.RelatedEntityType = rel.Type
		entry.RelatedEntityName = rel.Name
		if !rel.ID.IsZero() {
			id := rel.ID
			entry.RelatedEntityID = &id
		}
	}
	if rc != nil {
		entry.IPAddress = rc.IP
		entry.UserAgent = rc.UserAgent
	}

	if err := r.store.CreateActivity(ctx, entry); err != nil {
		r.logger.Printf("Failed to record %s activity for %s: %v", action, actor.Hex(), err)
		return Result{Err: err}
	}
	return Result{Log: entry}
}

// Query selects activity entries; zero values mean "any".
type Query struct {
	Actor      *primitive.ObjectID
	Action     models.Action
	EntityType models.EntityType
	From       *time.Time
	To         *time.Time
	Skip       int64
	Limit      int64
}

type Page struct {
	Items []models.ActivityLog `json:"items"`
	Total int64                `json:"total"`
	Skip  int64                `json:"skip"`
	Limit int64                `json:"limit"`
}

func (q Query) filter() store.ActivityFilter {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	return store.ActivityFilter{
		Actor:      q.Actor,
		Action:     q.Action,
		EntityType: q.EntityType,
		From:       q.From,
		To:         q.To,
		Skip:       skip,
		Limit:      limit,
	}
}

// Mine lists actor's own activity.
func (r *Recorder) Mine(ctx context.Context, actor primitive.ObjectID, q Query) (Page, error) {
	q.Actor = &actor
	return r.List(ctx, q)
}

// List lists system-wide activity newest first.
func (r *Recorder) List(ctx context.Context, q Query) (Page, error) {
	f := q.filter()
	items, total, err := r.store.ListActivity(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("list activity: %w", err)
	}
	return Page{Items: items, Total: total, Skip: f.Skip, Limit: f.Limit}, nil
}

func (r *Recorder) Stats(ctx context.Context, groupBy store.GroupBy, from, to *time.Time) ([]store.ActivityStat, error) {
	if groupBy == "" {
		groupBy = store.GroupByAction
	}
	if !groupBy.Valid() {
		return nil, fmt.Errorf("unsupported group %q", groupBy)
	}
	return r.store.ActivityStats(ctx, groupBy, from, to)
}

// Cleanup removes entries older than days and returns how many were deleted.
func (r *Recorder) Cleanup(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, ErrInvalidRetention
	}
	cutoff := r.now().AddDate(0, 0, -days)
	deleted, err := r.store.DeleteActivityBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup activity: %w", err)
	}
	r.logger.Printf("Removed %d activity entries older than %d days", deleted, days)
	return deleted, nil
}
