// Package service holds the use cases behind the REST API. Every operation
// performs its primary write first; notifications, audit entries and domain
// events follow as best-effort side effects.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/events"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/notify"
	"github.com/purbarunBC13/team-tracker/security"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrProjectHasTasks    = errors.New("project still has tasks")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("account is deactivated")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Caller is the authenticated principal plus the request it came from.
type Caller struct {
	security.Principal
	Request *activity.RequestContext
}

type Service struct {
	store     store.Store
	notifier  *notify.Notifier
	recorder  *activity.Recorder
	publisher *events.Publisher
	tokens    *security.TokenManager
	logger    *log.Logger
	now       func() time.Time
}

func New(st store.Store, notifier *notify.Notifier, recorder *activity.Recorder, publisher *events.Publisher, tokens *security.TokenManager, logger *log.Logger) *Service {
	return &Service{
		store:     st,
		notifier:  notifier,
		recorder:  recorder,
		publisher: publisher,
		tokens:    tokens,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Activity() *activity.Recorder {
	return s.recorder
}

// GetUser loads an account by id; the auth middleware uses it to check that a
// token still belongs to an active user.
func (s *Service) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.store.Users.GetUser(ctx, id)
}

func (s *Service) Ping(ctx context.Context) error {
	if s.store.Ping == nil {
		return nil
	}
	return s.store.Ping(ctx)
}

func (s *Service) record(ctx context.Context, c Caller, action models.Action, target activity.Target, meta activity.Metadata) {
	s.recorder.Record(ctx, c.ID, action, target, c.Request, meta)
}

// userName resolves a display name for audit metadata; lookups that fail
// leave the name empty so the description falls back to its placeholder.
func (s *Service) userName(ctx context.Context, id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	u, err := s.store.Users.GetUser(ctx, id)
	if err != nil {
		return ""
	}
	return u.Name
}
