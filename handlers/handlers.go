// Package handlers exposes the service over a gorilla/mux REST API.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/security"
	"github.com/purbarunBC13/team-tracker/service"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	logger *log.Logger
	svc    *service.Service
}

func NewHandler(l *log.Logger, svc *service.Service) *Handler {
	return &Handler{logger: l, svc: svc}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Printf("Unable to encode response: %v", err)
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps service and store errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without detail.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, activity.ErrInvalidRetention):
		h.writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrInactiveUser):
		h.writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		h.writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrProjectHasTasks), errors.Is(err, store.ErrDuplicate):
		h.writeMessage(w, http.StatusConflict, err.Error())
	default:
		h.logger.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		h.writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// caller builds the service caller from the authenticated request.
func caller(r *http.Request) service.Caller {
	p, _ := security.PrincipalFrom(r.Context())
	return service.Caller{Principal: p, Request: activity.FromRequest(r)}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryID(r *http.Request, name string) (*primitive.ObjectID, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return nil, &service.ValidationError{Field: name, Message: "is not a valid id"}
	}
	return &id, nil
}

func queryInt(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: "must be a number"}
	}
	return n, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates. A plain date used as
// an upper bound covers the whole day.
func queryTime(r *http.Request, name string, upper bool) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, &service.ValidationError{Field: name, Message: "must be a date or RFC 3339 timestamp"}
	}
	if upper {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.logger.Printf("Health check failed: %v", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
