package handlers

import (
	"net/http"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/service"
	"github.com/purbarunBC13/team-tracker/store"
)

func activityQuery(r *http.Request) (activity.Query, error) {
	q := activity.Query{
		Action:     models.Action(r.URL.Query().Get("action")),
		EntityType: models.EntityType(r.URL.Query().Get("entityType")),
	}
	var err error
	if q.From, err = queryTime(r, "from", false); err != nil {
		return q, err
	}
	if q.To, err = queryTime(r, "to", true); err != nil {
		return q, err
	}
	if q.Skip, err = queryInt(r, "skip"); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func (h *Handler) MyActivity(w http.ResponseWriter, r *http.Request) {
	q, err := activityQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Activity().Mine(r.Context(), caller(r).ID, q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q, err := activityQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.Actor, err = queryID(r, "actor"); err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Activity().List(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *Handler) ActivityStats(w http.ResponseWriter, r *http.Request) {
	groupBy := store.GroupBy(r.URL.Query().Get("groupBy"))
	if groupBy != "" && !groupBy.Valid() {
		h.writeError(w, r, &service.ValidationError{Field: "groupBy", Message: "must be action, entityType or actor"})
		return
	}
	from, err := queryTime(r, "from", false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	to, err := queryTime(r, "to", true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	stats, err := h.svc.Activity().Stats(r.Context(), groupBy, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CleanupActivity(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	deleted, err := h.svc.Activity().Cleanup(r.Context(), int(days))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
