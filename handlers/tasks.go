package handlers

import (
	"net/http"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/service"
	"github.com/purbarunBC13/team-tracker/store"
)

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.TaskFilter{
		Status:   models.TaskStatus(q.Get("status")),
		Priority: models.TaskPriority(q.Get("priority")),
	}
	var err error
	if f.Project, err = queryID(r, "project"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if f.Assignee, err = queryID(r, "assignee"); err != nil {
		h.writeError(w, r, err)
		return
	}
	tasks, err := h.svc.ListTasks(r.Context(), caller(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := h.svc.GetTask(r.Context(), caller(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if !h.decode(w, r, &in) {
		return
	}
	task, err := h.svc.CreateTask(r.Context(), caller(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.TaskInput
	if !h.decode(w, r, &in) {
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), caller(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.TaskStatus `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.svc.UpdateTaskStatus(r.Context(), caller(r), id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(r.Context(), caller(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.CommentInput
	if !h.decode(w, r, &in) {
		return
	}
	comment, err := h.svc.AddComment(r.Context(), caller(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := h.pathID(w, r, "commentId")
	if !ok {
		return
	}
	var in service.CommentInput
	if !h.decode(w, r, &in) {
		return
	}
	comment, err := h.svc.UpdateComment(r.Context(), caller(r), taskID, commentID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comment)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := h.pathID(w, r, "commentId")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(r.Context(), caller(r), taskID, commentID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
