package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/sse"

	"academy/internal/domain"
	"academy/internal/middleware"
)

type tutorRequest struct {
	Message  string               `json:"message"`
	Messages []domain.ChatMessage `json:"messages"`
}

// TutorMessage streams the tutor's reply to one user message as server-sent
// events: one "fragment" event per piece of text, then "done".
func (a *App) TutorMessage(w http.ResponseWriter, r *http.Request) {
	id, err := courseIDParam(r, "courseID")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s := a.store(r).Snapshot()
	course, ok := s.Course(id)
	if !ok {
		for _, c := range s.MyCourses {
			if c.ID == id {
				course, ok = c, true
				break
			}
		}
	}
	if !ok {
		a.courseNotFound(w, r)
		return
	}

	var req tutorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	history := req.Messages
	if msg := strings.TrimSpace(req.Message); msg != "" {
		history = append(history, domain.ChatMessage{Role: domain.ChatRoleUser, Text: msg})
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.TutorTimeout)
	defer cancel()

	fragments, err := a.tutor(r).StreamReply(ctx, course, history)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	h := w.Header()
	h.Set("Content-Type", sse.ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	seq := 0
	for fragment := range fragments {
		if err := sse.Encode(w, sse.Event{Event: "fragment", Data: fragment}); err != nil {
			cancel()
			log := middleware.RequestLogger(r.Context(), a.Logger)
			log.Debug().Err(err).Msg("tutor: client went away")
			for range fragments {
			}
			return
		}
		seq++
		if flusher != nil {
			flusher.Flush()
		}
	}
	_ = sse.Encode(w, sse.Event{Event: "done", Data: map[string]int{"fragments": seq}})
	if flusher != nil {
		flusher.Flush()
	}
}
