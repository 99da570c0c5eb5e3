package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"academy/internal/domain"
	"academy/internal/i18n"
	"academy/internal/middleware"
	"academy/internal/store"
	"academy/internal/tutor"
)

const maxBodyBytes = 1 << 20

// App carries the dependencies of every handler.
type App struct {
	Logger       zerolog.Logger
	Sessions     *Sessions
	TutorTimeout time.Duration
}

// Options configures NewApp.
type Options struct {
	Logger        zerolog.Logger
	Reducer       *store.Reducer
	Catalog       []domain.Course
	TutorFactory  tutor.ChatFactory
	TutorPreamble string
	TutorTimeout  time.Duration
	MaxSessions   int
}

func NewApp(opts Options) *App {
	timeout := opts.TutorTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &App{
		Logger: opts.Logger,
		Sessions: NewSessions(SessionOptions{
			Reducer:       opts.Reducer,
			Catalog:       opts.Catalog,
			TutorFactory:  opts.TutorFactory,
			TutorPreamble: opts.TutorPreamble,
			MaxSessions:   opts.MaxSessions,
			Logger:        opts.Logger,
		}),
		TutorTimeout: timeout,
	}
}

type errorBody struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Notice   string `json:"notice,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errCode, Message: message})
}

// notice writes a localized failure for key.
func (a *App) notice(w http.ResponseWriter, r *http.Request, code int, errCode, key string) {
	a.json(w, code, errorBody{
		Error:   errCode,
		Message: i18n.Notice(middleware.LocaleFromContext(r.Context()), key),
		Notice:  key,
	})
}

// fail maps a store or tutor error onto a response.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	key := ""
	var n *domain.Notice
	if errors.As(err, &n) {
		key = n.Key
	}
	locale := middleware.LocaleFromContext(r.Context())
	body := errorBody{Message: err.Error(), Notice: key}
	if key != "" {
		body.Message = i18n.Notice(locale, key)
	}

	code := http.StatusConflict
	switch {
	case errors.Is(err, domain.ErrSignInRequired), errors.Is(err, domain.ErrUnauthorized):
		code, body.Error = http.StatusUnauthorized, "sign_in_required"
	case errors.Is(err, domain.ErrForbidden):
		code, body.Error = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		code, body.Error = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidCourse), errors.Is(err, domain.ErrInvalidPrompt):
		code, body.Error = http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrMissingCredential):
		code, body.Error = http.StatusServiceUnavailable, "configuration_error"
		body.Notice = i18n.KeyTutorOffline
		body.Message = i18n.Notice(locale, i18n.KeyTutorOffline)
	default:
		body.Error = "conflict"
	}
	if code >= http.StatusInternalServerError {
		log := middleware.RequestLogger(r.Context(), a.Logger)
		log.Error().Err(err).Msg("request failed")
	}
	a.json(w, code, body)
}

// store returns the state container of the calling session.
func (a *App) store(r *http.Request) *store.Store {
	return a.Sessions.For(middleware.SessionIDFromContext(r.Context()))
}

// tutor returns the tutor bridge of the calling session.
func (a *App) tutor(r *http.Request) *tutor.Bridge {
	return a.Sessions.Tutor(middleware.SessionIDFromContext(r.Context()))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}
		return err
	}
	return nil
}

func courseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid course id %q", chi.URLParam(r, name))
	}
	return id, nil
}

type courseRef struct {
	CourseID int64 `json:"course_id"`
}

func localeOf(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}
