package handlers

import (
	"net/http"
	"strings"

	"academy/internal/domain"
	"academy/internal/i18n"
	"academy/internal/store"
)

// demoUserName is the display name given to every sign-in; accounts are
// not persisted, so only sign-up can choose one.
const demoUserName = "Demo User"

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	IsAuthenticated bool         `json:"is_authenticated"`
	User            *domain.User `json:"user"`
	CartCount       int          `json:"cart_count"`
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, me(a.store(r).Snapshot()))
}

// SignIn accepts any email and password pair. The password is required but
// never checked.
func (a *App) SignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readCredentials(w, r, false)
	if !ok {
		return
	}
	next, err := a.store(r).Dispatch(store.SignIn{User: domain.User{Name: demoUserName, Email: req.Email}})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, me(next))
}

func (a *App) SignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readCredentials(w, r, true)
	if !ok {
		return
	}
	next, err := a.store(r).Dispatch(store.SignUp{User: domain.User{Name: req.Name, Email: req.Email}})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, me(next))
}

func (a *App) SignOut(w http.ResponseWriter, r *http.Request) {
	if _, err := a.store(r).Dispatch(store.SignOut{}); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) readCredentials(w http.ResponseWriter, r *http.Request, needName bool) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.notice(w, r, http.StatusBadRequest, "bad_request", i18n.KeyInvalidRequest)
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || (needName && req.Name == "") {
		a.notice(w, r, http.StatusBadRequest, "bad_request", i18n.KeyFillAllFields)
		return req, false
	}
	return req, true
}

func me(s store.State) meResponse {
	return meResponse{IsAuthenticated: s.IsAuthenticated, User: s.User, CartCount: len(s.Cart)}
}
