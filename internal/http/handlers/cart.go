package handlers

import (
	"net/http"

	"academy/internal/domain"
	"academy/internal/i18n"
	"academy/internal/store"
)

type cartResponse struct {
	Items          []domain.CartItem `json:"items"`
	Total          float64           `json:"total"`
	TotalFormatted string            `json:"total_formatted"`
	Currency       string            `json:"currency"`
}

func (a *App) cartView(r *http.Request, s store.State) cartResponse {
	total := domain.CartTotal(s.Cart)
	return cartResponse{
		Items:          s.Cart,
		Total:          total,
		TotalFormatted: i18n.FormatPrice(localeOf(r), total),
		Currency:       i18n.Currency.String(),
	}
}

func (a *App) GetCart(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.cartView(r, a.store(r).Snapshot()))
}

// AddToCart puts a catalog course in the cart. Adding a course twice keeps
// a single line.
func (a *App) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req courseRef
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	st := a.store(r)
	course, ok := st.Snapshot().Course(req.CourseID)
	if !ok {
		a.courseNotFound(w, r)
		return
	}
	next, err := st.Dispatch(store.AddToCart{Course: course})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.cartView(r, next))
}

func (a *App) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := courseIDParam(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	next, err := a.store(r).Dispatch(store.RemoveFromCart{CourseID: id})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.cartView(r, next))
}

func (a *App) ClearCart(w http.ResponseWriter, r *http.Request) {
	next, err := a.store(r).Dispatch(store.ClearCart{})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.cartView(r, next))
}

// Checkout moves the cart into the owned courses. Signed-out sessions get
// a 401 with the localized sign-in notice and keep their cart.
func (a *App) Checkout(w http.ResponseWriter, r *http.Request) {
	next, err := a.store(r).Dispatch(store.Checkout{})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newMyCoursesResponse(next.MyCourses))
}
