package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"academy/internal/catalog"
	"academy/internal/domain"
	"academy/internal/i18n"
	"academy/internal/store"
)

type courseListResponse struct {
	Items         []domain.Course `json:"items"`
	Total         int             `json:"total"`
	ActiveFilters int             `json:"active_filters"`
}

type courseDetailResponse struct {
	Course domain.Course `json:"course"`
	Owned  bool          `json:"owned"`
	InCart bool          `json:"in_cart"`
	Price  string        `json:"price_formatted"`
}

// ListCourses serves the catalog narrowed by ?q=, ?level=, ?type= and
// ?category=. Filters accept repeated or comma-separated values.
func (a *App) ListCourses(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	items := catalog.Filter(a.store(r).Snapshot().Courses, q)
	a.json(w, http.StatusOK, courseListResponse{Items: items, Total: len(items), ActiveFilters: q.ActiveFilters()})
}

// GetCourse serves one course. Owned courses are returned with progress.
// Unknown ids point the client back to the owned-courses view.
func (a *App) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseIDParam(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s := a.store(r).Snapshot()
	course, ok := s.Course(id)
	owned := false
	for _, c := range s.MyCourses {
		if c.ID == id {
			course, ok, owned = c, true, true
			break
		}
	}
	if !ok {
		a.courseNotFound(w, r)
		return
	}
	a.json(w, http.StatusOK, courseDetailResponse{
		Course: course,
		Owned:  owned,
		InCart: s.InCart(id),
		Price:  i18n.FormatPrice(localeOf(r), course.Price),
	})
}

func (a *App) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var draft domain.CourseDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "title, category, level and type are required")
		return
	}
	next, err := a.store(r).Dispatch(store.AddCourse{Draft: draft})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, next.Courses[len(next.Courses)-1])
}

func (a *App) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseIDParam(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	var course domain.Course
	if err := decodeJSON(w, r, &course); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if course.ID != 0 && course.ID != id {
		a.error(w, http.StatusBadRequest, "bad_request", "course id does not match path")
		return
	}
	course.ID = id
	draft := course.Draft().Normalize()
	if err := draft.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "title, category, level and type are required")
		return
	}
	st := a.store(r)
	current, ok := st.Snapshot().Course(id)
	if !ok {
		a.courseNotFound(w, r)
		return
	}
	updated := draft.Course(id, course.Rating)
	if course.Rating == 0 {
		updated.Rating = current.Rating
	}
	next, err := st.Dispatch(store.UpdateCourse{Course: updated})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	saved, _ := next.Course(id)
	a.json(w, http.StatusOK, saved)
}

func (a *App) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseIDParam(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	st := a.store(r)
	if _, ok := st.Snapshot().Course(id); !ok {
		a.courseNotFound(w, r)
		return
	}
	if _, err := st.Dispatch(store.DeleteCourse{CourseID: id}); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) courseNotFound(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusNotFound, errorBody{
		Error:    "not_found",
		Message:  i18n.Notice(localeOf(r), i18n.KeyCourseNotFound),
		Notice:   i18n.KeyCourseNotFound,
		Redirect: "/v1/me/courses",
	})
}

func parseQuery(v url.Values) (catalog.Query, error) {
	q := catalog.Query{Search: v.Get("q")}
	for _, s := range splitValues(v["level"]) {
		l := domain.Level(s)
		if !l.Valid() {
			return q, badFilter("level", s)
		}
		q.Levels = append(q.Levels, l)
	}
	for _, s := range splitValues(v["type"]) {
		t := domain.CourseType(s)
		if !t.Valid() {
			return q, badFilter("type", s)
		}
		q.Types = append(q.Types, t)
	}
	for _, s := range splitValues(v["category"]) {
		c := domain.Category(s)
		if !c.Valid() {
			return q, badFilter("category", s)
		}
		q.Categories = append(q.Categories, c)
	}
	return q, nil
}

func splitValues(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type filterError struct{ field, value string }

func (e filterError) Error() string {
	return "unknown " + e.field + " " + e.value
}

func badFilter(field, value string) error {
	return filterError{field: field, value: value}
}
