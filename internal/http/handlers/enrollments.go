package handlers

import (
	"net/http"

	"academy/internal/domain"
	"academy/internal/i18n"
	"academy/internal/store"
)

type myCoursesResponse struct {
	Items []domain.Course `json:"items"`
	domain.LearningStats
}

func newMyCoursesResponse(owned []domain.Course) myCoursesResponse {
	return myCoursesResponse{Items: owned, LearningStats: domain.SummarizeLearning(owned)}
}

// Enroll grants a free course directly, skipping the cart.
func (a *App) Enroll(w http.ResponseWriter, r *http.Request) {
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
	if !course.IsFree() {
		a.error(w, http.StatusConflict, "not_free", "only free courses can be enrolled without checkout")
		return
	}
	next, err := st.Dispatch(store.EnrollFreeCourse{Course: course})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newMyCoursesResponse(next.MyCourses))
}

// MyCourses lists the caller's owned courses with their dashboard stats.
func (a *App) MyCourses(w http.ResponseWriter, r *http.Request) {
	s := a.store(r).Snapshot()
	if !s.IsAuthenticated {
		a.notice(w, r, http.StatusUnauthorized, "sign_in_required", i18n.KeyCoursesSignIn)
		return
	}
	a.json(w, http.StatusOK, newMyCoursesResponse(s.MyCourses))
}
