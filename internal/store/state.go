package store

import "academy/internal/domain"

// State is an immutable snapshot of the storefront. Reducers never write
// into the slices of a State they receive.
type State struct {
	Courses         []domain.Course   `json:"courses"`
	Cart            []domain.CartItem `json:"cart"`
	MyCourses       []domain.Course   `json:"my_courses"`
	IsAuthenticated bool              `json:"is_authenticated"`
	User            *domain.User      `json:"user"`
}

// Initial returns the signed-out state over the given catalog.
func Initial(courses []domain.Course) State {
	return State{
		Courses:   cloneCourses(courses),
		Cart:      []domain.CartItem{},
		MyCourses: []domain.Course{},
	}
}

// Course looks up a catalog entry by id.
func (s State) Course(id int64) (domain.Course, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Course{}, false
}

// InCart reports whether the cart holds the course id.
func (s State) InCart(id int64) bool {
	for _, item := range s.Cart {
		if item.Course.ID == id {
			return true
		}
	}
	return false
}

// Owns reports whether the course id is in myCourses.
func (s State) Owns(id int64) bool {
	for _, c := range s.MyCourses {
		if c.ID == id {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the signed-in user is an administrator.
func (s State) IsAdmin() bool {
	return s.IsAuthenticated && s.User != nil && s.User.IsAdmin
}

func cloneCourses(in []domain.Course) []domain.Course {
	out := make([]domain.Course, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
