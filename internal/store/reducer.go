package store

import (
	"math"
	"math/rand"
	"time"

	"academy/internal/domain"
)

// Notice keys reported by the reducer.
const (
	NoticeCheckoutSignIn = "checkout_sign_in"
	NoticeEnrollSignIn   = "enroll_sign_in"
	NoticeAdminOnly      = "admin_only"
)

const (
	maxPurchaseProgress = 25
	minGeneratedRating  = 4.2
	ratingSpread        = 0.8
)

// Randomizer supplies the randomness used for purchase progress and ratings.
// *rand.Rand from math/rand/v2 satisfies it.
type Randomizer interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.Intn(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// Reducer computes the next state for an action. The zero value is usable:
// it draws from the global source, reads the wall clock, knows no admins and
// leaves catalog mutations unguarded.
type Reducer struct {
	Rand   Randomizer
	Now    func() time.Time
	Admins domain.AdminAllowlist
	// GuardAdminActions rejects catalog mutations unless the session is an admin.
	GuardAdminActions bool
}

// Reduce applies a to s. When it returns an error the returned state is s.
func (r *Reducer) Reduce(s State, a Action) (State, error) {
	if r.GuardAdminActions && IsAdminAction(a) && !s.IsAdmin() {
		return s, domain.NewNotice(NoticeAdminOnly, domain.ErrForbidden)
	}

	switch a := a.(type) {
	case AddToCart:
		if s.InCart(a.Course.ID) {
			return s, nil
		}
		cart := make([]domain.CartItem, 0, len(s.Cart)+1)
		cart = append(cart, s.Cart...)
		cart = append(cart, domain.CartItem{Course: a.Course.Clone(), Quantity: 1})
		s.Cart = cart
		return s, nil

	case RemoveFromCart:
		cart := make([]domain.CartItem, 0, len(s.Cart))
		for _, item := range s.Cart {
			if item.Course.ID != a.CourseID {
				cart = append(cart, item)
			}
		}
		s.Cart = cart
		return s, nil

	case ClearCart:
		s.Cart = []domain.CartItem{}
		return s, nil

	case Checkout:
		if !s.IsAuthenticated {
			return s, domain.NewNotice(NoticeCheckoutSignIn, domain.ErrSignInRequired)
		}
		owned := make(map[int64]struct{}, len(s.MyCourses))
		for _, c := range s.MyCourses {
			owned[c.ID] = struct{}{}
		}
		mine := make([]domain.Course, 0, len(s.MyCourses)+len(s.Cart))
		mine = append(mine, s.MyCourses...)
		for _, item := range s.Cart {
			progress := r.rand().IntN(maxPurchaseProgress + 1)
			if _, ok := owned[item.Course.ID]; ok {
				continue
			}
			owned[item.Course.ID] = struct{}{}
			mine = append(mine, item.Course.WithProgress(progress))
		}
		s.MyCourses = mine
		s.Cart = []domain.CartItem{}
		return s, nil

	case EnrollFreeCourse:
		if !s.IsAuthenticated {
			return s, domain.NewNotice(NoticeEnrollSignIn, domain.ErrSignInRequired)
		}
		if s.Owns(a.Course.ID) {
			return s, nil
		}
		mine := make([]domain.Course, 0, len(s.MyCourses)+1)
		mine = append(mine, s.MyCourses...)
		s.MyCourses = append(mine, a.Course.WithProgress(0))
		return s, nil

	case SignIn:
		user := a.User
		user.IsAdmin = r.Admins.Contains(user.Email)
		s.IsAuthenticated = true
		s.User = &user
		return s, nil

	case SignUp:
		user := a.User
		user.IsAdmin = false
		s.IsAuthenticated = true
		s.User = &user
		return s, nil

	case SignOut:
		next := Initial(nil)
		next.Courses = s.Courses
		return next, nil

	case AddCourse:
		course := a.Draft.Course(r.nextID(s.Courses), r.rating())
		courses := make([]domain.Course, 0, len(s.Courses)+1)
		courses = append(courses, s.Courses...)
		s.Courses = append(courses, course)
		return s, nil

	case UpdateCourse:
		if _, ok := s.Course(a.Course.ID); !ok {
			return s, nil
		}
		updated := a.Course.Clone()
		updated.Progress = nil
		if updated.IsFree() {
			updated.Price = 0
		}
		courses := make([]domain.Course, len(s.Courses))
		for i, c := range s.Courses {
			if c.ID == updated.ID {
				courses[i] = updated
				continue
			}
			courses[i] = c
		}
		s.Courses = courses
		return s, nil

	case DeleteCourse:
		courses := make([]domain.Course, 0, len(s.Courses))
		for _, c := range s.Courses {
			if c.ID != a.CourseID {
				courses = append(courses, c)
			}
		}
		s.Courses = courses
		return s, nil
	}

	return s, nil
}

// nextID derives an id from the creation time in milliseconds, bumped past
// every existing id so rapid adds stay unique and increasing.
func (r *Reducer) nextID(courses []domain.Course) int64 {
	id := r.now().UnixMilli()
	for _, c := range courses {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	return id
}

func (r *Reducer) rating() float64 {
	v := r.rand().Float64()*ratingSpread + minGeneratedRating
	return math.Round(v*10) / 10
}

func (r *Reducer) rand() Randomizer {
	if r.Rand == nil {
		return globalRand{}
	}
	return r.Rand
}

func (r *Reducer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
