package store

import "academy/internal/domain"

// ActionType names an action for logging.
type ActionType string

const (
	ActionAddToCart        ActionType = "ADD_TO_CART"
	ActionRemoveFromCart   ActionType = "REMOVE_FROM_CART"
	ActionClearCart        ActionType = "CLEAR_CART"
	ActionCheckout         ActionType = "CHECKOUT"
	ActionEnrollFreeCourse ActionType = "ENROLL_FREE_COURSE"
	ActionSignIn           ActionType = "SIGN_IN"
	ActionSignUp           ActionType = "SIGN_UP"
	ActionSignOut          ActionType = "SIGN_OUT"
	ActionAddCourse        ActionType = "ADD_COURSE"
	ActionUpdateCourse     ActionType = "UPDATE_COURSE"
	ActionDeleteCourse     ActionType = "DELETE_COURSE"
)

// Action is the closed set of state transitions. Only the types in this file
// implement it.
type Action interface {
	Type() ActionType
	action()
}

type AddToCart struct{ Course domain.Course }
type RemoveFromCart struct{ CourseID int64 }
type ClearCart struct{}
type Checkout struct{}
type EnrollFreeCourse struct{ Course domain.Course }
type SignIn struct{ User domain.User }
type SignUp struct{ User domain.User }
type SignOut struct{}
type AddCourse struct{ Draft domain.CourseDraft }
type UpdateCourse struct{ Course domain.Course }
type DeleteCourse struct{ CourseID int64 }

func (AddToCart) Type() ActionType        { return ActionAddToCart }
func (RemoveFromCart) Type() ActionType   { return ActionRemoveFromCart }
func (ClearCart) Type() ActionType        { return ActionClearCart }
func (Checkout) Type() ActionType         { return ActionCheckout }
func (EnrollFreeCourse) Type() ActionType { return ActionEnrollFreeCourse }
func (SignIn) Type() ActionType           { return ActionSignIn }
func (SignUp) Type() ActionType           { return ActionSignUp }
func (SignOut) Type() ActionType          { return ActionSignOut }
func (AddCourse) Type() ActionType        { return ActionAddCourse }
func (UpdateCourse) Type() ActionType     { return ActionUpdateCourse }
func (DeleteCourse) Type() ActionType     { return ActionDeleteCourse }

func (AddToCart) action()        {}
func (RemoveFromCart) action()   {}
func (ClearCart) action()        {}
func (Checkout) action()         {}
func (EnrollFreeCourse) action() {}
func (SignIn) action()           {}
func (SignUp) action()           {}
func (SignOut) action()          {}
func (AddCourse) action()        {}
func (UpdateCourse) action()     {}
func (DeleteCourse) action()     {}

// IsAdminAction reports whether a mutates the catalog.
func IsAdminAction(a Action) bool {
	switch a.(type) {
	case AddCourse, UpdateCourse, DeleteCourse:
		return true
	}
	return false
}
