package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/domain"
)

type fixedRand struct {
	ints   []int
	floats []float64
	calls  int
}

func (f *fixedRand) IntN(n int) int {
	if len(f.ints) == 0 {
		return 0
	}
	v := f.ints[f.calls%len(f.ints)] % n
	f.calls++
	return v
}

func (f *fixedRand) Float64() float64 {
	if len(f.floats) == 0 {
		return 0
	}
	return f.floats[0]
}

func testCatalog() []domain.Course {
	return []domain.Course{
		{ID: 1, Title: "PLC Programming Mastery", Category: domain.CategoryIndustrialAutomation, Level: domain.LevelIntermediate, Type: domain.CourseTypePro, Price: 199.99, Rating: 4.8,
			Modules: []domain.Module{{ID: "m1", Title: "Intro", Lessons: []domain.Lesson{{ID: "l1.1", Title: "What is a PLC?"}}}}},
		{ID: 3, Title: "Power Electronics Fundamentals", Category: domain.CategoryElectricalEngineering, Level: domain.LevelBeginner, Type: domain.CourseTypePro, Price: 179.99, Rating: 4.7},
		{ID: 7, Title: "SCADA & HMI Design", Category: domain.CategoryIndustrialAutomation, Level: domain.LevelBeginner, Type: domain.CourseTypeFree, Price: 0, Rating: 4.6},
	}
}

func signedIn(t *testing.T, r *Reducer, s State) State {
	t.Helper()
	next, err := r.Reduce(s, SignIn{User: domain.User{Name: "Demo User", Email: "demo@example.com"}})
	require.NoError(t, err)
	return next
}

func TestAddToCartIsIdempotent(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	course := s.Courses[0]

	s, err := r.Reduce(s, AddToCart{Course: course})
	require.NoError(t, err)
	s, err = r.Reduce(s, AddToCart{Course: course})
	require.NoError(t, err)

	require.Len(t, s.Cart, 1)
	assert.Equal(t, course.ID, s.Cart[0].Course.ID)
	assert.Equal(t, 1, s.Cart[0].Quantity)
}

func TestRemoveFromCartAbsentIsNoop(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})

	next, err := r.Reduce(s, RemoveFromCart{CourseID: 999})
	require.NoError(t, err)
	assert.Equal(t, s.Cart, next.Cart)

	next, err = r.Reduce(next, RemoveFromCart{CourseID: 1})
	require.NoError(t, err)
	assert.Empty(t, next.Cart)
}

func TestClearCart(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[1]})

	s, err := r.Reduce(s, ClearCart{})
	require.NoError(t, err)
	assert.Empty(t, s.Cart)
}

func TestCheckoutUnauthenticatedLeavesStateUnchanged(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})

	next, err := r.Reduce(s, Checkout{})
	require.ErrorIs(t, err, domain.ErrSignInRequired)

	var notice *domain.Notice
	require.ErrorAs(t, err, &notice)
	assert.Equal(t, NoticeCheckoutSignIn, notice.Key)
	assert.Equal(t, s, next)
	assert.Len(t, next.Cart, 1)
	assert.Empty(t, next.MyCourses)
}

func TestCheckoutMovesNewCoursesWithBoundedProgress(t *testing.T) {
	r := &Reducer{Rand: &fixedRand{ints: []int{25, 3, 40}}}
	s := signedIn(t, r, Initial(testCatalog()))

	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})
	s, _ = r.Reduce(s, Checkout{})
	require.Len(t, s.MyCourses, 1)

	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[1]})
	s, err := r.Reduce(s, Checkout{})
	require.NoError(t, err)

	assert.Empty(t, s.Cart)
	require.Len(t, s.MyCourses, 2)
	assert.Equal(t, int64(1), s.MyCourses[0].ID)
	assert.Equal(t, int64(3), s.MyCourses[1].ID)
	for _, c := range s.MyCourses {
		require.NotNil(t, c.Progress)
		assert.GreaterOrEqual(t, *c.Progress, 0)
		assert.LessOrEqual(t, *c.Progress, 25)
	}
	assert.Nil(t, s.Courses[0].Progress, "catalog entry must not be stamped")
}

func TestEnrollFreeCourseScenario(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	course7, ok := s.Course(7)
	require.True(t, ok)

	next, err := r.Reduce(s, EnrollFreeCourse{Course: course7})
	require.ErrorIs(t, err, domain.ErrSignInRequired)
	assert.Equal(t, s, next)
	assert.Empty(t, next.MyCourses)

	s = signedIn(t, r, s)
	s, err = r.Reduce(s, EnrollFreeCourse{Course: course7})
	require.NoError(t, err)
	require.Len(t, s.MyCourses, 1)
	require.NotNil(t, s.MyCourses[0].Progress)
	assert.Equal(t, 0, *s.MyCourses[0].Progress)

	again, err := r.Reduce(s, EnrollFreeCourse{Course: course7})
	require.NoError(t, err)
	assert.Equal(t, s.MyCourses, again.MyCourses)
}

func TestSignInDerivesAdminFromAllowlist(t *testing.T) {
	r := &Reducer{Admins: domain.NewAdminAllowlist("admin@automation.academy")}

	s, err := r.Reduce(Initial(nil), SignIn{User: domain.User{Email: "admin@automation.academy"}})
	require.NoError(t, err)
	require.NotNil(t, s.User)
	assert.True(t, s.User.IsAdmin)
	assert.True(t, s.IsAuthenticated)

	s, err = r.Reduce(Initial(nil), SignIn{User: domain.User{Email: "someone@example.com", IsAdmin: true}})
	require.NoError(t, err)
	assert.False(t, s.User.IsAdmin)
}

func TestSignUpNeverGrantsAdmin(t *testing.T) {
	r := &Reducer{Admins: domain.NewAdminAllowlist("admin@automation.academy")}

	s, err := r.Reduce(Initial(nil), SignUp{User: domain.User{Name: "Ada", Email: "admin@automation.academy", IsAdmin: true}})
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "Ada", s.User.Name)
	assert.False(t, s.User.IsAdmin)
}

func TestSignInKeepsCartAndOwnership(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[1]})

	s = signedIn(t, r, s)
	assert.Len(t, s.Cart, 1)
}

func TestSignOutResetsSessionButKeepsCatalog(t *testing.T) {
	r := &Reducer{}
	s := signedIn(t, r, Initial(testCatalog()))
	s, _ = r.Reduce(s, AddCourse{Draft: domain.CourseDraft{Title: "New", Category: domain.CategoryIT, Level: domain.LevelBeginner, Type: domain.CourseTypeFree}})
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})
	s, _ = r.Reduce(s, EnrollFreeCourse{Course: s.Courses[2]})
	before := len(s.Courses)

	s, err := r.Reduce(s, SignOut{})
	require.NoError(t, err)
	assert.Len(t, s.Courses, before)
	assert.Empty(t, s.Cart)
	assert.Empty(t, s.MyCourses)
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
}

func TestAddThenUpdateCourse(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &Reducer{Rand: &fixedRand{floats: []float64{0.5}}, Now: func() time.Time { return now }}
	s := Initial(testCatalog())

	s, err := r.Reduce(s, AddCourse{Draft: domain.CourseDraft{
		Title: "Industrial Networks", Category: domain.CategoryIndustrialAutomation,
		Level: domain.LevelAdvanced, Type: domain.CourseTypePro, Price: 99.99,
	}})
	require.NoError(t, err)
	require.Len(t, s.Courses, 4)
	added := s.Courses[3]
	assert.Equal(t, now.UnixMilli(), added.ID)
	assert.Equal(t, 4.6, added.Rating)
	afterAdd := len(s.Courses)

	updated := added
	updated.Title = "Industrial Networks II"
	s, err = r.Reduce(s, UpdateCourse{Course: updated})
	require.NoError(t, err)
	assert.Len(t, s.Courses, afterAdd)

	var matches []domain.Course
	for _, c := range s.Courses {
		if c.ID == added.ID {
			matches = append(matches, c)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, "Industrial Networks II", matches[0].Title)
}

func TestAddCourseIDsStayUniqueWithinOneMillisecond(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	r := &Reducer{Now: func() time.Time { return now }}
	draft := domain.CourseDraft{Title: "A", Category: domain.CategoryIT, Level: domain.LevelBeginner, Type: domain.CourseTypePro, Price: 10}

	s := Initial(nil)
	s, _ = r.Reduce(s, AddCourse{Draft: draft})
	s, _ = r.Reduce(s, AddCourse{Draft: draft})
	require.Len(t, s.Courses, 2)
	assert.Less(t, s.Courses[0].ID, s.Courses[1].ID)
}

func TestAddCourseRatingRange(t *testing.T) {
	for _, f := range []float64{0, 0.25, 0.9999} {
		r := &Reducer{Rand: &fixedRand{floats: []float64{f}}}
		s, _ := r.Reduce(Initial(nil), AddCourse{Draft: domain.CourseDraft{Title: "x", Category: domain.CategoryIT, Level: domain.LevelBeginner, Type: domain.CourseTypePro}})
		rating := s.Courses[0].Rating
		assert.GreaterOrEqual(t, rating, 4.2)
		assert.LessOrEqual(t, rating, 5.0)
	}
}

func TestAddFreeCourseForcesZeroPrice(t *testing.T) {
	r := &Reducer{}
	s, _ := r.Reduce(Initial(nil), AddCourse{Draft: domain.CourseDraft{Title: "Free", Category: domain.CategoryIT, Level: domain.LevelBeginner, Type: domain.CourseTypeFree, Price: 49}})
	assert.Zero(t, s.Courses[0].Price)
}

func TestUpdateUnknownCourseIsNoop(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	next, err := r.Reduce(s, UpdateCourse{Course: domain.Course{ID: 42, Title: "ghost"}})
	require.NoError(t, err)
	assert.Equal(t, s.Courses, next.Courses)
}

func TestDeleteCourse(t *testing.T) {
	r := &Reducer{}
	s := signedIn(t, r, Initial(testCatalog()))
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})

	s, err := r.Reduce(s, DeleteCourse{CourseID: 1})
	require.NoError(t, err)
	assert.Len(t, s.Courses, 2)
	_, found := s.Course(1)
	assert.False(t, found)
	assert.Len(t, s.Cart, 1, "cart snapshots are not cascaded")

	next, err := r.Reduce(s, DeleteCourse{CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, s.Courses, next.Courses)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	r := &Reducer{}
	s := Initial(testCatalog())
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[0]})
	s, _ = r.Reduce(s, AddToCart{Course: s.Courses[1]})
	cartBefore := append([]domain.CartItem(nil), s.Cart...)
	coursesBefore := append([]domain.Course(nil), s.Courses...)

	_, _ = r.Reduce(s, RemoveFromCart{CourseID: 1})
	_, _ = r.Reduce(s, DeleteCourse{CourseID: 3})
	updated := s.Courses[0]
	updated.Title = "changed"
	_, _ = r.Reduce(s, UpdateCourse{Course: updated})

	assert.Equal(t, cartBefore, s.Cart)
	assert.Equal(t, coursesBefore, s.Courses)
}

func TestGuardAdminActions(t *testing.T) {
	r := &Reducer{GuardAdminActions: true, Admins: domain.NewAdminAllowlist("admin@automation.academy")}
	s := Initial(testCatalog())

	next, err := r.Reduce(s, DeleteCourse{CourseID: 1})
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, s, next)

	s = signedIn(t, r, s)
	_, err = r.Reduce(s, DeleteCourse{CourseID: 1})
	require.ErrorIs(t, err, domain.ErrForbidden)

	s, err = r.Reduce(s, SignIn{User: domain.User{Email: "admin@automation.academy"}})
	require.NoError(t, err)
	s, err = r.Reduce(s, DeleteCourse{CourseID: 1})
	require.NoError(t, err)
	assert.Len(t, s.Courses, 2)
}
