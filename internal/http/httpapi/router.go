package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"academy/internal/http/handlers"
	"academy/internal/middleware"
)

// Options holds the cross-cutting middleware settings.
type Options struct {
	Logger          zerolog.Logger
	SessionStore    sessions.Store
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	TutorRatePerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(opts.SessionStore, opts.Logger))

		r.Route("/v1/courses", func(r chi.Router) {
			r.Get("/", app.ListCourses)
			r.Get("/{id}", app.GetCourse)
			r.Post("/", app.CreateCourse)
			r.Put("/{id}", app.UpdateCourse)
			r.Delete("/{id}", app.DeleteCourse)
		})

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", app.GetCart)
			r.Post("/", app.AddToCart)
			r.Delete("/", app.ClearCart)
			r.Delete("/{id}", app.RemoveFromCart)
		})
		r.Post("/v1/checkout", app.Checkout)
		r.Post("/v1/enrollments", app.Enroll)

		r.Route("/v1/me", func(r chi.Router) {
			r.Get("/", app.Me)
			r.Get("/courses", app.MyCourses)
		})

		r.Route("/v1/auth", func(r chi.Router) {
			r.Post("/signin", app.SignIn)
			r.Post("/signup", app.SignUp)
			r.Post("/signout", app.SignOut)
		})

		r.With(middleware.RateLimitBy(opts.TutorRatePerMin, time.Minute, middleware.BySession)).
			Post("/v1/tutor/{courseID}/messages", app.TutorMessage)
	})

	return r
}
