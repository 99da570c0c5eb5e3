package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// SessionCookie is the name of the cookie carrying the client session.
const SessionCookie = "academy_session"

const sessionIDValue = "sid"

type sessionIDContextKey struct{}

// NewSessionStore builds the signed cookie store for client sessions.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 8,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session makes sure every request carries a client session id, issuing a
// new cookie when the request has none or an unreadable one.
func Session(store sessions.Store, l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, SessionCookie)
			if err != nil {
				l.Debug().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("session cookie rejected")
				sess, err = store.New(r, SessionCookie)
				if sess == nil {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}

			sid, _ := sess.Values[sessionIDValue].(string)
			if _, perr := uuid.Parse(sid); perr != nil {
				sid = uuid.NewString()
				sess.Values[sessionIDValue] = sid
				if err := sess.Save(r, w); err != nil {
					l.Error().Err(err).Msg("save session cookie")
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}

			ctx := context.WithValue(r.Context(), sessionIDContextKey{}, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the client session id set by Session.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDContextKey{}).(string); ok {
		return v
	}
	return ""
}

// WithSessionID returns ctx carrying sid, for handlers mounted without the
// Session middleware.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey{}, sid)
}
