package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/capshop-backend/internal/session"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
)

// SessionHeader carries the cart session id for clients that cannot hold cookies.
const SessionHeader = "X-Cart-Session"

const defaultSessionCookie = "capshop_session"

type sessionResolver interface {
	Resolve(id string) (*session.Session, bool)
}

// SessionOptions control the cart session cookie.
type SessionOptions struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

func (o SessionOptions) cookieName() string {
	if name := strings.TrimSpace(o.CookieName); name != "" {
		return name
	}
	return defaultSessionCookie
}

// Session resolves the shopper session from the X-Cart-Session header or the
// session cookie, creating one when neither names a live session. The id is
// echoed back on every response.
func Session(resolver sessionResolver, opts SessionOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := strings.TrimSpace(r.Header.Get(SessionHeader))
			if requested == "" {
				if cookie, err := r.Cookie(opts.cookieName()); err == nil {
					requested = strings.TrimSpace(cookie.Value)
				}
			}

			sess, created := resolver.Resolve(requested)
			if created || sess.ID != requested {
				http.SetCookie(w, &http.Cookie{
					Name:     opts.cookieName(),
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(opts.MaxAge.Seconds()),
				})
			}
			w.Header().Set(SessionHeader, sess.ID)

			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sess.ID)
				if created {
					logg.Debug(ctx, "cart session created")
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
