package middleware

import (
	"context"
	"net/http"
	"net/netip"
	"strings"

	"academy/internal/i18n"
)

type localeContextKey struct{}

// EdgeCountryHeader is the country code set by the CDN in front of the API.
const EdgeCountryHeader = "CF-IPCountry"

// CountryLookup resolves an ISO country code for a client address.
type CountryLookup func(ip string) (string, error)

// Locale pins the storefront locale in the request context. A language
// preference the catalog can serve (X-Locale, then Accept-Language) wins.
// Without one the caller's country decides, and defaultLocale applies when
// the country is unknown. The country is only looked up when needed.
func Locale(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback := i18n.Normalize(defaultLocale)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := i18n.Match(r.Header.Get("X-Locale"), r.Header.Get("Accept-Language"))
			if locale == "" {
				if country := requestCountry(r, lookup); country != "" {
					locale = i18n.ForCountry(country)
				} else {
					locale = fallback
				}
			}
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeContextKey{}, locale)))
		})
	}
}

// LocaleFromContext returns the locale chosen by Locale, or the catalog
// default outside a request.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return i18n.Normalize("")
}

func requestCountry(r *http.Request, lookup CountryLookup) string {
	if c := strings.TrimSpace(r.Header.Get(EdgeCountryHeader)); c != "" && c != "XX" {
		return strings.ToUpper(c)
	}
	if lookup == nil {
		return ""
	}
	country, err := lookup(clientIP(r))
	if err != nil {
		return ""
	}
	return strings.ToUpper(country)
}

// clientIP returns the first parseable address in X-Forwarded-For, else the
// host part of RemoteAddr.
func clientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if addr, err := netip.ParseAddr(strings.TrimSpace(part)); err == nil {
			return addr.String()
		}
	}
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().String()
	}
	return r.RemoteAddr
}
