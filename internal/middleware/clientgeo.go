package middleware

import (
	"context"
	"net/http"
	"strings"
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

type countryContextKey struct{}

// ClientGeo resolves the requesting client's country and stores it in the
// request context so audit events can carry it. Lookup failures are ignored;
// the country is an enrichment, never a gate.
func ClientGeo(lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lookup != nil {
				if country, err := lookup(clientIPForRateLimit(r)); err == nil && country != "" {
					ctx := context.WithValue(r.Context(), countryContextKey{}, strings.ToUpper(country))
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CountryFromContext returns the country recorded by ClientGeo, or "".
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryContextKey{}).(string); ok {
		return v
	}
	return ""
}
