package httpapi

import (
	"net/http"
	"os"

	"bazibench/internal/auth"
)

// RequireAPIToken guards the mutating routes with the API_TOKEN bearer
// credential. Tokens compare by digest so length never leaks.
func RequireAPIToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := os.Getenv("API_TOKEN")
		got := r.Header.Get("Authorization")
		if want == "" || len(got) < 8 || got[:7] != "Bearer " || !auth.TokenEqual(got[7:], want) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
