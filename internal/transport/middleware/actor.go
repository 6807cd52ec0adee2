package middleware

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
)

// ActorContext resolves the acting user from the X-User-ID header and
// places it on the request context. There is no authentication layer;
// the caller is trusted to identify itself.
func ActorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-User-ID")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			http.Error(w, `{"code":400,"message":"invalid X-User-ID header"}`, http.StatusBadRequest)
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), userID)
		ctx = logger.With(ctx, "userID", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
