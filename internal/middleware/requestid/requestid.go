// Package requestid tags every inbound request with a generated request id
// and attaches it to the logging context, so all log lines produced while
// serving a request can be correlated.
package requestid

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	slogctx "github.com/veqryn/slog-context"
)

const Header = "X-Request-Id"

// Middleware prefers an inbound X-Request-Id (set by a fronting proxy) and
// generates one otherwise. The id is echoed back on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := slogctx.With(r.Context(), commoncfg.AttrRequestID, id)
		w.Header().Set(Header, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
