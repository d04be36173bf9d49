package idempotency

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// HeaderKey is the request header carrying the client's idempotency key.
const HeaderKey = "Idempotency-Key"

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware replays the stored response for POST requests whose
// Idempotency-Key was already served. Server errors are not stored so the
// client may retry them.
func Middleware(store Store, logger *zerolog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if store == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			scoped := r.Method + " " + r.URL.Path + " " + key

			rec, err := store.Begin(r.Context(), scoped)
			switch {
			case errors.Is(err, ErrInFlight):
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"` + ErrInFlight.Error() + `"}`))
				return
			case err != nil:
				logger.Warn().Err(err).Str("key", key).Msg("idempotency store unavailable, serving without replay")
				next.ServeHTTP(w, r)
				return
			case rec != nil:
				if rec.ContentType != "" {
					w.Header().Set("Content-Type", rec.ContentType)
				}
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(rec.Status)
				_, _ = w.Write(rec.Body)
				return
			}

			rw := &recorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			if rw.status == 0 || rw.status >= http.StatusInternalServerError {
				if err := store.Abort(r.Context(), scoped); err != nil {
					logger.Warn().Err(err).Str("key", key).Msg("release idempotency key")
				}
				return
			}
			stored := Record{
				Status:      rw.status,
				ContentType: rw.Header().Get("Content-Type"),
				Body:        rw.body.Bytes(),
			}
			if err := store.Complete(r.Context(), scoped, stored); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("store idempotent response")
			}
		})
	}
}
