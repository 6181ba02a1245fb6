package httpx

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler answers {"status":"ok"} when every check passes and 503 otherwise.
// HEAD requests get the status without a body.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		failed := map[string]string{}
		for _, c := range checks {
			if c.Check == nil {
				continue
			}
			if err := c.Check(ctx); err != nil {
				failed[c.Name] = err.Error()
			}
		}

		code := http.StatusOK
		body := map[string]any{"status": "ok"}
		if len(failed) > 0 {
			code = http.StatusServiceUnavailable
			body = map[string]any{"status": "unavailable", "checks": failed}
		}

		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			return
		}
		WriteJSON(w, code, body)
	}
}
