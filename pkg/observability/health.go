package observability

import (
	"context"
	"encoding/json"
	"net/http"
)

// Probe paths served next to the metrics endpoint.
const (
	HealthPath = "/healthz"
	ReadyPath  = "/readyz"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// ReadyCheck reports nil when a subsystem is ready.
type ReadyCheck func(ctx context.Context) error

type probeBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthHandler answers liveness probes with 200 {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeProbe(rw, http.StatusOK, probeBody{Status: statusOK})
	})
}

// ReadyHandler runs checks in order and answers 503 with the first failure,
// or 200 when all pass.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		for _, check := range checks {
			err := check(req.Context())
			if err != nil {
				writeProbe(rw, http.StatusServiceUnavailable, probeBody{Status: statusUnavailable, Error: err.Error()})

				return
			}
		}

		writeProbe(rw, http.StatusOK, probeBody{Status: statusOK})
	})
}

func writeProbe(rw http.ResponseWriter, code int, body probeBody) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	_ = json.NewEncoder(rw).Encode(body)
}
