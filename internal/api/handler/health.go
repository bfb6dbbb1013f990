package handler

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

// Pinger is implemented by every backing service the API depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health reports ok when every dependency answers a ping. Checks run concurrently.
func Health(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		results := make([]error, len(deps))
		names := make([]string, 0, len(deps))
		var g errgroup.Group
		for name, dep := range deps {
			i := len(names)
			names = append(names, name)
			g.Go(func() error {
				results[i] = dep.Ping(ctx)
				return nil
			})
		}
		_ = g.Wait()

		resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(deps))}
		status := http.StatusOK
		for i, name := range names {
			if results[i] != nil {
				resp.Checks[name] = results[i].Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		JSON(w, status, resp)
	}
}
