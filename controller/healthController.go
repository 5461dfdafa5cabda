package controller

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"school-backend/util"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type HealthController struct {
	env    string
	checks map[string]Check
}

func NewHealthController(env string, checks map[string]Check) *HealthController {
	return &HealthController{env: env, checks: checks}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// HandleHealth answers 200 when every check passes and 503 otherwise.
func (hc *HealthController) HandleHealth(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str("operation", "health_check").Logger()

	resp := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: hc.env,
		Checks:      make(map[string]checkResult, len(hc.checks)),
	}

	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		start := time.Now()
		err := hc.checks[name](ctx)
		cancel()

		result := checkResult{Status: "healthy", ResponseTime: time.Since(start).String()}
		if err != nil {
			result.Status = "unhealthy"
			result.Error = err.Error()
			resp.Status = "unhealthy"
			logger.Error().Err(err).Str("check", name).Msg("health check failed")
		}
		resp.Checks[name] = result
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	util.WriteSuccessResponse(w, r, status, resp)
}
