package clients

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultProbeTimeout = 2 * time.Second

// HealthProbe checks one backend dependency through its client, so the probe
// shares the client's circuit breaker.
type HealthProbe struct {
	Name    string
	Client  *Client
	Path    string
	Timeout time.Duration
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	Breaker    string `json:"breaker,omitempty"`
	LatencyMS  int64  `json:"latencyMs"`
	Error      string `json:"error,omitempty"`
}

// BreakerState reports the circuit breaker state, or "" without a breaker.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return ""
	}
	return c.breaker.State().String()
}

// CheckHealth calls the probe path and expects a 2xx response whose envelope,
// if any, is not success=false. An open breaker fails the probe without a call.
func CheckHealth(ctx context.Context, probe HealthProbe) HealthResult {
	res := HealthResult{Name: probe.Name, Breaker: probe.Client.BreakerState()}
	if res.Breaker == gobreaker.StateOpen.String() {
		res.Error = gobreaker.ErrOpenState.Error()
		return res
	}

	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := probe.Client.DoJSON(ctx, http.MethodGet, probe.Path, nil, nil, nil)
	res.LatencyMS = time.Since(start).Milliseconds()
	res.Breaker = probe.Client.BreakerState()
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			res.StatusCode = ue.Status
		}
		res.Error = err.Error()
		return res
	}

	res.OK = true
	return res
}
