package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/observability"
	apperrors "github.com/spec-kit/console-client/pkg/util"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
	requestIDHeader = "X-Request-ID"
)

// Reactor receives every classified failure before it is returned to the caller.
type Reactor interface {
	React(ctx context.Context, failure *apperrors.APIError)
}

// Options configure a Gateway.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	AdminNamespace string
	// Transport overrides the network transport; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Gateway is the single egress point for backend calls.
type Gateway struct {
	baseURL        string
	adminNamespace string
	client         *http.Client
	metrics        *observability.Metrics
	logger         *zap.Logger

	mu          sync.RWMutex
	credentials CredentialSource
	reactor     Reactor
}

// New builds a gateway. Credentials and reactor are attached by the composition root.
func New(opts Options, metrics *observability.Metrics, logger *zap.Logger) *Gateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	adminNS := opts.AdminNamespace
	if adminNS == "" {
		adminNS = DefaultAdminNamespace
	}

	g := &Gateway{
		baseURL:        opts.BaseURL,
		adminNamespace: adminNS,
		metrics:        metrics,
		logger:         observability.OrNop(logger).Named("gateway"),
	}
	g.client = &http.Client{
		Timeout:   timeout,
		Transport: &bearerTransport{base: base, source: g.credentialSource},
	}
	return g
}

// UseCredentials sets where outbound requests take their bearer credential from.
func (g *Gateway) UseCredentials(src CredentialSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.credentials = src
}

// UseReactor sets the reaction policy invoked on failures.
func (g *Gateway) UseReactor(r Reactor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reactor = r
}

func (g *Gateway) credentialSource() CredentialSource {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.credentials
}

func (g *Gateway) currentReactor() Reactor {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reactor
}

// URL resolves a backend path against the configured base URL.
func (g *Gateway) URL(path string) string {
	return g.baseURL + path
}

// Get issues a GET and decodes the JSON response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the JSON response into out.
func (g *Gateway) Post(ctx context.Context, path string, in, out any) error {
	return g.Do(ctx, http.MethodPost, path, in, out)
}

// Do performs one backend call. Failures come back as *apperrors.APIError after
// the reactor has seen them.
func (g *Gateway) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.URL(path), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	status, respBody, transportErr := g.send(req)
	elapsed := time.Since(start)
	g.metrics.RecordRequest(path, method, status, elapsed)

	if failure := Classify(method, path, status, respBody, transportErr, g.adminNamespace); failure != nil {
		g.metrics.RecordFailure(path, method, string(failure.Kind))
		g.logger.Info("backend call failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("kind", string(failure.Kind)),
			zap.Duration("elapsed", elapsed),
			zap.Error(transportErr),
		)
		if r := g.currentReactor(); r != nil {
			r.React(ctx, failure)
		}
		return failure
	}

	g.logger.Debug("backend call",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (g *Gateway) send(req *http.Request) (int, []byte, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
