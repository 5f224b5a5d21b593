package elasticsearch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/config"
)

// Startup failure taxonomy. Each step of Connect fails with exactly one
// of these, callers match with errors.Is.
var (
	// ErrAddressResolution: the configured host/port does not resolve
	// to any usable address. Raised before any call to the backend.
	ErrAddressResolution = errors.New("elasticsearch address resolution failed")

	// ErrPoolCreation: transport-level setup against the resolved URL
	// failed.
	ErrPoolCreation = errors.New("elasticsearch connection pool creation failed")

	// ErrConnection: the backend is reachable but the version probe
	// failed or the reported version does not satisfy the requirement.
	ErrConnection = errors.New("elasticsearch connection failed")
)

// Connect resolves the configured backend address, builds a pooled HTTP
// client against it and validates the backend's reported version before
// handing the client out. It is called exactly once at startup and
// blocks until it either succeeds or fails, there is no retry. The
// returned Client is shared read-only by all request handlers and the
// version is never re-checked afterwards.
func Connect(ctx context.Context, cfg *config.ElasticsearchConfig, logger *zap.Logger) (*Client, error) {
	// Step 1: resolve host:port to a concrete socket address.
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrAddressResolution)
	}
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: host %q port %d: %v", ErrAddressResolution, cfg.Host, cfg.Port, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: host %q resolved to no addresses", ErrAddressResolution, cfg.Host)
	}
	addr := net.JoinHostPort(ips[0].IP.String(), strconv.Itoa(cfg.Port))

	// Step 2: base URL from the resolved address.
	baseURL := "http://" + addr
	logger.Info("Connecting to Elasticsearch", zap.String("url", baseURL))

	// Step 3: connection pool against that URL.
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolCreation, err)
	}
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected default transport", ErrPoolCreation)
	}
	transport = transport.Clone()
	transport.MaxIdleConnsPerHost = 10
	client := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}

	// Step 4: query the backend's version and hold it against the
	// configured requirement. A handle is never exposed without this.
	constraint, err := semver.NewConstraint(cfg.VersionReq)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid version requirement %q: %v", ErrConnection, cfg.VersionReq, err)
	}
	reported, err := client.version(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: version probe: %v", ErrConnection, err)
	}
	version, err := semver.NewVersion(reported)
	if err != nil {
		return nil, fmt.Errorf("%w: backend reported unparsable version %q: %v", ErrConnection, reported, err)
	}
	if !constraint.Check(version) {
		return nil, fmt.Errorf("%w: backend version %s does not satisfy %q", ErrConnection, reported, cfg.VersionReq)
	}

	logger.Info("Elasticsearch connected",
		zap.String("url", baseURL),
		zap.String("version", reported),
	)
	return client, nil
}
