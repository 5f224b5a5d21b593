package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/config"
	"github.com/geocoding-gateway/internal/domain"
	"github.com/geocoding-gateway/internal/domain/repository"
)

// Client is the shared handle to the remote search backend. It is
// created once by Connect and safe for concurrent use, the request
// timeout is fixed at construction.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

var _ repository.GeocoderRepository = (*Client)(nil)

type searchResult struct {
	Hits struct {
		Hits []struct {
			Source      json.RawMessage `json:"_source"`
			Explanation json.RawMessage `json:"_explanation"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a ranked document query against the configured index.
func (c *Client) Search(
	ctx context.Context,
	q string,
	filters domain.Filters,
	settings config.QueryConfig,
) ([]domain.Document, error) {
	result, err := c.search(ctx, q, filters, settings, false)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		docs = append(docs, domain.Document(hit.Source))
	}

	c.logger.Debug("Elasticsearch search done",
		zap.String("q", q),
		zap.Int("docs", len(docs)),
	)
	return docs, nil
}

// Reverse finds the documents closest to coord, nearest first.
func (c *Client) Reverse(
	ctx context.Context,
	coord domain.Coord,
	settings config.QueryConfig,
) ([]domain.Document, error) {
	body, err := json.Marshal(buildReverseBody(coord, settings))
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	result, err := c.searchRaw(ctx, body, settings.Index)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		docs = append(docs, domain.Document(hit.Source))
	}

	c.logger.Debug("Elasticsearch reverse done",
		zap.Float64("lat", coord.Lat),
		zap.Float64("lon", coord.Lon),
		zap.Int("docs", len(docs)),
	)
	return docs, nil
}

// Explain reruns the query with scoring explanation enabled and returns
// the backend's explanation for the top hit, untouched.
func (c *Client) Explain(
	ctx context.Context,
	q string,
	filters domain.Filters,
	settings config.QueryConfig,
) (json.RawMessage, error) {
	settings.Limit = 1
	result, err := c.search(ctx, q, filters, settings, true)
	if err != nil {
		return nil, err
	}
	if len(result.Hits.Hits) == 0 {
		return json.RawMessage("null"), nil
	}
	return result.Hits.Hits[0].Explanation, nil
}

func (c *Client) search(
	ctx context.Context,
	q string,
	filters domain.Filters,
	settings config.QueryConfig,
	explain bool,
) (*searchResult, error) {
	body, err := json.Marshal(buildSearchBody(q, filters, settings, explain))
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return c.searchRaw(ctx, body, settings.Index)
}

func (c *Client) searchRaw(ctx context.Context, body []byte, index string) (*searchResult, error) {
	url := fmt.Sprintf("%s/%s/_search", c.baseURL, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Elasticsearch request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("Elasticsearch returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(raw)))
		return nil, fmt.Errorf("elasticsearch error: status %d, body: %s", resp.StatusCode, string(raw))
	}

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Status probes cluster health and the backend version.
func (c *Client) Status(ctx context.Context) (*domain.StorageStatus, error) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, err
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/_cluster/health", &health); err != nil {
		return nil, err
	}

	return &domain.StorageStatus{
		Health:  health.Status,
		Version: version,
	}, nil
}

// version fetches the backend's self-reported version from the root
// endpoint.
func (c *Client) version(ctx context.Context) (string, error) {
	var root struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/", &root); err != nil {
		return "", err
	}
	if root.Version.Number == "" {
		return "", fmt.Errorf("backend reported no version")
	}
	return root.Version.Number, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elasticsearch error: status %d, body: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
