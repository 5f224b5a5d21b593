package http_test

import (
	"context"
	"encoding/json"
	"io"
	netHTTP "net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/config"
	httpDelivery "github.com/geocoding-gateway/internal/delivery/http"
	"github.com/geocoding-gateway/internal/delivery/http/handler"
	"github.com/geocoding-gateway/internal/infrastructure/elasticsearch"
	"github.com/geocoding-gateway/internal/usecase"
)

// fakeES answers the handshake, health and search endpoints with a
// fixed set of hits.
func fakeES(t *testing.T, hits []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(netHTTP.HandlerFunc(func(w netHTTP.ResponseWriter, r *netHTTP.Request) {
		switch r.URL.Path {
		case "/":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"version": map[string]string{"number": "7.13.0"},
			})
		case "/_cluster/health":
			json.NewEncoder(w).Encode(map[string]string{"status": "green"})
		case "/munin/_search":
			wrapped := make([]map[string]interface{}, 0, len(hits))
			for _, h := range hits {
				wrapped = append(wrapped, map[string]interface{}{"_source": json.RawMessage(h)})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"hits": map[string]interface{}{"hits": wrapped},
			})
		default:
			netHTTP.NotFound(w, r)
		}
	}))
}

func newTestServer(t *testing.T, backendURL string) *httpDelivery.Server {
	t.Helper()
	logger := zap.NewNop()

	u, err := url.Parse(backendURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Elasticsearch: config.ElasticsearchConfig{
			Host:       u.Hostname(),
			Port:       port,
			Timeout:    5 * time.Second,
			VersionReq: ">= 7.0.0",
		},
		Query: config.QueryConfig{Index: "munin", Limit: 10, Timeout: 2 * time.Second},
	}

	client, err := elasticsearch.Connect(context.Background(), &cfg.Elasticsearch, logger)
	require.NoError(t, err)

	geocodeUC := usecase.NewGeocodeUseCase(client, nil, cfg.Query, logger, time.Minute)
	statusUC := usecase.NewStatusUseCase(client, "1.4.0", logger)

	return httpDelivery.NewServer(
		cfg,
		logger,
		nil,
		handler.NewGeocodeHandler(geocodeUC, logger),
		handler.NewStatusHandler(statusUC, logger),
	)
}

func doRequest(t *testing.T, s *httpDelivery.Server, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(netHTTP.MethodGet, path, nil)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestServer_ForwardGeocode(t *testing.T) {
	backend := fakeES(t, []string{`{"id":"addr:1"}`, `{"id":"addr:2"}`})
	defer backend.Close()
	server := newTestServer(t, backend.URL)

	t.Run("docsCount follows the backend hit count", func(t *testing.T) {
		status, body := doRequest(t, server, "/api/v1/autocomplete?q=bakery&datasets=oa")

		assert.Equal(t, netHTTP.StatusOK, status)
		assert.EqualValues(t, 2, body["docsCount"])
		assert.Len(t, body["docs"], 2)
	})

	t.Run("missing q is rejected with a structured 400", func(t *testing.T) {
		status, body := doRequest(t, server, "/api/v1/autocomplete")

		assert.Equal(t, netHTTP.StatusBadRequest, status)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "MISSING_QUERY", errBody["code"])
	})

	t.Run("partial coordinate pair is accepted, not rejected", func(t *testing.T) {
		status, _ := doRequest(t, server, "/api/v1/autocomplete?q=bakery&lat=48.85")

		assert.Equal(t, netHTTP.StatusOK, status)
	})

	t.Run("unparsable latitude is a 400", func(t *testing.T) {
		status, body := doRequest(t, server, "/api/v1/autocomplete?q=bakery&lat=abc")

		assert.Equal(t, netHTTP.StatusBadRequest, status)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_COORDINATES", errBody["code"])
	})
}

func TestServer_ReverseGeocode(t *testing.T) {
	backend := fakeES(t, []string{`{"id":"addr:42"}`})
	defer backend.Close()
	server := newTestServer(t, backend.URL)

	t.Run("success", func(t *testing.T) {
		status, body := doRequest(t, server, "/api/v1/reverse?lat=48.85&lon=2.35")

		assert.Equal(t, netHTTP.StatusOK, status)
		assert.EqualValues(t, 1, body["docsCount"])
	})

	t.Run("missing lon is a 400", func(t *testing.T) {
		status, body := doRequest(t, server, "/api/v1/reverse?lat=48.85")

		assert.Equal(t, netHTTP.StatusBadRequest, status)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_COORDINATES", errBody["code"])
	})
}

func TestServer_Status(t *testing.T) {
	backend := fakeES(t, nil)
	defer backend.Close()
	server := newTestServer(t, backend.URL)

	status, body := doRequest(t, server, "/api/v1/status")

	assert.Equal(t, netHTTP.StatusOK, status)
	assert.Equal(t, "green", body["status"])
	assert.Equal(t, "7.13.0", body["elasticsearchVersion"])
	assert.Equal(t, "1.4.0", body["bragiVersion"])
}

func TestServer_UnknownRoute(t *testing.T) {
	backend := fakeES(t, nil)
	defer backend.Close()
	server := newTestServer(t, backend.URL)

	status, body := doRequest(t, server, "/api/v1/nonexistent")

	assert.Equal(t, netHTTP.StatusNotFound, status)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "ROUTE_NOT_FOUND", errBody["code"])
}
