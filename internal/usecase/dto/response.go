package dto

import (
	"encoding/json"

	"github.com/geocoding-gateway/internal/domain"
)

// SearchResponseBody is the list envelope for geocode results.
// DocsCount is always derived from Docs, never supplied by callers.
type SearchResponseBody struct {
	Docs      []domain.Document `json:"docs"`
	DocsCount int               `json:"docsCount"`
}

func NewSearchResponseBody(docs []domain.Document) SearchResponseBody {
	if docs == nil {
		docs = []domain.Document{}
	}
	return SearchResponseBody{
		Docs:      docs,
		DocsCount: len(docs),
	}
}

// ExplainResponseBody wraps a backend scoring explanation unchanged.
type ExplainResponseBody struct {
	Explanation json.RawMessage `json:"explanation"`
}

func NewExplainResponseBody(explanation json.RawMessage) ExplainResponseBody {
	return ExplainResponseBody{Explanation: explanation}
}

// StatusResponseBody reports backend health, backend version and the
// gateway's own version. The field names are fixed for compatibility
// with existing bragi clients.
type StatusResponseBody struct {
	Status               string `json:"status"`
	ElasticsearchVersion string `json:"elasticsearchVersion"`
	BragiVersion         string `json:"bragiVersion"`
}

func NewStatusResponseBody(status *domain.StorageStatus, bragiVersion string) StatusResponseBody {
	if bragiVersion == "" {
		bragiVersion = "dev"
	}
	body := StatusResponseBody{
		Status:       "unavailable",
		BragiVersion: bragiVersion,
	}
	if status != nil {
		body.Status = status.Health
		body.ElasticsearchVersion = status.Version
	}
	return body
}
