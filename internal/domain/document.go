package domain

import "encoding/json"

// Document is a single ranked result as returned by the backend. The
// gateway forwards it verbatim, it never inspects the payload.
type Document = json.RawMessage
