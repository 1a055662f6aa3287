package shared

import (
	"encoding/json"
	"net/http"
)

// maxRequestBody caps request bodies well above any legitimate payload in
// this API; card and user requests are a few hundred bytes.
const maxRequestBody = 1 << 20

// DecodeJSON decodes the request body into the given struct. Unknown
// fields are tolerated; oversized bodies are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	return json.NewDecoder(body).Decode(v)
}
