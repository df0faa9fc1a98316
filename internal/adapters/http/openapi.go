package httpadapter

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openapiSpecYAML []byte

func (rt *Router) openapiSpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiSpecYAML)
}
