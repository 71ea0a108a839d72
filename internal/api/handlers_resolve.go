package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gbarros/docfields/internal/block"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resolveRequestSchema shapes the synchronous resolve payload: callers that
// already ran OCR submit blocks directly instead of a file.
var resolveRequestSchema = jsonschema.MustCompileString("resolve_request.json", `{
	"type": "object",
	"required": ["blocks"],
	"properties": {
		"blocks": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["text"],
				"properties": {
					"text": {"type": "string"},
					"page": {"type": "integer"}
				}
			}
		},
		"debug": {"type": "boolean"}
	}
}`)

type resolveRequest struct {
	Blocks []block.RawBlock `json:"blocks"`
	Debug  bool             `json:"debug"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := resolveRequestSchema.Validate(decoded); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var req resolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	result := s.orchestrator.Engine().Resolve(r.Context(), req.Blocks, req.Debug)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
