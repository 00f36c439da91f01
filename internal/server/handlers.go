package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sozercan/cypherchat/apimodels"
	"github.com/sozercan/cypherchat/internal/qerr"
	"github.com/sozercan/cypherchat/internal/schema"
)

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Ask a question about the graph: POST {\"question\": \"...\"} to /api/v1/generate-cypher",
	})
}

func (s *Server) handleGenerateCypher(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAskRequest(w, r)
	if !ok {
		return
	}

	slog.Debug("Received question", "request", req)

	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAskRequest(w, r)
	if !ok {
		return
	}

	query, result, err := s.analyzer.Translate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := apimodels.TranslateResponse{Query: query.String()}
	if result != nil {
		resp.Model = result.Model
		resp.TokensUsed = result.Usage.TotalTokens
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if s.schema == nil {
		writeJSON(w, http.StatusNotFound, apimodels.ErrorResponse{Detail: "no schema configured"})
		return
	}

	triples := s.schema.Triples()
	patterns := make([]string, 0, len(triples))
	for _, t := range triples {
		patterns = append(patterns, t.Pattern())
	}

	examples := s.examples
	if examples == nil {
		examples = []schema.Example{}
	}

	writeJSON(w, http.StatusOK, apimodels.SchemaResponse{
		Triples:           triples,
		Patterns:          patterns,
		Labels:            s.schema.Labels(),
		RelationshipTypes: s.schema.RelationshipTypes(),
		Examples:          examples,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Verify(r.Context()); err != nil {
			slog.Warn("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"detail": err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeAskRequest(w http.ResponseWriter, r *http.Request) (apimodels.AskRequest, bool) {
	defer r.Body.Close()

	var req apimodels.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apimodels.ErrorResponse{Detail: fmt.Sprintf("Invalid request: %v", err)})
		return req, false
	}
	return req, true
}

// statusFor maps a classified pipeline error to an HTTP status.
func statusFor(err error) int {
	switch qerr.KindOf(err) {
	case qerr.KindInvalidInput, qerr.KindInvalidQuery:
		return http.StatusBadRequest
	case qerr.KindGenerationService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "error", err)
	} else {
		slog.Info("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, apimodels.ErrorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
