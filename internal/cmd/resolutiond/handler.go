package resolutiond

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	apperrors "github.com/pipe-works/pipeworks-mud-server-sub000/internal/errors"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/resolution"
)

// resolver is the engine surface the HTTP API depends on.
type resolver interface {
	Resolve(ctx context.Context, worldID, speakerName, listenerName, channel string) (resolution.Result, error)
}

type resolveRequest struct {
	WorldID  string `json:"world_id"`
	Speaker  string `json:"speaker"`
	Listener string `json:"listener"`
	Channel  string `json:"channel"`
}

type axisDeltaResponse struct {
	Axis     string  `json:"axis"`
	OldScore float64 `json:"old_score"`
	NewScore float64 `json:"new_score"`
	Delta    float64 `json:"delta"`
}

type entityResponse struct {
	CharacterID int64               `json:"character_id"`
	Name        string              `json:"name"`
	Deltas      []axisDeltaResponse `json:"deltas"`
}

type writeOutcomeResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

type resolveResponse struct {
	Fingerprint    string               `json:"fingerprint"`
	WorldID        string               `json:"world_id"`
	Channel        string               `json:"channel"`
	GrammarVersion string               `json:"grammar_version"`
	Speaker        entityResponse       `json:"speaker"`
	Listener       entityResponse       `json:"listener"`
	LedgerEventID  string               `json:"ledger_event_id,omitempty"`
	LedgerWrite    writeOutcomeResponse `json:"ledger_write"`
	SpeakerWrite   writeOutcomeResponse `json:"speaker_write"`
	ListenerWrite  writeOutcomeResponse `json:"listener_write"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func registerRoutes(mux *http.ServeMux, engine resolver) {
	handler := &apiHandler{engine: engine}
	mux.HandleFunc("/v1/resolve", handler.handleResolve)
	mux.HandleFunc("/healthz", handleHealthz)
}

type apiHandler struct {
	engine resolver
}

func (h *apiHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only POST is supported")
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.WorldID) == "" || strings.TrimSpace(req.Speaker) == "" ||
		strings.TrimSpace(req.Listener) == "" || strings.TrimSpace(req.Channel) == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "world_id, speaker, listener and channel are required")
		return
	}

	result, err := h.engine.Resolve(r.Context(), req.WorldID, req.Speaker, req.Listener, req.Channel)
	if err != nil {
		code := apperrors.GetCode(err)
		writeJSONError(w, httpStatusForCode(code), strings.ToLower(string(code)), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toResolveResponse(result))
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only GET is supported")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func httpStatusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.CodeCharacterNotFound, apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeGrammarUnknownChannel, apperrors.CodeAxisUnknown, apperrors.CodeAxisDeltasEmpty:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toResolveResponse(result resolution.Result) resolveResponse {
	return resolveResponse{
		Fingerprint:    result.Fingerprint,
		WorldID:        result.WorldID,
		Channel:        result.Channel,
		GrammarVersion: result.GrammarVersion,
		Speaker:        toEntityResponse(result.Speaker),
		Listener:       toEntityResponse(result.Listener),
		LedgerEventID:  result.LedgerEventID,
		LedgerWrite:    toWriteOutcomeResponse(result.Writes.Ledger),
		SpeakerWrite:   toWriteOutcomeResponse(result.Writes.Speaker),
		ListenerWrite:  toWriteOutcomeResponse(result.Writes.Listener),
	}
}

func toEntityResponse(entity resolution.EntityResolution) entityResponse {
	deltas := make([]axisDeltaResponse, 0, len(entity.Deltas))
	for _, delta := range entity.Deltas {
		deltas = append(deltas, axisDeltaResponse{
			Axis:     delta.Axis,
			OldScore: delta.OldScore,
			NewScore: delta.NewScore,
			Delta:    delta.Delta,
		})
	}
	return entityResponse{CharacterID: entity.CharacterID, Name: entity.Name, Deltas: deltas}
}

func toWriteOutcomeResponse(outcome resolution.WriteOutcome) writeOutcomeResponse {
	response := writeOutcomeResponse{State: string(outcome.State)}
	if outcome.Err != nil {
		response.Error = outcome.Err.Error()
	}
	return response
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
