package appraisal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	engine "project_appraisal/pkg/core/appraisal"
	"project_appraisal/pkg/core/utils"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []engine.FieldError `json:"fields,omitempty"`
}

func setCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// preflight sets CORS headers and reports whether the request is done:
// either an OPTIONS preflight or a method that is not allowed.
func preflight(w http.ResponseWriter, r *http.Request, method string) bool {
	setCORS(w, method)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	if r.Method != method {
		w.Header().Set("Allow", method+", OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return true
	}
	return false
}

// decodeBody reads a JSON body leniently: strict JSON, repaired JSON, then Hjson.
func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if _, err := utils.SmartParse(string(body), v); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 422 and everything else to status.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		h.logger.Info("rejected appraisal input",
			zap.String("path", r.URL.Path), zap.Int("fields", len(verr.Fields)))
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid appraisal input", Fields: verr.Fields})
		return
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("appraisal request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
