package httpapi

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/YorHaaa/ATAI/internal/logging"
)

const maxBodyBytes = 1 << 20

// Response is the envelope every endpoint answers with.
type Response struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error code plus a message.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	if resp.Metadata.Timestamp.IsZero() {
		resp.Metadata.Timestamp = time.Now()
	}

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, r *http.Request, data any, started time.Time) {
	respondJSON(w, r, http.StatusOK, &Response{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{QueryTimeMS: time.Since(started).Milliseconds()},
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().Str("code", code).Err(err).Msg("API error")
	}
	respondJSON(w, r, status, &Response{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
	})
}

// decodeAndValidate reads a JSON body into v and checks its validate tags.
// It writes the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return false
	}
	return validateRequest(w, r, v)
}

func validateRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	apiErr := &APIError{Code: "VALIDATION_ERROR", Message: "Request validation failed"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apiErr.Details = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			apiErr.Details[fe.Field()] = fe.Tag()
		}
	}
	respondJSON(w, r, http.StatusBadRequest, &Response{Status: "error", Error: apiErr})
	return false
}
