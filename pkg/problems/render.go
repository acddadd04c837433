package problems

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Body is the JSON error document returned to callers.
type Body struct {
	Type       string `json:"type"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Renderer writes errors as problem bodies. In development, server-side
// failures include their internal detail; otherwise the message is generic.
type Renderer struct {
	Base string
	Dev  bool
	Log  *zap.SugaredLogger
}

// Body builds the response document for err without writing it.
func (rd Renderer) Body(err error) Body {
	kind := KindOf(err)
	status := kind.Status()
	b := Body{Type: Type(rd.Base, kind), StatusCode: status}

	switch kind {
	case KindInvalidPayload:
		b.Error, b.Message = "BadRequestError", ErrInvalidPayload.Message
	case KindInvalidCredentials:
		b.Error, b.Message = "UnauthorizedError", ErrInvalidCredentials.Message
	case KindUnauthorized:
		b.Error, b.Message = "UnauthorizedError", ErrUnauthorized.Message
	case KindTenantDisabled:
		b.Error, b.Message = "ForbiddenError", ErrTenantDisabled.Message
	case KindConfiguration, KindInfrastructure:
		b.Error, b.Message = "Internal Server Error", "An unexpected error occurred"
		if rd.Dev {
			b.Message = err.Error()
		}
	}
	return b
}

// Write logs err at a level matching its kind and writes the problem body.
func (rd Renderer) Write(w http.ResponseWriter, r *http.Request, err error) {
	b := rd.Body(err)
	if rd.Log != nil {
		kv := []any{"method", r.Method, "path", r.URL.Path, "status", b.StatusCode, "err", err}
		if KindOf(err).ClientFault() {
			rd.Log.Warnw("request rejected", kv...)
		} else {
			rd.Log.Errorw("request error", kv...)
		}
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(b.StatusCode)
	_ = json.NewEncoder(w).Encode(b)
}
