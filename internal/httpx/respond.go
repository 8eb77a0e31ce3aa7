package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/auth"
	"github.com/ariefcatur/go-freshbite.git/internal/catalog"
	"github.com/ariefcatur/go-freshbite.git/internal/orders"
	"github.com/ariefcatur/go-freshbite.git/internal/ratelimit"
	"go.uber.org/zap"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return false
	}
	return true
}

func writeRateLimited(w http.ResponseWriter, remaining time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(remaining.Seconds()))))
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: ratelimit.CooldownMessage(remaining)})
}

// writeError maps domain errors to status codes. Anything unrecognised is a
// 500 with a generic message; the detail goes to the log.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var av *auth.ValidationError
	var ov *orders.ValidationError
	switch {
	case errors.As(err, &av):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: av.Fields})
	case errors.As(err, &ov):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: ov.Fields})
	case errors.Is(err, orders.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Your cart is empty"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: auth.MsgInvalidCredentials})
	case errors.Is(err, auth.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
	case errors.Is(err, auth.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: auth.MsgEmailTaken})
	case errors.Is(err, catalog.ErrItemNotFound), errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, orders.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: "request timed out"})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
