// internal/handlers/generate-wish/handler.go
package generatewish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "wish-generator/internal/common/errors"
	"wish-generator/internal/common/metrics"
	"wish-generator/internal/common/middleware"
	"wish-generator/internal/common/observability"
)

const (
	Route    = "/generate-wish"
	APIRoute = "/api/generate-wish"

	// MaxBodyBytes caps request bodies at 100 KiB.
	MaxBodyBytes int64 = 100 << 10
)

// Relayer forwards a resolved prompt to the completion API.
type Relayer interface {
	Relay(ctx context.Context, prompt Prompt) (*RelayResult, error)
}

type Handler struct {
	relayer Relayer
	logger  Logger
	errors  *apperrors.ErrorHandler
	obs     *observability.Observability
}

func NewHandler(relayer Relayer, log Logger, obs *observability.Observability) *Handler {
	return &Handler{
		relayer: relayer,
		logger:  log,
		errors:  apperrors.NewErrorHandler(log),
		obs:     obs,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	req, err := DecodeWishRequest(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, "", start, apperrors.NewRequestTooLargeError(tooLarge.Limit, err))
			return
		}
		h.fail(w, r, "", start, apperrors.NewRequestDecodeFailedError(err))
		return
	}

	prompt := Resolve(req.Tone, req.Target)
	tone := prompt.Tone.String()

	h.logger.Info("generating wish", map[string]interface{}{
		"requestId":     middleware.RequestIDFromContext(ctx),
		"tone":          tone,
		"requestedTone": req.Tone,
	})

	metrics.WishRequestsActive.Inc()
	result, err := h.relayer.Relay(ctx, prompt)
	metrics.WishRequestsActive.Dec()

	if err != nil {
		h.fail(w, r, tone, start, err)
		return
	}

	outcome := metrics.OutcomeSuccess
	if result.Rejected() {
		outcome = metrics.OutcomeUpstreamRejected
	}
	h.record(ctx, tone, outcome, start)
	metrics.UpstreamResponsesTotal.WithLabelValues(strconv.Itoa(result.StatusCode)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	if _, err := w.Write(result.Body); err != nil {
		h.logger.Debug("failed to write response", map[string]interface{}{
			"requestId": middleware.RequestIDFromContext(ctx),
			"error":     err.Error(),
		})
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, tone string, start time.Time, err error) {
	stdErr := h.errors.WriteHTTPError(w, r, err)
	metrics.LocalFailuresTotal.WithLabelValues(string(stdErr.Code)).Inc()
	h.record(r.Context(), tone, metrics.OutcomeFailure, start)
}

func (h *Handler) record(ctx context.Context, tone, outcome string, start time.Time) {
	if tone == "" {
		tone = "unknown"
	}
	elapsed := time.Since(start)
	metrics.WishRequestsTotal.WithLabelValues(tone, outcome).Inc()
	metrics.WishRequestDuration.WithLabelValues(tone).Observe(elapsed.Seconds())
	h.obs.RecordRelay(ctx, tone, outcome)
	h.obs.RecordRelayDuration(ctx, elapsed, outcome)
}

// ToneListHandler serves GET /api/tones.
func ToneListHandler(w http.ResponseWriter, r *http.Request) {
	list := ToneList{Default: DefaultTone.String()}
	for _, t := range Tones() {
		list.Tones = append(list.Tones, ToneInfo{ID: t.String(), Default: t == DefaultTone})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}
