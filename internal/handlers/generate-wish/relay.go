// internal/handlers/generate-wish/relay.go
package generatewish

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "wish-generator/internal/common/errors"
	commonhttp "wish-generator/internal/common/http"
	"wish-generator/internal/common/validation"
)

//go:embed completion_schema.json
var completionSchemaJSON string

var completionSchema = validation.MustSchema(completionSchemaJSON)

// Logger interface definition
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Relay submits resolved prompts to the completion API. Every call is a
// single attempt.
type Relay struct {
	config *Config
	client *commonhttp.Client
	logger Logger
	tracer trace.Tracer
}

func NewRelay(config *Config, client *commonhttp.Client, log Logger, tracer trace.Tracer) *Relay {
	if client == nil {
		client = commonhttp.NewClient(config.Timeout)
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Relay{
		config: config,
		client: client,
		logger: log,
		tracer: tracer,
	}
}

// BuildRequest produces the upstream payload for prompt.
func (r *Relay) BuildRequest(prompt Prompt) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model: r.config.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: r.config.Temperature,
		MaxTokens:   r.config.MaxTokens,
	}
}

// Relay sends prompt upstream. A non-nil result carries the upstream status
// and JSON body verbatim, whatever the status. Failures to obtain such a body
// are returned as *errors.StandardError.
func (r *Relay) Relay(ctx context.Context, prompt Prompt) (*RelayResult, error) {
	ctx, span := r.tracer.Start(ctx, "completion.relay", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("wish.tone", prompt.Tone.String()),
		attribute.String("llm.model", r.config.Model),
	)

	result, err := r.relay(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", result.StatusCode))
	if result.Rejected() {
		span.SetStatus(codes.Error, fmt.Sprintf("upstream status %d", result.StatusCode))
	}
	return result, nil
}

func (r *Relay) relay(ctx context.Context, prompt Prompt) (*RelayResult, error) {
	payload := r.BuildRequest(prompt)

	check, err := completionSchema.Validate(payload)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !check.Valid {
		return nil, apperrors.NewPayloadInvalidError(strings.Join(check.GetErrorMessages(), "; "))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("encode completion request: %w", err))
	}

	start := time.Now()
	resp, err := r.client.PostJSON(ctx, r.config.CompletionsURL(), body, map[string]string{
		"Authorization": "Bearer " + r.config.apiKey(),
	})
	if err != nil {
		if resp != nil {
			return nil, apperrors.NewUpstreamResponseInvalidError(resp.StatusCode, err)
		}
		return nil, apperrors.NewUpstreamTransportFailedError(err)
	}

	r.logger.Debug("completion API responded", map[string]interface{}{
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
		"bytes":      len(resp.Body),
	})

	if !isJSON(resp.Body) {
		return nil, apperrors.NewUpstreamResponseInvalidError(resp.StatusCode, fmt.Errorf("body is not valid JSON"))
	}

	result := &RelayResult{StatusCode: resp.StatusCode, Body: resp.Body}
	if result.Rejected() {
		r.logger.Error("completion API rejected request", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(resp.Body),
		})
		return result, nil
	}

	result.StatusCode = 200
	return result, nil
}
