// internal/handlers/generate-wish/handler_test.go
package generatewish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "wish-generator/internal/common/errors"
	"wish-generator/internal/common/logger"
	"wish-generator/internal/common/metrics"
)

type MockRelayer struct {
	mock.Mock
}

func (m *MockRelayer) Relay(ctx context.Context, prompt Prompt) (*RelayResult, error) {
	args := m.Called(ctx, prompt)
	result, _ := args.Get(0).(*RelayResult)
	return result, args.Error(1)
}

func postWish(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, APIRoute, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "error")
	msg, ok := body["error"].(string)
	require.True(t, ok)
	return msg
}

func TestHandler_RelaysSuccess(t *testing.T) {
	relayer := new(MockRelayer)
	relayer.On("Relay", mock.Anything, Resolve("funny", "brother")).
		Return(&RelayResult{StatusCode: http.StatusOK, Body: []byte(completionBody)}, nil).Once()

	h := NewHandler(relayer, logger.NewTestLogger(t), nil)
	rec := postWish(t, h, `{"target":"brother","tone":"funny"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, completionBody, rec.Body.String())
	relayer.AssertExpectations(t)
}

func TestHandler_RelaysUpstreamRejection(t *testing.T) {
	relayer := new(MockRelayer)
	relayer.On("Relay", mock.Anything, mock.Anything).
		Return(&RelayResult{StatusCode: http.StatusTooManyRequests, Body: []byte(`{"error":"rate limited"}`)}, nil)

	h := NewHandler(relayer, logger.NewTestLogger(t), nil)
	rec := postWish(t, h, `{"target":"brother","tone":"funny"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, `{"error":"rate limited"}`, rec.Body.String())
}

func TestHandler_LocalFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport", apperrors.NewUpstreamTransportFailedError(errors.New("connection refused"))},
		{"unreadable body", apperrors.NewUpstreamResponseInvalidError(http.StatusBadGateway, errors.New("body is not valid JSON"))},
		{"payload", apperrors.NewPayloadInvalidError("max_tokens: Must be greater than or equal to 1")},
		{"plain error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relayer := new(MockRelayer)
			relayer.On("Relay", mock.Anything, mock.Anything).Return(nil, tt.err)

			h := NewHandler(relayer, logger.NewTestLogger(t), nil)
			rec := postWish(t, h, `{"target":"brother","tone":"funny"}`)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestHandler_MalformedBody(t *testing.T) {
	relayer := new(MockRelayer)
	h := NewHandler(relayer, logger.NewTestLogger(t), nil)

	rec := postWish(t, h, `{"target": "brother",`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "not valid JSON")
	relayer.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestHandler_TrailingDataRejected(t *testing.T) {
	relayer := new(MockRelayer)
	h := NewHandler(relayer, logger.NewTestLogger(t), nil)

	rec := postWish(t, h, `{"target":"a","tone":"funny"} garbage`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "not valid JSON")
	relayer.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestHandler_BodyLimit(t *testing.T) {
	t.Run("over limit", func(t *testing.T) {
		relayer := new(MockRelayer)
		h := NewHandler(relayer, logger.NewTestLogger(t), nil)

		target := strings.Repeat("x", int(MaxBodyBytes))
		rec := postWish(t, h, `{"target":"`+target+`","tone":"funny"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, decodeError(t, rec), "too large")
		relayer.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
	})

	t.Run("under limit", func(t *testing.T) {
		target := strings.Repeat("x", 90<<10)
		relayer := new(MockRelayer)
		relayer.On("Relay", mock.Anything, Resolve("funny", target)).
			Return(&RelayResult{StatusCode: http.StatusOK, Body: []byte(completionBody)}, nil).Once()
		h := NewHandler(relayer, logger.NewTestLogger(t), nil)

		rec := postWish(t, h, `{"target":"`+target+`","tone":"funny"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		relayer.AssertExpectations(t)
	})
}

func TestHandler_DefaultsToEmotional(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"empty object", `{}`},
		{"unknown tone", `{"tone":"sarcastic"}`},
		{"null fields", `{"target":null,"tone":null}`},
		{"array body", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relayer := new(MockRelayer)
			relayer.On("Relay", mock.Anything, mock.MatchedBy(func(p Prompt) bool {
				return p.Tone == ToneEmotional && p.System == TemplateFor(ToneEmotional).System
			})).Return(&RelayResult{StatusCode: http.StatusOK, Body: []byte(completionBody)}, nil).Once()

			h := NewHandler(relayer, logger.NewTestLogger(t), nil)
			rec := postWish(t, h, tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			relayer.AssertExpectations(t)
		})
	}
}

func TestHandler_PassesRequestContext(t *testing.T) {
	type key struct{}
	relayer := new(MockRelayer)
	relayer.On("Relay", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Value(key{}) == "marker"
	}), mock.Anything).Return(&RelayResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil).Once()

	h := NewHandler(relayer, logger.NewTestLogger(t), nil)
	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(`{}`))
	req = req.WithContext(context.WithValue(req.Context(), key{}, "marker"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	relayer.AssertExpectations(t)
}

func TestHandler_RecordsMetrics(t *testing.T) {
	rejected := metrics.WishRequestsTotal.WithLabelValues("romantic", metrics.OutcomeUpstreamRejected)
	status := metrics.UpstreamResponsesTotal.WithLabelValues("429")
	failed := metrics.LocalFailuresTotal.WithLabelValues(string(apperrors.ErrCodeUpstreamTransportFailed))
	beforeRejected := testutil.ToFloat64(rejected)
	beforeStatus := testutil.ToFloat64(status)
	beforeFailed := testutil.ToFloat64(failed)

	relayer := new(MockRelayer)
	relayer.On("Relay", mock.Anything, mock.MatchedBy(func(p Prompt) bool { return p.Tone == ToneRomantic })).
		Return(&RelayResult{StatusCode: http.StatusTooManyRequests, Body: []byte(`{}`)}, nil).Once()
	relayer.On("Relay", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewUpstreamTransportFailedError(errors.New("dial tcp: refused"))).Once()

	h := NewHandler(relayer, logger.NewNoOpLogger(), nil)
	postWish(t, h, `{"target":"wife","tone":"romantic"}`)
	postWish(t, h, `{"target":"wife","tone":"formal"}`)

	assert.Equal(t, beforeRejected+1, testutil.ToFloat64(rejected))
	assert.Equal(t, beforeStatus+1, testutil.ToFloat64(status))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WishRequestsActive))
}

func TestToneListHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	ToneListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/tones", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var list ToneList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "emotional", list.Default)
	require.Len(t, list.Tones, 8)
	assert.Equal(t, "philosophical", list.Tones[0].ID)

	defaults := 0
	for _, tone := range list.Tones {
		if tone.Default {
			defaults++
			assert.Equal(t, "emotional", tone.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestDecodeWishRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    WishRequest
		wantErr bool
	}{
		{"strings", `{"target":"my brother","tone":"funny"}`, WishRequest{Target: "my brother", Tone: "funny"}, false},
		{"empty", ``, WishRequest{}, false},
		{"whitespace", "  \n", WishRequest{}, false},
		{"number target", `{"target":42}`, WishRequest{Target: "42"}, false},
		{"float keeps text", `{"target":1.50}`, WishRequest{Target: "1.50"}, false},
		{"bool tone", `{"tone":true}`, WishRequest{Tone: "true"}, false},
		{"object target", `{"target":{"name":"mom"}}`, WishRequest{Target: `{"name":"mom"}`}, false},
		{"array target", `{"target":["a","b"]}`, WishRequest{Target: `["a","b"]`}, false},
		{"extra fields", `{"target":"team","tone":"short","lang":"en"}`, WishRequest{Target: "team", Tone: "short"}, false},
		{"string body", `"funny"`, WishRequest{}, false},
		{"malformed", `{"target":`, WishRequest{}, true},
		{"not json", `target=brother`, WishRequest{}, true},
		{"trailing garbage", `{"target":"a","tone":"funny"} garbage`, WishRequest{}, true},
		{"second value", `{"target":"a"} {"tone":"funny"}`, WishRequest{}, true},
		{"trailing brace", `{"target":"a"}}`, WishRequest{}, true},
		{"trailing newline", "{\"target\":\"a\"}\n", WishRequest{Target: "a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeWishRequest(strings.NewReader(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// End-to-End Tests
// ==========================

func TestHandler_EndToEnd(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"success", http.StatusOK, completionBody, http.StatusOK},
		{"rate limited", http.StatusTooManyRequests, `{"error":"rate limited"}`, http.StatusTooManyRequests},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Authentication Fails"}}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := newStubUpstream(t, tt.status, tt.body)
			relay := newTestRelay(t, createTestConfig(upstream.URL))
			h := NewHandler(relay, logger.NewTestLogger(t), nil)

			rec := postWish(t, h, `{"target":"my brother","tone":"funny"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())

			calls := upstream.Calls()
			require.Len(t, calls, 1)
			assert.Contains(t, calls[0].Payload.Messages[1].Content, "my brother")
		})
	}
}

func TestHandler_EndToEndUpstreamDown(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, completionBody)
	url := upstream.URL
	upstream.Close()

	h := NewHandler(newTestRelay(t, createTestConfig(url)), logger.NewTestLogger(t), nil)
	rec := postWish(t, h, `{"target":"brother","tone":"funny"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Completion API request failed")
}
