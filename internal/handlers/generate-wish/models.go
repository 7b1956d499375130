// internal/handlers/generate-wish/models.go
package generatewish

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// WishRequest is the body of POST /generate-wish.
type WishRequest struct {
	Target string `json:"target"`
	Tone   string `json:"tone"`
}

// DecodeWishRequest reads a request body leniently. An empty body or a JSON
// value that is not an object yields the zero request; non-string field
// values are kept in their JSON text form. Malformed JSON, including
// anything but whitespace after the first value, is an error.
func DecodeWishRequest(r io.Reader) (WishRequest, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return WishRequest{}, nil
		}
		return WishRequest{}, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return WishRequest{}, err
		}
		return WishRequest{}, fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset()-int64(len(extra)))
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return WishRequest{}, nil
	}

	return WishRequest{
		Target: textValue(obj["target"]),
		Tone:   textValue(obj["tone"]),
	}, nil
}

func textValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// ChatMessage is one turn of the upstream conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the payload sent to the completion API.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// RelayResult is an upstream answer passed through untouched. It is only
// produced when the upstream returned a readable JSON body; local failures
// travel as errors instead.
type RelayResult struct {
	StatusCode int
	Body       []byte
}

// Rejected reports whether the upstream answered with a non-2xx status.
func (r *RelayResult) Rejected() bool {
	return r.StatusCode < 200 || r.StatusCode > 299
}

// ToneInfo describes one tone for GET /api/tones.
type ToneInfo struct {
	ID      string `json:"id"`
	Default bool   `json:"default,omitempty"`
}

// ToneList is the body of GET /api/tones.
type ToneList struct {
	Default string     `json:"default"`
	Tones   []ToneInfo `json:"tones"`
}

func isJSON(body []byte) bool {
	return json.Valid(body)
}
