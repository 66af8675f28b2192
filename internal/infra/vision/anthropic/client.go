package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Message is one conversation turn in the Messages API.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is either a text block or an image block.
type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource carries base64 image data inline with the request.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// MessageRequest is the payload sent to the Messages API.
type MessageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// MessageResponse captures a non-streaming reply.
type MessageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
	Usage      Usage          `json:"usage"`
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Text concatenates the text blocks of a reply.
func (r MessageResponse) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// NewVisionMessage builds a user turn carrying one inline image followed by
// the instruction text, the shape the Messages API expects for vision calls.
func NewVisionMessage(mediaType string, image []byte, instruction string) Message {
	return Message{
		Role: "user",
		Content: []ContentBlock{
			{
				Type: "image",
				Source: &ImageSource{
					Type:      "base64",
					MediaType: mediaType,
					Data:      base64.StdEncoding.EncodeToString(image),
				},
			},
			{
				Type: "text",
				Text: instruction,
			},
		},
	}
}

// Client performs HTTP requests to the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Messages API client.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CreateMessage triggers a sync Messages API call. Failures carry a code so
// callers can tell auth and quota problems apart from plain transport ones.
func (c *Client) CreateMessage(ctx context.Context, req MessageRequest) (MessageResponse, error) {
	var out MessageResponse

	payload, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("encode messages request: %w", err)
	}

	endpoint := c.baseURL + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("build messages request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return out, apperrors.Wrap("vision_transport", "inference request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		cause := fmt.Errorf("inference request error: status=%d body=%s", resp.StatusCode, apiErrorDetail(raw))
		return out, apperrors.Wrap(codeForStatus(resp.StatusCode), "inference service rejected request", cause)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, apperrors.Wrap("vision_transport", "read inference response", err)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, apperrors.Wrap("vision_transport", "decode inference response", err)
	}

	return out, nil
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "vision_unauthorized"
	case status == http.StatusTooManyRequests:
		return "vision_quota"
	case status == http.StatusBadRequest:
		return "vision_bad_request"
	default:
		return "vision_transport"
	}
}

// apiErrorDetail pulls the message out of the API error envelope when the
// body is one, falling back to the raw payload.
func apiErrorDetail(raw []byte) string {
	var envelope struct {
		Type  string `json:"type"`
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Sprintf("%s: %s", envelope.Error.Type, envelope.Error.Message)
	}
	return string(raw)
}
