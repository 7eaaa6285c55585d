package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"videoprompt/internal/domain"
	"videoprompt/internal/infra"
	"videoprompt/internal/metrics"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
)

// Instruction is sent ahead of the frames in every request.
const Instruction = `Analyze these video frames, which are sequential snapshots from a short video clip. Generate a detailed and descriptive prompt suitable for a text-to-video AI model to recreate a similar video. The prompt should include:
- The main subject(s) and their key features.
- The primary action or movement occurring.
- The setting or environment, including background details.
- The camera angle and movement (e.g., static shot, panning left, close-up).
- The overall style, mood, or aesthetic (e.g., cinematic, hyperrealistic, 8-bit, watercolor).

Produce only the prompt text as your response.`

var errMissingAPIKey = errors.New("gemini api key is not configured")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client turns an ordered frame set into a single generateContent call.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. A missing API key
// is accepted here; requests fail when they are attempted.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		l := zerolog.New(io.Discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// GeneratePrompt asks the model for a text-to-video prompt describing the
// frames. Every remote fault is logged and reported as
// domain.ErrRemoteGeneration.
func (c *Client) GeneratePrompt(ctx context.Context, frames domain.FrameSet) (domain.GeneratedPrompt, error) {
	if len(frames) == 0 {
		return "", domain.ErrEmptyFrameSet
	}

	start := time.Now()
	text, err := c.generate(ctx, frames)
	metrics.StageDuration.WithLabelValues("request").Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("model", c.model).
			Int("frames", len(frames)).
			Msg("genai: error generating prompt from frames")
		return "", domain.ErrRemoteGeneration
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("frames", len(frames)).
		Int("chars", len(text)).
		Dur("latency", time.Since(start)).
		Msg("genai: prompt generated")
	return domain.GeneratedPrompt(text), nil
}

func (c *Client) generate(ctx context.Context, frames domain.FrameSet) (string, error) {
	if c.apiKey == "" {
		return "", errMissingAPIKey
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	if err := c.invokeGemini(ctx, path, buildRequest(frames), &response); err != nil {
		return "", err
	}
	return responseText(response)
}

func buildRequest(frames domain.FrameSet) geminiGenerateContentRequest {
	parts := make([]geminiPart, 0, len(frames)+1)
	parts = append(parts, geminiPart{Text: Instruction})
	for _, frame := range frames {
		mimeType := frame.MimeType
		if mimeType == "" {
			mimeType = domain.FrameMimeType
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(frame.Data),
		}})
	}
	return geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	}
}

// responseText joins the text parts of the first candidate.
func responseText(response geminiGenerateContentResponse) (string, error) {
	if len(response.Candidates) == 0 {
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", response.PromptFeedback.BlockReason)
		}
		return "", errors.New("no candidates returned")
	}
	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty candidate text (finish reason %q)", response.Candidates[0].FinishReason)
	}
	return b.String(), nil
}

func (c *Client) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
