package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/postpilot/postpilot/internal/config"
)

const (
	defaultAPIBase   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

var ErrGeneration = errors.New("failed to generate post")

const promptTemplate = `You are a LinkedIn thought-leadership content creator. Today is %s.

Your task:
1. Search for TODAY's most impactful trending topics in technology, AI, business, or innovation
2. Generate ONE compelling LinkedIn post (120-180 words) with:
   - A strong hook that captures attention
   - 1-2 specific data points or statistics
   - Expert insights and clear takeaway
   - An engagement question at the end
   - 3-5 relevant hashtags at the end

Focus on: AI developments, tech trends, business strategy, productivity tools, regulatory changes, or leadership insights.

Format the post ready to copy-paste into LinkedIn. Be specific, insightful, and avoid generic motivational content.

Return ONLY the post text, no preamble or explanation.`

// AnthropicClient generates posts via the Anthropic Messages API with the
// web search tool enabled.
type AnthropicClient struct {
	apiKey    string
	model     string
	maxTokens int

	apiBase    string
	httpClient *http.Client
	now        func() time.Time
}

// NewAnthropicClient creates a generator backed by the Anthropic API.
func NewAnthropicClient(cfg *config.GeneratorConfig) *AnthropicClient {
	return &AnthropicClient{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		apiBase:   defaultAPIBase,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		now: time.Now,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
	Tools     []tool    `json:"tools,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Generate requests one post from the model and returns the trimmed text
// with its word count.
func (c *AnthropicClient) Generate(ctx context.Context) (*Post, error) {
	today := c.now().Format("Monday, January 2, 2006")

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, today)},
		},
		Tools: []tool{
			{Type: "web_search_20250305", Name: "web_search"},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, string(respBody))
	}

	if resp.StatusCode != http.StatusOK {
		if msgResp.Error != nil {
			return nil, fmt.Errorf("%w: %s", ErrGeneration, msgResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, string(respBody))
	}

	// The response interleaves tool-use blocks with text; only the text
	// blocks form the post.
	var sb bytes.Buffer
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return nil, fmt.Errorf("%w: model returned no text", ErrGeneration)
	}

	return &Post{
		Content:   content,
		WordCount: CountWords(content),
	}, nil
}
