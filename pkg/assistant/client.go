// Package assistant relays patient chat to a Gemini generateContent backend.
package assistant

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

	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/dlp"
	"github.com/mouthwatch/platform/pkg/gateway/httpclient"
	"github.com/mouthwatch/platform/pkg/observability/metrics"
)

const (
	serviceName     = "chat"
	maxResponseSize = 1 << 20

	FallbackReply = "I'm having trouble connecting right now. Please try again."

	SystemPrompt = `You are MouthWatch Assistant, a friendly and knowledgeable dental health AI.
Your role is to help patients understand their oral health, answer questions about dental conditions,
and guide them on when to seek professional care. Always recommend seeing a dentist for serious concerns.
Never provide a definitive diagnosis. Keep responses concise, warm, and non-alarming.
If asked about anything unrelated to oral/dental health, politely redirect to your area of expertise.`

	greeting = "Hi! I'm your MouthWatch dental assistant. I can answer questions about oral health, explain your scan results, or help you understand what to expect at your next dentist visit. What's on your mind?"
)

var (
	ErrEmptyInput  = errors.New("message is empty")
	ErrNoCandidate = errors.New("chat response carried no candidate text")
	ErrUnknownRole = errors.New("unknown message role")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Greeting is the conversation a new chat opens with.
func Greeting() []Message {
	return []Message{{Role: RoleAssistant, Content: greeting}}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"system_instruction"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	baseURL    string
	model      string
	apiKey     string
	http       *http.Client
	attempts   int
	retryDelay time.Duration
	redactor   *dlp.Redactor
}

// NewClient accepts a nil redactor; patient text is then sent unmasked.
func NewClient(cfg *config.Config, redactor *dlp.Redactor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.ChatBaseURL, "/"),
		model:      cfg.ChatModelName,
		apiKey:     cfg.ChatAPIKey,
		http:       httpclient.New(cfg.ChatTimeout),
		attempts:   cfg.OutboundRetryAttempts,
		retryDelay: cfg.OutboundRetryDelay,
		redactor:   redactor,
	}
}

// Reply sends history plus input and returns the model's answer. Callers
// show FallbackReply for any error except ErrEmptyInput.
func (c *Client) Reply(ctx context.Context, history []Message, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}
	req, err := buildRequest(history, input, c.redact)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var out generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	err = httpclient.Retry(ctx, c.attempts, c.retryDelay, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("x-goog-api-key", c.apiKey)
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := httpclient.CheckStatus(serviceName, resp); err != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return err
		}
		out = generateResponse{}
		return json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out)
	})
	if err != nil {
		metrics.ExternalFailures.WithLabelValues(serviceName).Inc()
		logger.Log.WithError(err).Warn("chat backend failed")
		return "", fmt.Errorf("chat: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 ||
		out.Candidates[0].Content.Parts[0].Text == "" {
		metrics.ExternalFailures.WithLabelValues(serviceName).Inc()
		return "", ErrNoCandidate
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// redact masks identifiers in patient-authored text.
func (c *Client) redact(text string) string {
	masked, found := c.redactor.Redact(text)
	if len(found) > 0 {
		logger.Log.WithField("types", found).Info("masked identifiers in chat message")
	}
	return masked
}

func buildRequest(history []Message, input string, redact func(string) string) (generateRequest, error) {
	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		text := m.Content
		var role string
		switch m.Role {
		case RoleUser:
			role = "user"
			text = redact(text)
		case RoleAssistant:
			role = "model"
		default:
			return generateRequest{}, fmt.Errorf("%q: %w", m.Role, ErrUnknownRole)
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: redact(input)}}})

	return generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemPrompt}}},
		Contents:          contents,
	}, nil
}
