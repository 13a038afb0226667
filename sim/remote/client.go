package remote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Token-limit field names, newest first.
const (
	fieldMaxCompletionTokens = "max_completion_tokens"
	fieldMaxTokens           = "max_tokens"
)

// attempt is one parameter shape tried against the endpoint.
type attempt struct {
	tokenField string
	jsonFormat bool
}

// attempts is the fixed retry order: newer token field first, JSON mode
// first within each.
var attempts = []attempt{
	{fieldMaxCompletionTokens, true},
	{fieldMaxCompletionTokens, false},
	{fieldMaxTokens, true},
	{fieldMaxTokens, false},
}

// chatClient sends chat completions to an OpenAI-compatible endpoint.
// Safe for concurrent use.
type chatClient struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter // nil = unlimited
}

func newChatClient(cfg Config) *chatClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = normalizeBaseURL(cfg.BaseURL)

	c := &chatClient{
		api:     openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// normalizeBaseURL accepts both "https://host" and "https://host/v1".
func normalizeBaseURL(u string) string {
	u = strings.TrimRight(u, "/")
	if strings.HasSuffix(u, "/v1") {
		return u
	}
	return u + "/v1"
}

// wireTemperature maps t onto the request field. The client drops a zero
// temperature from the payload, so zero is sent as the smallest positive
// float32 instead.
func wireTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// complete tries each parameter shape in order and returns the first
// successful reply, together with the number of attempts made. When every
// attempt fails the last error is returned.
func (c *chatClient) complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, int, error) {
	start := time.Now()
	defer func() { requestDuration.Observe(time.Since(start).Seconds()) }()

	var lastErr error
	for i, at := range attempts {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", i, fmt.Errorf("rate limiter: %w", err)
			}
		}

		content, err := c.send(ctx, at, system, user, temperature, maxTokens)
		attemptsTotal.WithLabelValues(at.tokenField, strconv.FormatBool(at.jsonFormat), result(err)).Inc()
		if err == nil {
			logrus.Debugf("chat completion ok on attempt %d (%s, json=%v)", i+1, at.tokenField, at.jsonFormat)
			return content, i + 1, nil
		}
		logrus.Debugf("chat completion attempt %d (%s, json=%v) failed: %v", i+1, at.tokenField, at.jsonFormat, err)
		lastErr = err
		if ctx.Err() != nil {
			return "", i + 1, lastErr
		}
	}
	return "", len(attempts), lastErr
}

func (c *chatClient) send(ctx context.Context, at attempt, system, user string, temperature float64, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: wireTemperature(temperature),
	}
	if at.tokenField == fieldMaxCompletionTokens {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	if at.jsonFormat {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(cctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
