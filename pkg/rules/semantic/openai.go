package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIConfig configures the AI-backed comparator.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	// Timeout bounds a single comparison call.
	Timeout time.Duration

	// RequestsPerSecond and Burst throttle outbound calls so a large
	// presentation cannot exhaust the provider quota.
	RequestsPerSecond float64
	Burst             int

	// Threshold is forwarded to the fuzzy fallback.
	Threshold float64
}

// ApplyDefaults fills unset fields.
func (c *OpenAIConfig) ApplyDefaults() {
	if c.Model == "" {
		c.Model = openai.GPT4oMini
	}
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	if c.Burst <= 0 {
		c.Burst = 4
	}
}

// OpenAIComparator asks a chat model whether two trade-document values
// are equivalent. Every failure path degrades to the deterministic
// fuzzy comparator; validation never blocks on the provider.
type OpenAIComparator struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	fallback *FallbackComparator
	logger   *slog.Logger
}

// NewOpenAIComparator creates the comparator. The API key must be set;
// callers without one should use the fallback comparator directly.
func NewOpenAIComparator(config OpenAIConfig) (*OpenAIComparator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai comparator requires an api key")
	}
	config.ApplyDefaults()

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIComparator{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    config.Model,
		timeout:  config.Timeout,
		limiter:  rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		fallback: NewFallbackComparator(config.Threshold),
		logger:   slog.Default().With("component", "semantic.openai"),
	}, nil
}

// aiVerdict is the JSON shape the model is instructed to return.
type aiVerdict struct {
	Match        bool   `json:"match"`
	SuggestedFix string `json:"suggested_fix"`
}

const comparePrompt = `You compare field values extracted from letter of credit documents.
Decide whether the two values refer to the same real-world entity, place, date, or description,
allowing for abbreviations, word order, casing, and minor spelling noise.
Respond with JSON only: {"match": true|false, "suggested_fix": "<short fix when match is false, else empty>"}`

// Compare asks the model for a verdict, degrading to fuzzy matching on
// rate-limit exhaustion, transport errors, or malformed responses.
func (o *OpenAIComparator) Compare(ctx context.Context, left, right string, opts CompareOptions) (*Verdict, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.limiter.Wait(callCtx); err != nil {
		return o.degrade(ctx, left, right, opts, fmt.Errorf("rate limit wait: %w", err))
	}

	user := fmt.Sprintf("Value A: %s\nValue B: %s", left, right)
	if opts.Hint != "" {
		user += "\nContext: " + opts.Hint
	}

	resp, err := o.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: comparePrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return o.degrade(ctx, left, right, opts, err)
	}
	if len(resp.Choices) == 0 {
		return o.degrade(ctx, left, right, opts, fmt.Errorf("empty completion"))
	}

	var parsed aiVerdict
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return o.degrade(ctx, left, right, opts, fmt.Errorf("malformed verdict %q: %w", content, err))
	}

	verdict := &Verdict{
		Match:     parsed.Match,
		Expected:  right,
		Found:     left,
		Documents: opts.Documents,
		Source:    SourceAI,
	}
	if parsed.Match {
		verdict.Score = 1
	} else {
		verdict.SuggestedFix = parsed.SuggestedFix
	}
	return verdict, nil
}

// degrade runs the fuzzy fallback after an AI failure.
func (o *OpenAIComparator) degrade(ctx context.Context, left, right string, opts CompareOptions, cause error) (*Verdict, error) {
	o.logger.Warn("ai comparison failed, using fuzzy fallback", "error", cause)
	return o.fallback.Compare(ctx, left, right, opts)
}
