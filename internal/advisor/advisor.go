// Package advisor writes a short coaching note for a finished plan using the
// Anthropic API. It never builds or alters a plan; any failure yields
// FallbackNote.
package advisor

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finplanner/internal/config"
	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/resilience"
	"github.com/sells-group/finplanner/pkg/anthropic"
)

// FallbackNote is returned whenever a note cannot be generated.
const FallbackNote = "Your financial plan is ready for review. Focus on consistency and building your core savings first."

// Advisor generates coaching notes. The zero value is disabled.
type Advisor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	retry     resilience.RetryPolicy
	breaker   *resilience.Breaker
}

// New wraps client with the retry and breaker settings from cfg. A nil client
// gives a disabled Advisor.
func New(client anthropic.Client, ac config.AnthropicConfig, cfg config.AdvisorConfig) *Advisor {
	if client == nil || !cfg.Enabled {
		return &Advisor{}
	}

	retry := resilience.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.RetryAttempts
	retry.OnRetry = resilience.RetryLogger("anthropic", "coaching_note")

	return &Advisor{
		client:    client,
		model:     ac.Model,
		maxTokens: ac.MaxTokens,
		timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
		retry:     retry,
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			Cooldown:         time.Duration(cfg.ResetTimeoutSecs) * time.Second,
			OnStateChange: func(from, to resilience.State) {
				zap.L().Warn("advisor: circuit state changed",
					zap.Stringer("from", from), zap.Stringer("to", to))
			},
		}),
	}
}

// FromConfig builds an Advisor backed by the SDK client. Without an API key
// the Advisor is disabled.
func FromConfig(cfg *config.Config) *Advisor {
	if cfg.Anthropic.Key == "" {
		return &Advisor{}
	}
	// Retries are handled here so they share the breaker.
	client := anthropic.NewClient(cfg.Anthropic.Key, option.WithMaxRetries(0))
	return New(client, cfg.Anthropic, cfg.Advisor)
}

// Enabled reports whether Note will call the API.
func (a *Advisor) Enabled() bool {
	return a != nil && a.client != nil
}

// Note returns a coaching note for plan, or FallbackNote on any failure.
func (a *Advisor) Note(ctx context.Context, p model.UserProfile, goals []model.Goal, plan model.PlanResult) string {
	if !a.Enabled() {
		return FallbackNote
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	req := anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: BuildPrompt(p, goals, plan)}},
	}

	text, err := resilience.Call(ctx, a.breaker, func(ctx context.Context) (string, error) {
		return resilience.Do(ctx, a.retry, func(ctx context.Context) (string, error) {
			return a.createNote(ctx, req)
		})
	})
	if err != nil {
		zap.L().Warn("advisor: coaching note failed, using fallback", zap.Error(err))
		return FallbackNote
	}
	if text == "" {
		return FallbackNote
	}
	return text
}

func (a *Advisor) createNote(ctx context.Context, req anthropic.MessageRequest) (string, error) {
	resp, err := a.client.CreateMessage(ctx, req)
	if err != nil {
		if code := anthropic.StatusCode(err); resilience.IsTransientHTTPStatus(code) {
			return "", resilience.NewTransientError(err, code)
		}
		return "", err
	}
	if resp == nil {
		return "", eris.New("advisor: empty response")
	}
	resp.Usage.LogCost(a.model, "coaching_note")
	return strings.TrimSpace(resp.Text()), nil
}
