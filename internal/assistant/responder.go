package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/quocvuong92/voice-assistant/internal/api"
	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// NotInitializedText is answered when no generator is configured
const NotInitializedText = "Gemini 모델이 초기화되지 않았습니다."

const systemPreamble = `당신은 한국어 음성 AI 비서입니다. 다음 가이드라인을 따라주세요:
1. 친근하고 자연스러운 한국어로 답변하세요
2. 음성으로 들었을 때 이해하기 쉽게 답변하세요
3. 가능한 간결하되 도움이 되는 정보를 제공하세요
4. 불확실한 정보는 명확히 표시하세요
5. 실시간 정보가 제공된 경우 이를 적극 활용하세요

`

// FailureText is the answer after every attempt has failed
func FailureText(attempts int) string {
	return fmt.Sprintf("죄송합니다. %d번 시도 후에도 응답을 생성할 수 없습니다.", attempts)
}

// WrapSystemPrompt prepends the voice-assistant guidelines to prompt
func WrapSystemPrompt(prompt string) string {
	return systemPreamble + "사용자 질문: " + prompt + "\n\n답변:"
}

// Responder turns an assembled prompt into an answer. It never returns an
// error: failures become fixed apology texts.
type Responder struct {
	generator api.Generator
	policy    api.RetryPolicy
	params    api.GenerationParams
	log       *logging.FieldLogger
}

// NewResponder wraps generator with the configured retry policy. A nil
// generator is allowed and yields NotInitializedText.
func NewResponder(cfg *config.Config, generator api.Generator) *Responder {
	r := &Responder{
		generator: generator,
		policy: api.RetryPolicy{
			Attempts: cfg.RetryAttempts,
			Delay:    cfg.RetryDelay,
		},
		params: api.DefaultParams(),
		log:    logging.Component("responder"),
	}
	if r.policy.Attempts <= 0 {
		r.policy.Attempts = constants.DefaultRetryAttempts
	}
	if r.policy.Delay < 0 {
		r.policy.Delay = constants.DefaultRetryDelay
	}
	r.policy.OnRetry = func(attempt int, err error) {
		r.log.Warn("generation failed, retrying", logging.Fields{
			"attempt": fmt.Sprintf("%d/%d", attempt, r.policy.Attempts),
			"error":   err.Error(),
		})
	}
	return r
}

// Ready reports whether a generator is configured
func (r *Responder) Ready() bool {
	return r != nil && r.generator != nil
}

// Respond generates a post-processed answer for prompt
func (r *Responder) Respond(ctx context.Context, prompt string) string {
	if !r.Ready() {
		return NotInitializedText
	}

	full := WrapSystemPrompt(prompt)
	start := time.Now()
	answer, err := api.WithRetry(ctx, r.policy, func() (string, error) {
		return r.generator.Generate(ctx, full, r.params)
	})
	if err != nil {
		fields := logging.Fields{"attempts": r.policy.Attempts}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			fields["status"] = apiErr.StatusCode
			fields["provider"] = apiErr.Provider
		}
		r.log.Error("generation failed", err, fields)
		return FailureText(r.policy.Attempts)
	}

	r.log.Debug("generation finished", logging.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"answer_len":  utf8.RuneCountInString(answer),
	})
	return PostProcess(answer)
}
