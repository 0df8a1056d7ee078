package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Epistemic-Technology/emolit/internal/logger"
)

type throttled struct {
	next    Completer
	limiter *rate.Limiter
	timeout time.Duration
	log     logger.Logger
}

// Throttle spaces calls to at most requestsPerMinute (0 disables the limit)
// and bounds each call by timeout (0 disables it). Each prompt is sent once;
// failed calls are returned to the caller as is.
func Throttle(next Completer, requestsPerMinute int, timeout time.Duration, log logger.Logger) Completer {
	t := &throttled{next: next, timeout: timeout, log: log}
	if requestsPerMinute > 0 {
		t.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return t
}

func (t *throttled) Complete(ctx context.Context, prompt string) (string, error) {
	if t.limiter != nil {
		start := time.Now()
		if err := t.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait failed: %w", err)
		}
		if waited := time.Since(start); waited > time.Second {
			t.log.Debug("Waited %v for LLM rate limiter", waited.Round(time.Millisecond))
		}
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	completion, err := t.next.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm call failed: %w", err)
	}
	return completion, nil
}
