package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Attempt records one model call made by the invoker.
type Attempt struct {
	Variant Variant `json:"variant"`
	Error   string  `json:"error,omitempty"`
	Class   string  `json:"class,omitempty"`
}

// Trace lists every attempt made while serving one invocation, in order.
type Trace struct {
	Attempts []Attempt `json:"attempts"`
}

func (t *Trace) record(variant Variant, err error) {
	a := Attempt{Variant: variant}
	if err != nil {
		a.Error = err.Error()
		a.Class = Classify(err).String()
	}
	t.Attempts = append(t.Attempts, a)
}

// Invoker drives the variant fallback strategy over a Client:
//   - quota exhaustion: move to the next variant immediately, at most once
//     per variant, never looping back;
//   - transient failure: retry the same variant once with backoff, then
//     fall through to the next variant unless the retry failed permanently;
//   - permanent failure: fail immediately.
type Invoker struct {
	client   Client
	variants []Variant
	backoff  time.Duration
	logger   *slog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithVariants overrides the fallback chain.
func WithVariants(variants []Variant) Option {
	return func(inv *Invoker) {
		if len(variants) > 0 {
			inv.variants = variants
		}
	}
}

// WithBackoff sets the delay before the single same-variant retry. Zero
// disables the delay.
func WithBackoff(d time.Duration) Option {
	return func(inv *Invoker) {
		if d >= 0 {
			inv.backoff = d
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(inv *Invoker) {
		if logger != nil {
			inv.logger = logger
		}
	}
}

// NewInvoker creates an Invoker over client with the default variant chain.
func NewInvoker(client Client, opts ...Option) *Invoker {
	inv := &Invoker{
		client:   client,
		variants: DefaultVariants(),
		backoff:  2 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// GenerateText serves a plain-text call through the fallback chain.
func (inv *Invoker) GenerateText(ctx context.Context, req Request) (string, Trace, error) {
	req.JSONOutput = false
	return inv.invoke(ctx, req)
}

// GenerateJSON serves a JSON-output call through the fallback chain and
// strictly parses the result. A parse failure is fatal for this call only:
// the model answered, so fallback does not apply.
func (inv *Invoker) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, Trace, error) {
	req.JSONOutput = true
	text, trace, err := inv.invoke(ctx, req)
	if err != nil {
		return nil, trace, err
	}

	raw, err := ParseJSON(text)
	if err != nil {
		inv.logger.Warn("model output failed strict JSON parse", "rawBytes", len(text))
		return nil, trace, err
	}
	return raw, trace, nil
}

func (inv *Invoker) invoke(ctx context.Context, req Request) (string, Trace, error) {
	var trace Trace
	var lastErr error

	for _, variant := range inv.variants {
		text, err := inv.client.Generate(ctx, variant, req)
		trace.record(variant, err)
		if err == nil {
			return text, trace, nil
		}
		lastErr = err

		switch Classify(err) {
		case ClassQuota:
			inv.logger.Debug("quota exhausted, falling back", "variant", variant)
			continue

		case ClassTransient:
			inv.logger.Debug("transient failure, retrying variant once", "variant", variant, "error", err)
			if sleepErr := sleepCtx(ctx, inv.backoff); sleepErr != nil {
				return "", trace, &ModelError{Variant: variant, Class: ClassTransient, Cause: sleepErr}
			}

			text, err = inv.client.Generate(ctx, variant, req)
			trace.record(variant, err)
			if err == nil {
				return text, trace, nil
			}
			lastErr = err
			if Classify(err) == ClassPermanent {
				return "", trace, &ModelError{Variant: variant, Class: ClassPermanent, Cause: err}
			}
			inv.logger.Debug("retry failed, falling back", "variant", variant, "error", err)
			continue

		case ClassPermanent:
			return "", trace, &ModelError{Variant: variant, Class: ClassPermanent, Cause: err}
		}
	}

	return "", trace, &ErrVariantsExhausted{Tried: inv.variants, Last: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
