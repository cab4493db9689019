package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

// scriptedClient returns canned responses per call, in order.
type scriptedClient struct {
	calls     []scriptedCall
	responses []scriptedResponse
}

type scriptedCall struct {
	variant Variant
}

type scriptedResponse struct {
	text string
	err  error
}

func (c *scriptedClient) Generate(_ context.Context, variant Variant, _ Request) (string, error) {
	c.calls = append(c.calls, scriptedCall{variant: variant})
	if len(c.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp.text, resp.err
}

func (c *scriptedClient) Close() error { return nil }

func quotaErr() error     { return &googleapi.Error{Code: 429, Message: "quota exceeded"} }
func serverErr() error    { return &googleapi.Error{Code: 503, Message: "unavailable"} }
func authErr() error      { return &googleapi.Error{Code: 401, Message: "invalid api key"} }
func newInvoker(c Client) *Invoker {
	return NewInvoker(c,
		WithVariants([]Variant{VariantPro, VariantFlash}),
		WithBackoff(time.Millisecond),
	)
}

func TestInvokerQuotaFallsBackExactlyOnce(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: quotaErr()},
		{text: `{"ok":true}`},
	}}
	inv := newInvoker(client)

	raw, trace, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("raw = %s", raw)
	}
	if len(client.calls) != 2 || client.calls[0].variant != VariantPro || client.calls[1].variant != VariantFlash {
		t.Errorf("calls = %+v, want pro then flash", client.calls)
	}
	if len(trace.Attempts) != 2 || trace.Attempts[0].Class != "quota" {
		t.Errorf("trace = %+v", trace)
	}
}

func TestInvokerNoLoopBackAfterChainExhausted(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: quotaErr()},
		{err: quotaErr()},
	}}
	inv := newInvoker(client)

	_, _, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	var exhausted *ErrVariantsExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ErrVariantsExhausted", err)
	}
	if len(client.calls) != 2 {
		t.Errorf("made %d calls, want 2 (one per variant, no loop-back)", len(client.calls))
	}
}

func TestInvokerTransientRetriesSameVariantOnce(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: serverErr()},
		{text: `{"ok":1}`},
	}}
	inv := newInvoker(client)

	_, _, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if len(client.calls) != 2 || client.calls[0].variant != client.calls[1].variant {
		t.Errorf("calls = %+v, want same variant twice", client.calls)
	}
}

func TestInvokerTransientRetryFailureFallsBack(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: serverErr()},
		{err: serverErr()},
		{text: `{"ok":1}`},
	}}
	inv := newInvoker(client)

	raw, _, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if string(raw) != `{"ok":1}` {
		t.Errorf("raw = %s", raw)
	}
	want := []scriptedCall{{VariantPro}, {VariantPro}, {VariantFlash}}
	if len(client.calls) != 3 || client.calls[0] != want[0] || client.calls[1] != want[1] || client.calls[2] != want[2] {
		t.Errorf("calls = %+v, want pro, pro, flash", client.calls)
	}
}

func TestInvokerTransientRetryExhaustsChain(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: serverErr()},
		{err: serverErr()},
		{err: serverErr()},
		{err: serverErr()},
	}}
	inv := newInvoker(client)

	_, _, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	var exhausted *ErrVariantsExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ErrVariantsExhausted", err)
	}
	if len(client.calls) != 4 {
		t.Errorf("made %d calls, want 4 (one retry per variant)", len(client.calls))
	}
}

func TestInvokerTransientRetryPermanentFailsImmediately(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: serverErr()},
		{err: authErr()},
	}}
	inv := newInvoker(client)

	_, _, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("error = %v, want *ModelError", err)
	}
	if modelErr.Class != ClassPermanent {
		t.Errorf("class = %v, want permanent", modelErr.Class)
	}
	if len(client.calls) != 2 {
		t.Errorf("made %d calls, want 2 (no fallback after permanent retry failure)", len(client.calls))
	}
}

func TestInvokerPermanentFailsImmediately(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{err: authErr()},
	}}
	inv := newInvoker(client)

	_, _, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("error = %v, want *ModelError", err)
	}
	if modelErr.Class != ClassPermanent {
		t.Errorf("class = %v, want permanent", modelErr.Class)
	}
	if len(client.calls) != 1 {
		t.Errorf("made %d calls, want 1 (no fallback on auth error)", len(client.calls))
	}
}

func TestInvokerParseFailureIsFatalForCall(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{
		{text: `{"a":1`},
		{text: `{"never":"reached"}`},
	}}
	inv := newInvoker(client)

	_, _, err := inv.GenerateJSON(context.Background(), Request{Prompt: "p"})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if len(client.calls) != 1 {
		t.Errorf("made %d calls, want 1 (malformed output must not trigger fallback)", len(client.calls))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{name: "429", err: quotaErr(), want: ClassQuota},
		{name: "503", err: serverErr(), want: ClassTransient},
		{name: "401", err: authErr(), want: ClassPermanent},
		{name: "400", err: &googleapi.Error{Code: 400}, want: ClassPermanent},
		{name: "deadline", err: context.DeadlineExceeded, want: ClassTransient},
		{name: "quota string", err: errors.New("googleapi: RESOURCE_EXHAUSTED"), want: ClassQuota},
		{name: "unknown", err: errors.New("something odd"), want: ClassTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	}, 5, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("RetryWithBackoff() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoffNonRetryable(t *testing.T) {
	attempts := 0
	fatal := errors.New("fatal")
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return fatal
	}, 5, time.Millisecond, func(err error) bool { return false })
	if !errors.Is(err, fatal) {
		t.Fatalf("error = %v, want fatal", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
