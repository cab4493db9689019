package intelligence

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/metrics"
)

// Chain runs the ordered intelligence stages over a stored document.
type Chain struct {
	cache    *docs.Cache
	invoker  *llm.Invoker
	resolver *metrics.Resolver
	logger   *slog.Logger
}

// NewChain assembles the chain.
func NewChain(cache *docs.Cache, invoker *llm.Invoker, resolver *metrics.Resolver, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		cache:    cache,
		invoker:  invoker,
		resolver: resolver,
		logger:   logger.With("component", "intelligence"),
	}
}

// Generate produces an IntelligenceObject for a stored document. Only a
// missing document is an error; stage failures degrade the object and land
// in its processing_errors.
func (c *Chain) Generate(ctx context.Context, documentID string) (IntelligenceObject, error) {
	doc, err := c.cache.Get(ctx, documentID)
	if err != nil {
		return IntelligenceObject{}, err
	}

	acc := &Accumulator{Document: doc}
	stages := []Stage{
		contextBuilder(c.resolver),
		understandContent(c.invoker),
		scoreTrust(),
		enrichByType(),
	}
	for _, stage := range stages {
		stage(ctx, acc)
	}

	obj := assemble(acc)
	c.logger.Info("intelligence generated",
		"document_id", documentID,
		"trust_score", obj.Trust.Score,
		"errors", len(obj.Errors),
	)
	return obj, nil
}

// assemble is the final stage: it merges the accumulator into the immutable
// output object.
func assemble(acc *Accumulator) IntelligenceObject {
	uris := make([]string, 0, len(acc.Document.Keyframes))
	for _, kf := range acc.Document.Keyframes {
		uris = append(uris, kf.URI)
	}

	return IntelligenceObject{
		Metadata: Metadata{
			DocumentID:    acc.Document.ID,
			CorrelationID: acc.Document.CorrelationID,
			GeneratedAt:   time.Now().UTC(),
			AgentVersion:  AgentVersion,
		},
		ReelContext:   acc.Context,
		Understanding: acc.Understanding,
		Trust:         acc.Trust,
		Enrichment:    acc.Enrichment,
		Keyframes: KeyframeSummary{
			Count: len(acc.Document.Keyframes),
			URIs:  uris,
		},
		Errors: acc.Errors,
	}
}
