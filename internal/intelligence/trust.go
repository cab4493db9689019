package intelligence

import (
	"context"
	"fmt"
)

// Trust scoring weights. The score is a deterministic weighted sum so
// identical inputs always reproduce the same assessment.
const (
	weightEngagement   = 0.4
	weightCompleteness = 0.3
	weightConfidence   = 0.2
	weightSentiment    = 0.1
)

// Badge thresholds.
const (
	badgeHighlyTrusted     = "Highly Trusted"
	badgeModeratelyTrusted = "Moderately Trusted"
	badgeNeedsVerification = "Needs Verification"
	badgeLowTrust          = "Low Trust"
)

// TrustInputs are the observable signals feeding the score.
type TrustInputs struct {
	Likes          int64
	Views          int64
	HasTranscript  bool
	HasDescription bool
	KeyframeCount  int
	Confidence     float64
	Sentiment      string
}

// TrustScore computes the 0-100 reliability score and its reasoning. Pure
// function of its inputs.
func TrustScore(in TrustInputs) TrustAssessment {
	engagement := 0.0
	if in.Views > 0 {
		engagement = float64(in.Likes) / float64(in.Views)
		if engagement > 1 {
			engagement = 1
		}
	}

	present := 0
	if in.HasTranscript {
		present++
	}
	if in.HasDescription {
		present++
	}
	if in.KeyframeCount > 0 {
		present++
	}
	completeness := float64(present) / 3

	confidence := in.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	var sentimentBonus float64
	switch in.Sentiment {
	case "positive":
		sentimentBonus = 1.0
	case "negative":
		sentimentBonus = 0.0
	default:
		sentimentBonus = 0.5
	}

	score := (weightEngagement*engagement +
		weightCompleteness*completeness +
		weightConfidence*confidence +
		weightSentiment*sentimentBonus) * 100

	reasoning := fmt.Sprintf(
		"Engagement rate %.3f, content completeness %d/3, extraction confidence %.2f, sentiment %s.",
		engagement, present, confidence, in.Sentiment,
	)

	return TrustAssessment{
		Score:     score,
		Reasoning: reasoning,
		Badge:     Badge(score),
	}
}

// Badge maps a score to its display tier.
func Badge(score float64) string {
	switch {
	case score >= 80:
		return badgeHighlyTrusted
	case score >= 60:
		return badgeModeratelyTrusted
	case score >= 40:
		return badgeNeedsVerification
	default:
		return badgeLowTrust
	}
}

// scoreTrust runs the trust stage over accumulated context/understanding.
func scoreTrust() Stage {
	return func(_ context.Context, acc *Accumulator) {
		acc.Trust = TrustScore(TrustInputs{
			Likes:          acc.Context.Metrics.Likes,
			Views:          acc.Context.Metrics.Views,
			HasTranscript:  acc.Context.Transcript != "",
			HasDescription: acc.Context.Description != "",
			KeyframeCount:  acc.Context.KeyframeCount,
			Confidence:     acc.Context.Confidence,
			Sentiment:      acc.Understanding.Sentiment,
		})
	}
}
