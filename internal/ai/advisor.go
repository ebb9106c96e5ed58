package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	advisorSystemInstruction = "You are an AI career and funding advisor. Your goal is to help users understand why an opportunity fits their profile and how to win it."

	// AdvisorFallback is returned whenever the model cannot be reached or
	// answers with nothing.
	AdvisorFallback = "Unable to analyze at this moment. Please try again later."
)

// Advisor explains why an opportunity fits a user profile.
type Advisor struct {
	Generator Generator
	Model     string
	log       *logrus.Entry
}

func NewAdvisor(gen Generator, model string, logger *logrus.Logger) *Advisor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Advisor{
		Generator: gen,
		Model:     model,
		log:       logger.WithField("component", "advisor"),
	}
}

// AnalyzeMatch never fails: errors are logged and replaced by AdvisorFallback.
func (a *Advisor) AnalyzeMatch(ctx context.Context, opportunityTitle, bio string) string {
	if a.Generator == nil {
		return AdvisorFallback
	}

	prompt := fmt.Sprintf("User Profile: %s\nOpportunity: %s\n\nExplain why this is a good match and provide 3 tips to improve the application. Keep it concise.", bio, opportunityTitle)

	resp, err := a.Generator.Generate(ctx, Request{
		Model:             a.Model,
		Prompt:            prompt,
		SystemInstruction: advisorSystemInstruction,
	})
	if err != nil {
		a.log.WithError(err).WithField("opportunity", opportunityTitle).Warn("match analysis failed")
		return AdvisorFallback
	}
	if strings.TrimSpace(resp.Text) == "" {
		return AdvisorFallback
	}
	return resp.Text
}
