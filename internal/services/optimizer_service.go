package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/Deepanshv/resume-optimizer/internal/validation"
)

const optimizationPrompt = `
You are an expert Resume Optimization Agent. Your task is to tailor the provided base resume to the provided job description.

### INSTRUCTIONS:
1. **Analyze** the job description for required skills, keywords, and seniority.
2. **Rewrite** the resume to emphasize matching experience. Never invent experience the candidate does not have.
3. **Summarize** every change you made and why.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "optimizedResume": "The full rewritten resume as plain text",
    "changesSummary": "A concise explanation of what was changed and why"
}

### BASE RESUME:
%s

### JOB DESCRIPTION:
%s
`

// generateFunc is the seam for the external generation call, swapped in tests.
type generateFunc func(ctx context.Context, model llms.Model, prompt string, opts ...llms.CallOption) (string, error)

// OptimizerService owns the Gemini client and the optimize pipeline: pre-call
// input validation, the generation call, and response validation. It returns
// tagged *validation.Error values only; nothing here panics past the boundary.
type OptimizerService struct {
	client   llms.Model
	generate generateFunc
	timeout  time.Duration
	log      zerolog.Logger
}

// NewOptimizerService initializes the Gemini client. A missing API key is a
// configuration error reported on every optimize call rather than a crash: the
// rest of the service keeps working without it.
func NewOptimizerService(ctx context.Context, apiKey string, log zerolog.Logger) (*OptimizerService, error) {
	svc := &OptimizerService{
		generate: llms.GenerateFromSinglePrompt,
		timeout:  60 * time.Second,
		log:      log.With().Str("component", "optimizer").Logger(),
	}
	if apiKey == "" {
		svc.log.Warn().Msg("GEMINI_API_KEY is empty, optimization disabled")
		return svc, nil
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel("gemini-2.5-flash"),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	svc.client = client
	return svc, nil
}

// Optimize runs the full pipeline for one job. Input checks run before any
// external call so bad input never spends an API request. The external call
// itself is never retried here.
func (s *OptimizerService) Optimize(ctx context.Context, baseResume, jobDescription string) (*validation.OptimizationResult, error) {
	if err := validation.ValidateInputs(baseResume, jobDescription); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, &validation.Error{
			Kind:    validation.KindMissingAPIKey,
			Message: "optimization service is not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(optimizationPrompt, baseResume, jobDescription)
	raw, err := s.generate(ctx, s.client, prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("generation call failed")
		return nil, &validation.Error{
			Kind:    validation.KindGenerationFailed,
			Message: "AI generation call failed",
		}
	}

	result, err := validation.Validate(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("AI response rejected")
		return nil, err
	}
	return result, nil
}
