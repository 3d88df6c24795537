package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/wizard"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// maxAdLength is counted in characters.
const maxAdLength = 20000

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type LLMService struct {
	Client llms.Model
}

// NewLLMService creates a Gemini backed service. Without an API key the
// prefill feature is unavailable and a ConfigurationError is returned.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, &wizard.ConfigurationError{Setting: "GEMINI_API_KEY", Message: "not set, job ad prefill is disabled"}
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const jobPostingPrompt = `
You are an expert Job Data Extraction Agent. Your task is to read a job advertisement and fill in a job posting form.

### INSTRUCTIONS:
1. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
2. **Extract** only the fields below.
3. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "jobTitle": "Job title",
    "numberOfPositions": 1,
    "jobType": "one of full-time, part-time, contract, internship, freelance",
    "workLocation": "City or 'Remote'",
    "salaryMin": 0,
    "salaryMax": 0,
    "gender": "one of male, female, any",
    "lastEducation": "one of SD, SMP, SMA, SMK, D1, D2, D3, D4, S1, S2, S3",
    "minExperienceYears": 0,
    "ageRange": {"min": 18, "max": 35},
    "expectedCharacter": ["Array", "of", "traits"],
    "contactEmail": "email",
    "contactPhone": "phone number",
    "additionalNotes": "Responsibilities and benefits as plain text"
}

### CONSTRAINT:
If a piece of information is missing, leave the key out. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobPosting turns a pasted job ad into job-posting wizard state. Keys
// that do not belong to any posting step are dropped.
func (s *LLMService) ExtractJobPosting(ctx context.Context, rawAd string) (wizard.FormState, error) {
	rawAd = truncateRunes(rawAd, maxAdLength)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobPostingPrompt, rawAd))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &raw); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	flow := flows.JobPostingFlow
	out := wizard.FormState{}
	for id := 1; id <= flow.TotalSteps(); id++ {
		out.Merge(flow.Accept(id, raw))
	}
	return out, nil
}

// stripCodeFence removes a ```json fence models add despite being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
