package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"greeter/internal/domain/entity"
	"greeter/internal/domain/repository"
	"greeter/internal/infrastructure/metrics"
)

const DefaultModel = "gemini-1.5-flash"

var ErrMissingAPIKey = errors.New("gemini api key is not set")

// generateFunc performs one generateContent call.
type generateFunc func(ctx context.Context, model string, temperature float32, prompt string) (*genai.GenerateContentResponse, error)

type GeminiGenerator struct {
	model    string
	timeout  time.Duration
	generate generateFunc
	logger   *slog.Logger
}

var _ repository.TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiClient creates the SDK client. The caller owns it and must Close it.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

func NewGeminiGenerator(client *genai.Client, model string, timeout time.Duration, logger *slog.Logger) *GeminiGenerator {
	return newGeminiGenerator(model, timeout, logger, func(ctx context.Context, model string, temperature float32, prompt string) (*genai.GenerateContentResponse, error) {
		// GenerativeModel holds per-call settings; a fresh one per request
		// keeps concurrent requests from sharing it.
		m := client.GenerativeModel(model)
		m.SetTemperature(temperature)
		return m.GenerateContent(ctx, genai.Text(prompt))
	})
}

func newGeminiGenerator(model string, timeout time.Duration, logger *slog.Logger, fn generateFunc) *GeminiGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{
		model:    model,
		timeout:  timeout,
		generate: fn,
		logger:   logger,
	}
}

func (g *GeminiGenerator) Model() string {
	return g.model
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, req entity.GenerationRequest) (*entity.Generation, error) {
	metrics.IncLLMRequest(g.model)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.generate(ctx, g.model, req.Temperature, req.Prompt)
	metrics.ObserveLLMDuration(g.model, time.Since(start))

	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			g.logger.Debug("gemini withheld content", "model", g.model, "err", err)
			return fromBlockedError(g.model, blocked), nil
		}
		return nil, g.classifyError(err)
	}
	if resp == nil {
		return nil, nil
	}

	return toGeneration(g.model, resp), nil
}

func (g *GeminiGenerator) classifyError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		metrics.IncError("llm", "canceled")
		return fmt.Errorf("gemini request canceled: %w", err)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.IncError("llm", "timeout")
		return &entity.ProviderError{
			Status:  http.StatusGatewayTimeout,
			Message: fmt.Sprintf("AI service did not respond within %s.", g.timeout),
			Err:     err,
		}
	}

	pe := &entity.ProviderError{Message: err.Error(), Err: err}

	var gerr *googleapi.Error
	var aerr *apierror.APIError
	switch {
	case errors.As(err, &gerr):
		pe.Status = gerr.Code
		if gerr.Message != "" {
			pe.Message = gerr.Message
		}
	case errors.As(err, &aerr):
		if code := aerr.HTTPCode(); code > 0 {
			pe.Status = code
		}
	}

	metrics.IncError("llm", fmt.Sprintf("api_error_%d", pe.Status))
	return pe
}

func toGeneration(model string, resp *genai.GenerateContentResponse) *entity.Generation {
	gen := &entity.Generation{Model: model}
	if resp.PromptFeedback != nil {
		gen.BlockReason = blockReason(resp.PromptFeedback.BlockReason)
	}
	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		gen.Candidates = append(gen.Candidates, toCandidate(c, true))
	}
	return gen
}

// fromBlockedError keeps the metadata of a blocked response but never its
// content, so the usecase always sees it as withheld.
func fromBlockedError(model string, be *genai.BlockedError) *entity.Generation {
	gen := &entity.Generation{Model: model}
	if be.PromptFeedback != nil {
		gen.BlockReason = blockReason(be.PromptFeedback.BlockReason)
	}
	if be.Candidate != nil {
		gen.Candidates = []entity.Candidate{toCandidate(be.Candidate, false)}
	}
	return gen
}

func toCandidate(c *genai.Candidate, withParts bool) entity.Candidate {
	out := entity.Candidate{}
	if c.FinishReason != genai.FinishReasonUnspecified {
		out.FinishReason = enumName(c.FinishReason.String(), "FinishReason")
	}
	for _, r := range c.SafetyRatings {
		if r == nil {
			continue
		}
		out.SafetyRatings = append(out.SafetyRatings, entity.SafetyRating{
			Category:    enumName(r.Category.String(), ""),
			Probability: enumName(r.Probability.String(), "HarmProbability"),
			Blocked:     r.Blocked,
		})
	}
	if withParts && c.Content != nil {
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				out.Parts = append(out.Parts, string(t))
			}
		}
	}
	return out
}

func blockReason(r genai.BlockReason) string {
	if r == genai.BlockReasonUnspecified {
		return ""
	}
	return enumName(r.String(), "BlockReason")
}

// enumName turns an SDK enum name such as "FinishReasonMaxTokens" into the
// API wire form "MAX_TOKENS".
func enumName(name, prefix string) string {
	name = strings.TrimPrefix(name, prefix)
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
