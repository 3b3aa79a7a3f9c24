package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"greeter/internal/domain/entity"
	"greeter/internal/domain/repository"
	"greeter/internal/infrastructure/metrics"
)

type MessageUsecase interface {
	GenerateMessage(ctx context.Context, rawDays string) (entity.Message, error)
	Configured() bool
}

var _ MessageUsecase = (*MessageService)(nil)

// MessageService turns a day count into a generated friendship message.
// A nil generator means the backend is not configured; every call then
// fails without contacting the provider.
type MessageService struct {
	prompts   *entity.PromptStore
	generator repository.TextGenerator
	pick      entity.IndexPicker
	logger    *slog.Logger
}

func NewMessageService(
	prompts *entity.PromptStore,
	generator repository.TextGenerator,
	pick entity.IndexPicker,
	logger *slog.Logger,
) *MessageService {
	if pick == nil {
		pick = rand.IntN
	}
	return &MessageService{
		prompts:   prompts,
		generator: generator,
		pick:      pick,
		logger:    logger,
	}
}

func (s *MessageService) Configured() bool {
	return s.generator != nil
}

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped logger, e.g. one carrying the
// request id.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func (s *MessageService) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return s.logger
}

// ParseDays accepts a base-10, non-negative integer.
func ParseDays(raw string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, entity.ErrInvalidDays(err)
	}
	if days < 0 {
		return 0, entity.ErrInvalidDays(errors.New("days must not be negative"))
	}
	return days, nil
}

func (s *MessageService) GenerateMessage(ctx context.Context, rawDays string) (entity.Message, error) {
	logger := s.loggerFor(ctx)

	if !s.Configured() {
		logger.Error("gemini client not initialized")
		metrics.IncMessageOutcome(metrics.OutcomeUnavailable)
		return entity.Message{}, entity.ErrNotConfigured()
	}

	days, err := ParseDays(rawDays)
	if err != nil {
		logger.Error("invalid or missing days query parameter", "days", rawDays)
		metrics.IncMessageOutcome(metrics.OutcomeInvalid)
		return entity.Message{}, err
	}
	logger.Info("received days of friendship", "days", days)

	idx, prompt, err := s.prompts.Pick(s.pick)
	if err != nil {
		metrics.IncError("usecase", "pick_prompt")
		metrics.IncMessageOutcome(metrics.OutcomeFailed)
		return entity.Message{}, entity.ErrInternal(err)
	}
	metrics.IncPromptSelection(idx)

	req := entity.NewGenerationRequest(days, prompt)
	logger.Info("sending prompt to model",
		"model", s.generator.Model(),
		"prompt_id", req.PromptID,
		"prompt", req.Prompt,
		"temperature", req.Temperature,
	)

	start := time.Now()
	gen, err := s.generator.GenerateText(ctx, req)
	if err != nil {
		derr := entity.AsError(err)
		logger.Error("model call failed", "err", err, "status", derr.Status, "kind", derr.Kind)
		metrics.IncMessageOutcome(metrics.OutcomeFailed)
		return entity.Message{}, derr
	}
	logger.Info("model call completed", "duration", time.Since(start))

	text, err := interpret(gen, logger)
	if err != nil {
		var derr *entity.Error
		if errors.As(err, &derr) && derr.Kind == entity.KindGenerationBlocked {
			metrics.IncMessageOutcome(metrics.OutcomeBlocked)
		} else {
			metrics.IncMessageOutcome(metrics.OutcomeFailed)
		}
		return entity.Message{}, err
	}

	logger.Info("generated message", "message", text)
	metrics.IncMessageOutcome(metrics.OutcomeSucceeded)
	return entity.Message{Message: text}, nil
}

// interpret decides whether an upstream result carries usable text.
// Block reason precedence: prompt feedback, then a non-STOP finish reason,
// then the generic default.
func interpret(gen *entity.Generation, logger *slog.Logger) (string, error) {
	if gen == nil {
		logger.Error("no response object received from model")
		return "", entity.ErrInternal(errors.New("empty response object from model"))
	}

	cand := gen.FirstCandidate()
	if cand != nil && len(cand.Parts) > 0 {
		return gen.Text(), nil
	}

	reason := entity.DefaultBlockedReason
	var ratings []entity.SafetyRating
	switch {
	case gen.BlockReason != "":
		reason = gen.BlockReason
	case cand != nil && cand.FinishReason != "" && cand.FinishReason != entity.FinishReasonStop:
		reason = "Generation stopped: " + cand.FinishReason
		ratings = cand.SafetyRatings
	}

	attrs := []any{"reason", reason}
	if ratings != nil {
		attrs = append(attrs, "safety_ratings", ratings)
	}
	logger.Error("content generation blocked or failed", attrs...)
	metrics.IncLLMBlocked(reason)

	return "", entity.ErrBlocked(reason)
}
