package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"greeter/internal/domain/entity"
	"greeter/internal/domain/repository"
	"greeter/internal/infrastructure/metrics"
)

type stubGenerator struct {
	gen   *entity.Generation
	err   error
	echo  bool
	calls int
	last  entity.GenerationRequest
}

func (s *stubGenerator) GenerateText(_ context.Context, req entity.GenerationRequest) (*entity.Generation, error) {
	s.calls++
	s.last = req
	if s.echo {
		return &entity.Generation{Candidates: []entity.Candidate{{Parts: []string{req.Prompt}, FinishReason: "STOP"}}}, nil
	}
	return s.gen, s.err
}

func (s *stubGenerator) Model() string { return "stub-model" }

func newTestService(gen repository.TextGenerator, pick entity.IndexPicker) (*MessageService, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewMessageService(entity.DefaultPromptStore, gen, pick, logger), &buf
}

func sequence(idx ...int) entity.IndexPicker {
	i := 0
	return func(n int) int {
		v := idx[i%len(idx)]
		i++
		return v
	}
}

func requireError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var derr *entity.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *entity.Error, got %T: %v", err, err)
	}
	if derr.Status != status || derr.Message != msg {
		t.Fatalf("got {%d %q}, want {%d %q}", derr.Status, derr.Message, status, msg)
	}
}

func TestGenerateMessageEchoesRenderedPrompt(t *testing.T) {
	stub := &stubGenerator{echo: true}
	svc, _ := newTestService(stub, nil)

	for _, d := range []int{0, 1, 9, 30, 100, 365, 999999} {
		msg, err := svc.GenerateMessage(context.Background(), strconv.Itoa(d))
		if err != nil {
			t.Fatalf("days=%d: %v", d, err)
		}
		if !strings.Contains(msg.Message, strconv.Itoa(d)) {
			t.Fatalf("days=%d: prompt %q lacks day count", d, msg.Message)
		}
		if strings.Contains(msg.Message, entity.DaysPlaceholder) {
			t.Fatalf("days=%d: prompt %q still has placeholder", d, msg.Message)
		}
		if stub.last.Temperature != 0.9 {
			t.Fatalf("temperature = %v", stub.last.Temperature)
		}
	}
}

func TestGenerateMessageUsesInjectedPicker(t *testing.T) {
	stub := &stubGenerator{echo: true}
	svc, _ := newTestService(stub, sequence(3, 49))

	for _, idx := range []int{3, 49} {
		if _, err := svc.GenerateMessage(context.Background(), "5"); err != nil {
			t.Fatalf("GenerateMessage: %v", err)
		}
		p, _ := entity.DefaultPromptStore.Get(idx)
		if stub.last.PromptID != p.ID || stub.last.Prompt != p.Render(5) {
			t.Fatalf("expected template %d, got %+v", idx, stub.last)
		}
	}
}

func TestGenerateMessageInvalidDays(t *testing.T) {
	for _, raw := range []string{"", "abc", "12abc", "1.5", "-3", "0x10"} {
		stub := &stubGenerator{echo: true}
		svc, _ := newTestService(stub, nil)

		_, err := svc.GenerateMessage(context.Background(), raw)
		requireError(t, err, http.StatusBadRequest, "Days parameter is required and must be a number.")
		if stub.calls != 0 {
			t.Fatalf("days=%q: generator called", raw)
		}
	}
}

func TestGenerateMessageNotConfigured(t *testing.T) {
	before := testutil.ToFloat64(metrics.MessageOutcomes.WithLabelValues(metrics.OutcomeUnavailable))
	svc, _ := newTestService(nil, nil)

	if svc.Configured() {
		t.Fatal("service without generator reports configured")
	}
	for _, raw := range []string{"", "abc", "0", "42"} {
		_, err := svc.GenerateMessage(context.Background(), raw)
		requireError(t, err, http.StatusInternalServerError, "Backend AI service not configured.")
	}

	after := testutil.ToFloat64(metrics.MessageOutcomes.WithLabelValues(metrics.OutcomeUnavailable))
	if after-before != 4 {
		t.Fatalf("unavailable outcomes grew by %v, want 4", after-before)
	}
}

func TestGenerateMessageSuccess(t *testing.T) {
	stub := &stubGenerator{gen: &entity.Generation{Candidates: []entity.Candidate{{Parts: []string{"Hello!"}, FinishReason: "STOP"}}}}
	svc, logs := newTestService(stub, nil)

	msg, err := svc.GenerateMessage(context.Background(), "7")
	if err != nil {
		t.Fatalf("GenerateMessage: %v", err)
	}
	if msg.Message != "Hello!" {
		t.Fatalf("message = %q", msg.Message)
	}
	for _, want := range []string{"received days of friendship", "sending prompt to model", "model call completed", "generated message"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("log missing %q:\n%s", want, logs.String())
		}
	}
}

func TestGenerateMessageBlocked(t *testing.T) {
	tests := []struct {
		name string
		gen  *entity.Generation
		want string
	}{
		{
			name: "no candidates",
			gen:  &entity.Generation{},
			want: "Message generation failed: Blocked or empty content",
		},
		{
			name: "empty parts with normal stop",
			gen:  &entity.Generation{Candidates: []entity.Candidate{{FinishReason: "STOP"}}},
			want: "Message generation failed: Blocked or empty content",
		},
		{
			name: "prompt feedback wins",
			gen: &entity.Generation{
				BlockReason: "SAFETY",
				Candidates:  []entity.Candidate{{FinishReason: "OTHER"}},
			},
			want: "Message generation failed: SAFETY",
		},
		{
			name: "abnormal finish reason",
			gen: &entity.Generation{Candidates: []entity.Candidate{{
				FinishReason:  "SAFETY",
				SafetyRatings: []entity.SafetyRating{{Category: "HARM_CATEGORY_HARASSMENT", Probability: "HIGH", Blocked: true}},
			}}},
			want: "Message generation failed: Generation stopped: SAFETY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.MessageOutcomes.WithLabelValues(metrics.OutcomeBlocked))
			svc, logs := newTestService(&stubGenerator{gen: tt.gen}, nil)

			_, err := svc.GenerateMessage(context.Background(), "10")
			requireError(t, err, http.StatusBadRequest, tt.want)

			if got := testutil.ToFloat64(metrics.MessageOutcomes.WithLabelValues(metrics.OutcomeBlocked)); got-before != 1 {
				t.Fatalf("blocked outcomes grew by %v", got-before)
			}
			if !strings.Contains(logs.String(), "content generation blocked or failed") {
				t.Fatalf("block not logged:\n%s", logs.String())
			}
		})
	}
}

func TestGenerateMessageUpstreamFailures(t *testing.T) {
	tests := []struct {
		name       string
		gen        *entity.Generation
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "nil result",
			wantStatus: http.StatusInternalServerError,
			wantMsg:    entity.MsgInternal,
		},
		{
			name:       "provider error with status",
			err:        &entity.ProviderError{Status: 429, Message: "Resource has been exhausted"},
			wantStatus: 429,
			wantMsg:    "Resource has been exhausted",
		},
		{
			name:       "provider error without status",
			err:        fmt.Errorf("wrapped: %w", &entity.ProviderError{Message: "dial tcp: i/o timeout"}),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "dial tcp: i/o timeout",
		},
		{
			name:       "unrelated error",
			err:        errors.New("something else"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    entity.MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{gen: tt.gen, err: tt.err}
			svc, _ := newTestService(stub, nil)

			_, err := svc.GenerateMessage(context.Background(), "3")
			requireError(t, err, tt.wantStatus, tt.wantMsg)
			if stub.calls != 1 {
				t.Fatalf("generator called %d times, want exactly 1", stub.calls)
			}
		})
	}
}

func TestContextLoggerIsUsed(t *testing.T) {
	svc, base := newTestService(&stubGenerator{echo: true}, nil)

	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc-123")
	ctx := ContextWithLogger(context.Background(), reqLogger)

	if _, err := svc.GenerateMessage(ctx, "1"); err != nil {
		t.Fatalf("GenerateMessage: %v", err)
	}
	if !strings.Contains(buf.String(), "request_id=abc-123") {
		t.Fatalf("request logger not used:\n%s", buf.String())
	}
	if base.Len() != 0 {
		t.Fatalf("base logger should be unused, got:\n%s", base.String())
	}
}

func TestParseDays(t *testing.T) {
	for raw, want := range map[string]int{"0": 0, "12": 12, " 30 ": 30, "007": 7} {
		got, err := ParseDays(raw)
		if err != nil || got != want {
			t.Fatalf("ParseDays(%q) = %d, %v; want %d", raw, got, err, want)
		}
	}
}
