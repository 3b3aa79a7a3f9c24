package entity

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   ErrorKind
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid days",
			err:        ErrInvalidDays(errors.New("bad")),
			wantKind:   KindInvalidArgument,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Days parameter is required and must be a number.",
		},
		{
			name:       "not configured",
			err:        ErrNotConfigured(),
			wantKind:   KindServiceUnavailable,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Backend AI service not configured.",
		},
		{
			name:       "wrapped blocked",
			err:        fmt.Errorf("generate: %w", ErrBlocked("SAFETY")),
			wantKind:   KindGenerationBlocked,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Message generation failed: SAFETY",
		},
		{
			name:       "blocked without reason",
			err:        ErrBlocked(""),
			wantKind:   KindGenerationBlocked,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Message generation failed: Blocked or empty content",
		},
		{
			name:       "provider with status",
			err:        fmt.Errorf("call: %w", &ProviderError{Status: 429, Message: "quota exceeded"}),
			wantKind:   KindUpstream,
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "quota exceeded",
		},
		{
			name:       "provider without status",
			err:        &ProviderError{Message: "connection reset"},
			wantKind:   KindUpstream,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "connection reset",
		},
		{
			name:       "provider without message",
			err:        &ProviderError{Status: 503},
			wantKind:   KindUpstream,
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "AI service request failed.",
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantKind:   KindInternal,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to process request due to an internal server error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsError(tt.err)
			if got.Kind != tt.wantKind || got.Status != tt.wantStatus || got.Message != tt.wantMsg {
				t.Fatalf("AsError() = {%s %d %q}, want {%s %d %q}",
					got.Kind, got.Status, got.Message, tt.wantKind, tt.wantStatus, tt.wantMsg)
			}
		})
	}

	if AsError(nil) != nil {
		t.Fatal("AsError(nil) should be nil")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := ErrInternal(cause)
	if !errors.Is(err, cause) {
		t.Fatal("ErrInternal should wrap its cause")
	}

	pe := &ProviderError{Status: 500, Message: "x", Err: cause}
	if !errors.Is(ErrUpstream(pe), cause) {
		t.Fatal("upstream error should wrap the provider error chain")
	}
}

func TestGenerationText(t *testing.T) {
	var nilGen *Generation
	if nilGen.FirstCandidate() != nil || nilGen.Text() != "" {
		t.Fatal("nil generation should have no candidate")
	}
	g := &Generation{Candidates: []Candidate{{Parts: []string{"Hel", "lo!"}}, {Parts: []string{"other"}}}}
	if got := g.Text(); got != "Hello!" {
		t.Fatalf("Text() = %q", got)
	}
}
