package entity

import "strings"

// DefaultTemperature biases the model toward more varied phrasing.
const DefaultTemperature float32 = 0.9

// FinishReasonStop is the only finish reason treated as a normal completion.
const FinishReasonStop = "STOP"

type GenerationRequest struct {
	Days        int     `json:"days"`
	PromptID    string  `json:"prompt_id"`
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
}

func NewGenerationRequest(days int, prompt Prompt) GenerationRequest {
	return GenerationRequest{
		Days:        days,
		PromptID:    prompt.ID,
		Prompt:      prompt.Render(days),
		Temperature: DefaultTemperature,
	}
}

type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Blocked     bool   `json:"blocked,omitempty"`
}

type Candidate struct {
	Parts         []string       `json:"parts"`
	FinishReason  string         `json:"finish_reason,omitempty"`
	SafetyRatings []SafetyRating `json:"safety_ratings,omitempty"`
}

// Generation is the upstream result as seen by the usecase layer.
// BlockReason comes from the prompt feedback and is empty when the prompt
// was accepted.
type Generation struct {
	Candidates  []Candidate `json:"candidates"`
	BlockReason string      `json:"block_reason,omitempty"`
	Model       string      `json:"model,omitempty"`
}

// FirstCandidate returns nil when the upstream produced no candidates.
func (g *Generation) FirstCandidate() *Candidate {
	if g == nil || len(g.Candidates) == 0 {
		return nil
	}
	return &g.Candidates[0]
}

// Text joins the text parts of the first candidate.
func (g *Generation) Text() string {
	c := g.FirstCandidate()
	if c == nil {
		return ""
	}
	return strings.Join(c.Parts, "")
}

type Message struct {
	Message string `json:"message"`
}
