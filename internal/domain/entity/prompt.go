package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// DaysPlaceholder is replaced by the day count when a prompt is rendered.
const DaysPlaceholder = "__DAYS__"

type Prompt struct {
	ID   string
	Text string
}

// Render returns the prompt text with every placeholder replaced by days.
func (p Prompt) Render(days int) string {
	return strings.ReplaceAll(p.Text, DaysPlaceholder, strconv.Itoa(days))
}

// IndexPicker returns an index in [0, n). math/rand/v2.IntN satisfies it.
type IndexPicker func(n int) int

// PromptStore is a fixed ordered set of prompt templates. It is never
// modified after construction, so it is safe for concurrent readers.
type PromptStore struct {
	prompts []Prompt
}

func NewPromptStore(texts []string) (*PromptStore, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("prompt store needs at least one template")
	}
	prompts := make([]Prompt, 0, len(texts))
	for i, text := range texts {
		if !strings.Contains(text, DaysPlaceholder) {
			return nil, fmt.Errorf("template %d has no %s placeholder", i, DaysPlaceholder)
		}
		prompts = append(prompts, Prompt{
			ID:   fmt.Sprintf("friendship-%02d", i+1),
			Text: text,
		})
	}
	return &PromptStore{prompts: prompts}, nil
}

// MustPromptStore is like NewPromptStore but panics on invalid templates.
func MustPromptStore(texts []string) *PromptStore {
	s, err := NewPromptStore(texts)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *PromptStore) Count() int {
	return len(s.prompts)
}

func (s *PromptStore) Get(index int) (Prompt, error) {
	if index < 0 || index >= len(s.prompts) {
		return Prompt{}, fmt.Errorf("prompt index %d out of range [0, %d)", index, len(s.prompts))
	}
	return s.prompts[index], nil
}

// Pick selects a prompt with the given picker. A picker returning an
// out-of-range index is a programming error and results in an error.
func (s *PromptStore) Pick(pick IndexPicker) (int, Prompt, error) {
	idx := pick(len(s.prompts))
	p, err := s.Get(idx)
	if err != nil {
		return idx, Prompt{}, err
	}
	return idx, p, nil
}

// FriendshipPrompts holds the message templates, grouped by tone in blocks
// of ten: heartfelt, poetic, playful, future-focused, memory-based.
var FriendshipPrompts = []string{
	"Generate a concise (3-4 sentences) heartfelt message for my best friend Abhilasha, celebrating __DAYS__ days of friendship (since Sep 16, 2024). Mention how much her support means.",
	"Write a warm note for Abhilasha for __DAYS__ days of friendship. Focus on gratitude for her presence in my life. Keep it short and sincere.",
	"Craft a message for Abhilasha appreciating __DAYS__ days of true friendship. Mention a specific quality you admire in her (e.g., kindness, strength, humor). Concise (3-4 sentences).",
	"__DAYS__ days with my amazing friend Abhilasha! Write a short message expressing how lucky I feel to have her. Keep it warm and genuine.",
	"Generate a message for Abhilasha celebrating __DAYS__ days. Focus on the comfort and ease of your friendship. Keep it concise and loving.",
	"Write a short appreciation message for Abhilasha (__DAYS__ days). Mention how she makes the world brighter or better.",
	"__DAYS__ days of friendship! Create a message for Abhilasha thanking her for always being there. Keep it heartfelt and brief (3-4 sentences).",
	"Generate a warm message for Abhilasha about __DAYS__ days of connection. Mention the value of your bond.",
	"Craft a concise note for Abhilasha celebrating __DAYS__ days. Express simple, genuine appreciation for who she is.",
	"Write a message for Abhilasha about __DAYS__ days of friendship. Mention how much you cherish the connection. (3-4 sentences).",
	"Generate a short, slightly poetic message for Abhilasha about __DAYS__ days of friendship. Use a metaphor like sunshine, anchor, or music.",
	"Write a reflective note for Abhilasha on __DAYS__ days together. Mention the beauty of the journey so far. Concise (3-4 sentences).",
	"Craft a poetic message for Abhilasha celebrating __DAYS__ days. Focus on her inner beauty or spirit. Keep it brief and warm.",
	"__DAYS__ days of friendship! Write a message for Abhilasha comparing her laugh or smile to something beautiful (stars, melody). Keep it concise.",
	"Generate a message for Abhilasha about the 'color' she brings to life after __DAYS__ days of friendship. Keep it short and artistic.",
	"Write a concise (3-4 sentences) message for Abhilasha using nature imagery (seasons, ocean) to describe __DAYS__ days of friendship.",
	"Reflecting on __DAYS__ days with Abhilasha. Write a short message about the quiet magic of your bond.",
	"Craft a brief, poetic message for Abhilasha celebrating __DAYS__ days. Focus on the feeling of 'home' or belonging in the friendship.",
	"Generate a message for Abhilasha for __DAYS__ days, describing her with an appreciative, slightly poetic adjective (e.g., radiant, steadfast).",
	"Write a short, reflective message for Abhilasha about the shared story you're writing together over __DAYS__ days.",
	"__DAYS__ days of fun with my bestie Abhilasha! Generate a lighthearted message celebrating our adventures. Keep it concise (3-4 sentences) and cheerful.",
	"Write a fun message for Abhilasha marking __DAYS__ days of friendship. Mention how she makes even boring moments fun.",
	"Craft a slightly cheeky but loving message for Abhilasha (__DAYS__ days). Maybe hint at an inside joke concept (without specifics). Keep it short.",
	"Happy __DAYS__ days to my partner-in-crime, Abhilasha! Write a fun, short message celebrating the mischief.",
	"Generate a playful message for Abhilasha about surviving __DAYS__ days of each other's weirdness. Keep it affectionate and brief.",
	"Write a message for Abhilasha celebrating __DAYS__ days and how much you laugh together. Keep it concise and happy.",
	"__DAYS__ days! Craft a message for Abhilasha telling her she's still your favorite person to be silly with. (3-4 sentences).",
	"Generate a fun message for Abhilasha celebrating __DAYS__ days. Mention a shared interest or quirky habit. Keep it light.",
	"Write a short, upbeat message for Abhilasha about __DAYS__ days of friendship. Mention looking forward to more laughs.",
	"Craft a fun appreciation note for Abhilasha (__DAYS__ days). Tell her she's awesome in a playful way. (3-4 sentences).",
	"Generate a concise message (3-4 sentences) for Abhilasha celebrating __DAYS__ days and looking forward to many more adventures together.",
	"Write a hopeful message for Abhilasha about __DAYS__ days of friendship and the amazing future ahead for her/both of you.",
	"__DAYS__ days down, a lifetime of friendship to go! Craft a short, excited message for Abhilasha about future plans or dreams.",
	"Generate a message for Abhilasha celebrating __DAYS__ days. Express excitement for seeing her achieve her goals.",
	"Write an encouraging note for Abhilasha (__DAYS__ days). Tell her you're always cheering her on. Keep it brief and supportive.",
	"Craft a message for Abhilasha about __DAYS__ days, focusing on growing together and supporting each other's journeys. (3-4 sentences).",
	"Generate a message for Abhilasha celebrating __DAYS__ days, saying you can't wait to see what the next chapter holds for your friendship.",
	"Write a forward-looking message for Abhilasha (__DAYS__ days). Mention a specific shared hope or goal.",
	"__DAYS__ days of friendship! Create a short message for Abhilasha about building more amazing memories together.",
	"Generate a concise, supportive message for Abhilasha (__DAYS__ days). Wish her success and happiness in her endeavors.",
	"Remember that time...? Generate a short message for Abhilasha referencing the fun of shared memories over __DAYS__ days.",
	"Write a simple message for Abhilasha: 'Happy __DAYS__ days of friendship! So glad we're friends.' Keep it direct and sweet.",
	"Craft a message for Abhilasha celebrating __DAYS__ days. Mention one small, everyday thing you appreciate about the friendship. (3-4 sentences).",
	"__DAYS__ days! Generate a simple, warm message for Abhilasha just saying hello and celebrating the milestone.",
	"Write a brief note for Abhilasha: '__DAYS__ days of knowing you - lucky me! Thinking of you.'",
	"Generate a concise message for Abhilasha celebrating __DAYS__ days. Focus on a feeling the friendship inspires (e.g., joy, comfort).",
	"Happy __DAYS__ days, Abhilasha! Write a super short message just celebrating this.",
	"Craft a simple message for Abhilasha (__DAYS__ days): 'Here's to our awesome friendship!'",
	"Generate a quick message for Abhilasha: '__DAYS__ days and counting! Cheers to us.'",
	"Write a very short message for Abhilasha celebrating __DAYS__ days: 'Amazing friend, amazing __DAYS__ days!'",
}

var DefaultPromptStore = MustPromptStore(FriendshipPrompts)
