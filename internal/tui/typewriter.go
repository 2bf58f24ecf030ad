package tui

import "time"

const (
	LetterDelay = 100 * time.Millisecond
	WordPause   = 2 * time.Second
)

// DefaultRoles are cycled in the header.
var DefaultRoles = []string{"AIML Engineer", "Data Scientist", "Problem Solver", "Creative Thinker"}

// Typewriter reveals one word a letter at a time, pauses, then moves on to the
// next word, wrapping after the last.
type Typewriter struct {
	words []string
	word  int
	index int
}

func NewTypewriter(words ...string) *Typewriter {
	if len(words) == 0 {
		words = DefaultRoles
	}
	return &Typewriter{words: words}
}

// Step reveals one more letter and returns the visible text along with how
// long to wait before the next step.
func (t *Typewriter) Step() (string, time.Duration) {
	if t.word >= len(t.words) {
		t.word = 0
	}
	current := []rune(t.words[t.word])
	t.index++
	if t.index > len(current) {
		t.index = len(current)
	}
	text := string(current[:t.index])
	if t.index == len(current) {
		t.word++
		t.index = 0
		return text, WordPause
	}
	return text, LetterDelay
}
