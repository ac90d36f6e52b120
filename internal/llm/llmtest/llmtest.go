// Package llmtest provides a scripted llm.Completer for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one Complete invocation.
type Call struct {
	Prompt    string
	MaxTokens int
}

type rule struct {
	match string
	reply string
	err   error
}

// Stub answers prompts by the first rule whose substring the prompt
// contains. Unmatched prompts return an error.
type Stub struct {
	mu    sync.Mutex
	rules []rule
	calls []Call
}

func New() *Stub {
	return &Stub{}
}

// On registers reply for prompts containing match.
func (s *Stub) On(match, reply string) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{match: match, reply: reply})
	return s
}

// Fail registers err for prompts containing match.
func (s *Stub) Fail(match string, err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{match: match, err: err})
	return s
}

func (s *Stub) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Prompt: prompt, MaxTokens: maxTokens})

	for _, r := range s.rules {
		if strings.Contains(prompt, r.match) {
			return r.reply, r.err
		}
	}
	return "", fmt.Errorf("llmtest: no rule matches prompt %.60q", prompt)
}

// Calls returns a copy of every recorded invocation.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsMatching returns the invocations whose prompt contains sub.
func (s *Stub) CallsMatching(sub string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if strings.Contains(c.Prompt, sub) {
			out = append(out, c)
		}
	}
	return out
}
