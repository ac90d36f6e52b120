// Package content builds prompts for the portfolio copy and parses the
// model's keyword replies.
package content

import (
	"context"
	"fmt"

	"github.com/kevinmichaelchen/folio/internal/llm"
)

// Reply length limits, in tokens.
const (
	ProseTokens   = 600
	KeywordTokens = 10
)

// Generator produces portfolio copy from a completion backend.
type Generator struct {
	llm llm.Completer
}

func NewGenerator(c llm.Completer) *Generator {
	return &Generator{llm: c}
}

// Completer exposes the backend so later stages can share it.
func (g *Generator) Completer() llm.Completer {
	return g.llm
}

const landingPrompt = `
You are a professional copywriter. The user is building a personal portfolio landing page.
They have these interests: %s.
The main landing page should say "Hi, I'm %s" and provide a brief by-line of who they are and what this website is about.
Write a short, friendly, and engaging paragraph (3-4 sentences) that gives a welcoming introduction,
mentions their interests, and sets the tone for the portfolio website.
`

const aboutPrompt = `
You are a professional copywriter. Create an 'About Me' section for a personal website.
The subject's name is %s, GitHub username is %s, and they have the following interests: %s.
Write about 2-3 paragraphs that highlight their professional background, personal interests,
and what they enjoy working on, in a friendly, authentic tone.
`

const keywordPrompt = `
You are an assistant that extracts keywords and main themes from a project's README.
Given the README below, list a set of keywords or short phrases that represent the main topics, technologies, or domains the project involves.
Just return a concise list of keywords, max 4 (e.g., ["machine learning", "NLP", "Python"]).

README for %s:
%s
`

func (g *Generator) LandingText(ctx context.Context, name, interests string) (string, error) {
	text, err := g.llm.Complete(ctx, fmt.Sprintf(landingPrompt, interests, name), ProseTokens)
	if err != nil {
		return "", fmt.Errorf("generating landing text: %w", err)
	}
	return text, nil
}

func (g *Generator) AboutText(ctx context.Context, name, interests, handle string) (string, error) {
	text, err := g.llm.Complete(ctx, fmt.Sprintf(aboutPrompt, name, handle, interests), ProseTokens)
	if err != nil {
		return "", fmt.Errorf("generating about text: %w", err)
	}
	return text, nil
}

// ExtractKeywords asks for up to four topical keywords for one repository.
// Only transport errors are returned; unparseable replies degrade.
func (g *Generator) ExtractKeywords(ctx context.Context, repo, readme string) (KeywordResult, error) {
	raw, err := g.llm.Complete(ctx, fmt.Sprintf(keywordPrompt, repo, readme), KeywordTokens)
	if err != nil {
		return KeywordResult{}, fmt.Errorf("extracting keywords for %s: %w", repo, err)
	}
	return ParseKeywords(raw), nil
}
