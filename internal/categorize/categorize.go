// Package categorize groups projects into model-proposed themes.
//
// Keyword extraction runs per README; one aggregate completion then
// proposes up to four categories and a short summary per project. A reply
// that cannot be decoded degrades to a single "Other" bucket.
package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kevinmichaelchen/folio/internal/content"
	"github.com/kevinmichaelchen/folio/internal/llm"
	"github.com/kevinmichaelchen/folio/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	FallbackCategory = "Other"
	FallbackSummary  = "No summary available."

	categorizeTokens = 1500
)

// Result carries the categorization and how it was obtained.
type Result struct {
	Categorization models.Categorization
	Keywords       []models.KeywordSet
	Fallback       bool
	Reason         string
}

type Categorizer struct {
	gen         *content.Generator
	concurrency int
	log         *log.Logger
}

// New returns a Categorizer. concurrency bounds the keyword fan-out; 1
// keeps extraction strictly sequential.
func New(gen *content.Generator, concurrency int, logger *log.Logger) *Categorizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Categorizer{gen: gen, concurrency: concurrency, log: logger}
}

func (c *Categorizer) Categorize(ctx context.Context, entries []models.ReadmeEntry) (Result, error) {
	if len(entries) == 0 {
		return Result{Categorization: models.Categorization{Categories: []string{}, Projects: []models.Project{}}}, nil
	}

	sets, err := c.extractAll(ctx, entries)
	if err != nil {
		return Result{}, err
	}

	raw, err := c.gen.Completer().Complete(ctx, Prompt(sets), categorizeTokens)
	if err != nil {
		return Result{}, fmt.Errorf("categorizing projects: %w", err)
	}

	res := Parse(raw, sets)
	if res.Fallback {
		c.log.Warn("categorization fell back", "reason", res.Reason)
		return res, nil
	}
	for _, name := range UnknownProjects(res.Categorization, sets) {
		c.log.Warn("model returned a project that was not fetched", "project", name)
	}
	return res, nil
}

// extractAll runs keyword extraction with bounded fan-out. Results are
// stored by index so their order matches entries.
func (c *Categorizer) extractAll(ctx context.Context, entries []models.ReadmeEntry) ([]models.KeywordSet, error) {
	sets := make([]models.KeywordSet, len(entries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			kw, err := c.gen.ExtractKeywords(gCtx, entry.RepositoryName, entry.Text)
			if err != nil {
				return err
			}
			if kw.Fallback {
				c.log.Debug("keyword reply was not a JSON list", "repo", entry.RepositoryName, "reason", kw.Reason)
			}
			sets[i] = models.KeywordSet{RepositoryName: entry.RepositoryName, Keywords: kw.Keywords}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

const promptHeader = `
You are an assistant that now has a list of projects with extracted keywords.
Your task:
1) Identify up to 4 categories that best classify these projects based on their keywords.
2) Assign each project to one of these categories.
3) For each project, produce a short (1 sentence, max 10 words) summary based on the keywords (be creative but consistent with keywords).

Return the results in a structured JSON format as follows:

{
  "categories": ["Category1", "Category2", ...],
  "projects": [
     {
       "name": "project_name",
       "category": "CategoryX",
       "summary": "Short summary..."
     },
     ...
  ]
}

If a project doesn't fit into main categories, use "Other".

Here is the data:
`

// Prompt builds the aggregate categorization prompt.
func Prompt(sets []models.KeywordSet) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, s := range sets {
		fmt.Fprintf(&b, "Project: %s\nKeywords: %s\n\n", s.RepositoryName, strings.Join(s.Keywords, ", "))
	}
	return b.String()
}

// Parse decodes the model reply. It never fails: undecodable or empty
// replies produce Fallback(sets).
func Parse(raw string, sets []models.KeywordSet) Result {
	body := llm.StripCodeFences(raw)

	var c models.Categorization
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return fallback(sets, fmt.Sprintf("reply is not a categorization object: %v", err))
	}
	if len(c.Categories) == 0 && len(c.Projects) == 0 {
		return fallback(sets, "reply has neither categories nor projects")
	}
	if c.Categories == nil {
		c.Categories = []string{}
	}
	if c.Projects == nil {
		c.Projects = []models.Project{}
	}
	return Result{Categorization: c, Keywords: sets}
}

// Fallback puts every project under "Other" with a placeholder summary.
func Fallback(sets []models.KeywordSet) models.Categorization {
	projects := make([]models.Project, 0, len(sets))
	for _, s := range sets {
		projects = append(projects, models.Project{
			Name:     s.RepositoryName,
			Category: FallbackCategory,
			Summary:  FallbackSummary,
		})
	}
	return models.Categorization{Categories: []string{FallbackCategory}, Projects: projects}
}

func fallback(sets []models.KeywordSet, reason string) Result {
	return Result{Categorization: Fallback(sets), Keywords: sets, Fallback: true, Reason: reason}
}

// UnknownProjects lists project names in c that no keyword set produced.
func UnknownProjects(c models.Categorization, sets []models.KeywordSet) []string {
	known := make(map[string]bool, len(sets))
	for _, s := range sets {
		known[s.RepositoryName] = true
	}
	var unknown []string
	for _, p := range c.Projects {
		if !known[p.Name] {
			unknown = append(unknown, p.Name)
		}
	}
	return unknown
}
