package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kevinmichaelchen/folio/internal/archive"
	"github.com/kevinmichaelchen/folio/internal/categorize"
	"github.com/kevinmichaelchen/folio/internal/config"
	"github.com/kevinmichaelchen/folio/internal/content"
	"github.com/kevinmichaelchen/folio/internal/github"
	"github.com/kevinmichaelchen/folio/internal/llm"
	"github.com/kevinmichaelchen/folio/internal/models"
	"github.com/kevinmichaelchen/folio/internal/render"
	"github.com/kevinmichaelchen/folio/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the subset of the GitHub client a run needs.
type Fetcher interface {
	FetchProfile(ctx context.Context, handle string) (models.Profile, error)
	FetchRepositories(ctx context.Context, handle string) ([]models.Repository, error)
	FetchReadme(ctx context.Context, handle, repo string) (string, error)
}

type Pipeline struct {
	cfg *config.Config
	gh  Fetcher
	gen *content.Generator
	log *log.Logger

	concurrency int
}

func New(cfg *config.Config, gh Fetcher, completer llm.Completer, logger *log.Logger) *Pipeline {
	concurrency := max(cfg.FetchConcurrency, 1)
	return &Pipeline{
		cfg:         cfg,
		gh:          gh,
		gen:         content.NewGenerator(completer),
		log:         logger,
		concurrency: concurrency,
	}
}

// Result is everything a run produced.
type Result struct {
	Profile        models.Profile
	Site           models.Site
	Categorization models.Categorization
	Instructions   string
	Archive        []byte
	// Fallback reports that categorization degraded to the "Other" bucket.
	Fallback bool
}

// Generate validates req, builds the GitHub and model clients from cfg and
// runs the pipeline once.
func Generate(ctx context.Context, cfg *config.Config, logger *log.Logger, req models.Request) (*Result, error) {
	req = req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	completer, err := llm.New(ctx, cfg, req.APIKey)
	if err != nil {
		return nil, err
	}
	gh := github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, http.DefaultClient)
	return New(cfg, gh, completer, logger).Run(ctx, req)
}

func validate(req models.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := render.ContrastColor(req.AccentColor); err != nil {
		return err
	}
	return nil
}

// Run executes one generation. Only a failed repository listing, a model
// transport error or a render failure abort the run; everything else
// degrades.
func (p *Pipeline) Run(ctx context.Context, req models.Request) (*Result, error) {
	req = req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	logger := p.log.With("run", shared.GenerateID(), "user", req.Handle)

	// Step 1: Profile
	profile, err := p.gh.FetchProfile(ctx, req.Handle)
	if err != nil {
		logger.Warn("profile unavailable, using handle as name", "err", err)
		profile = models.Profile{Login: req.Handle}
	}
	name := profile.DisplayName()

	// Step 2: Repositories and READMEs
	logger.Info("fetching repositories")
	repos, err := p.gh.FetchRepositories(ctx, req.Handle)
	if err != nil {
		return nil, fmt.Errorf("fetching repositories for %s: %w", req.Handle, err)
	}
	logger.Info("fetched repositories", "count", len(repos))

	readmes, err := p.fetchReadmes(ctx, logger, req.Handle, repos)
	if err != nil {
		return nil, err
	}
	logger.Info("collected READMEs", "count", len(readmes))

	// Step 3: Copy
	logger.Info("generating landing text")
	landing, err := p.gen.LandingText(ctx, name, req.Interests)
	if err != nil {
		return nil, err
	}
	logger.Info("generating about text")
	about, err := p.gen.AboutText(ctx, name, req.Interests, req.Handle)
	if err != nil {
		return nil, err
	}

	// Step 4: Categorize
	logger.Info("categorizing projects", "count", len(readmes))
	cat, err := categorize.New(p.gen, p.concurrency, logger).Categorize(ctx, readmes)
	if err != nil {
		return nil, err
	}

	// Step 5: Render and archive
	site, err := render.Render(render.Page{
		Profile:        profile,
		Handle:         req.Handle,
		AboutText:      about,
		LandingText:    landing,
		ResumeFilename: archive.ResumeName,
		Categorization: cat.Categorization,
		AccentColor:    req.AccentColor,
		WebURL:         p.cfg.GitHubWebURL,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering site: %w", err)
	}

	instructions := archive.Instructions(name, req.Handle)
	zipped, err := archive.Build(site, req.Resume, instructions)
	if err != nil {
		return nil, fmt.Errorf("building archive: %w", err)
	}
	logger.Info("portfolio generated", "bytes", len(zipped), "fallback", cat.Fallback)

	return &Result{
		Profile:        profile,
		Site:           site,
		Categorization: cat.Categorization,
		Instructions:   instructions,
		Archive:        zipped,
		Fallback:       cat.Fallback,
	}, nil
}

// fetchReadmes downloads READMEs with bounded fan-out and keeps the
// non-blank ones in listing order.
func (p *Pipeline) fetchReadmes(ctx context.Context, logger *log.Logger, handle string, repos []models.Repository) ([]models.ReadmeEntry, error) {
	texts := make([]string, len(repos))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, repo := range repos {
		g.Go(func() error {
			text, err := p.gh.FetchReadme(gCtx, handle, repo.Name)
			if err != nil {
				if ctxErr := gCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("skipping README", "repo", repo.Name, "err", err)
				return nil
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []models.ReadmeEntry
	for i, repo := range repos {
		if strings.TrimSpace(texts[i]) == "" {
			logger.Debug("no README content", "repo", repo.Name)
			continue
		}
		entries = append(entries, models.ReadmeEntry{RepositoryName: repo.Name, Text: texts[i]})
	}
	return entries, nil
}
