package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kevinmichaelchen/folio/internal/archive"
	"github.com/kevinmichaelchen/folio/internal/categorize"
	"github.com/kevinmichaelchen/folio/internal/config"
	"github.com/kevinmichaelchen/folio/internal/github"
	"github.com/kevinmichaelchen/folio/internal/llm/llmtest"
	"github.com/kevinmichaelchen/folio/internal/models"
	"github.com/kevinmichaelchen/folio/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves a user, their repositories and READMEs. A README of
// "<drop>" closes the connection instead of answering.
type fakeGitHub struct {
	profileStatus int
	reposStatus   int
	repos         []string
	readmes       map[string]string
	hits          atomic.Int64
}

func (f *fakeGitHub) serve(t *testing.T) *github.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		switch {
		case r.URL.Path == "/users/octocat":
			if f.profileStatus != 0 {
				w.WriteHeader(f.profileStatus)
				return
			}
			_, _ = w.Write([]byte(`{"login":"octocat","name":"The Octocat"}`))
		case r.URL.Path == "/users/octocat/repos":
			if f.reposStatus != 0 {
				http.Error(w, "boom", f.reposStatus)
				return
			}
			var out []models.Repository
			for _, n := range f.repos {
				out = append(out, models.Repository{Name: n})
			}
			_ = json.NewEncoder(w).Encode(out)
		case strings.HasPrefix(r.URL.Path, "/repos/octocat/"):
			name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/octocat/"), "/readme")
			text, ok := f.readmes[name]
			if !ok {
				http.NotFound(w, r)
				return
			}
			if text == "<drop>" {
				conn, _, err := w.(http.Hijacker).Hijack()
				require.NoError(t, err)
				_ = conn.Close()
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"content":  base64.StdEncoding.EncodeToString([]byte(text)),
				"encoding": "base64",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return github.NewClient(srv.URL, "", srv.Client())
}

const categorizationReply = `{
  "categories": ["Data Engineering"],
  "projects": [{"name": "alpha", "category": "Data Engineering", "summary": "Moves data from here to there."}]
}`

func stubModel() *llmtest.Stub {
	return llmtest.New().
		On("landing page", "Welcome to my portfolio.").
		On("'About Me'", "I enjoy building data tools.").
		On("README for", `["data pipeline", "ETL"]`).
		On("Here is the data", categorizationReply)
}

func request() models.Request {
	return models.Request{
		APIKey:    "sk-test",
		Handle:    "octocat",
		Interests: "data, hiking",
		Resume:    []byte("%PDF-1.7 resume"),
	}
}

func newPipeline(gh Fetcher, stub *llmtest.Stub) *Pipeline {
	cfg := &config.Config{GitHubWebURL: "https://github.com", FetchConcurrency: 2}
	return New(cfg, gh, stub, shared.DiscardLogger())
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	gh := &fakeGitHub{
		repos:   []string{"alpha", "beta"},
		readmes: map[string]string{"alpha": "# Alpha\nA data pipeline for events.", "beta": ""},
	}
	stub := stubModel()

	res, err := newPipeline(gh.serve(t), stub).Run(context.Background(), request())
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, "The Octocat", res.Profile.DisplayName())

	kw := stub.CallsMatching("README for")
	require.Len(t, kw, 1)
	assert.Contains(t, kw[0].Prompt, "README for alpha")
	assert.NotContains(t, stub.CallsMatching("Here is the data")[0].Prompt, "beta")

	projects := res.Site[models.ProjectsPage]
	assert.Equal(t, 1, strings.Count(projects, `class="project-tile"`))
	assert.Contains(t, projects, "<h3>Alpha</h3>")
	assert.Contains(t, projects, `href="https://github.com/octocat/alpha"`)

	files := unzip(t, res.Archive)
	assert.Len(t, files, len(models.SiteFiles)+2)
	for name, content := range res.Site {
		assert.Equal(t, content, files[name], name)
	}
	assert.Equal(t, "%PDF-1.7 resume", files[archive.ResumeName])
	assert.Equal(t, res.Instructions, files[archive.InstructionsName])
	assert.Contains(t, files[models.Stylesheet], "--main-color: #4CAF50;")
}

func TestRunValidation(t *testing.T) {
	gh := &fakeGitHub{repos: []string{"alpha"}}
	client := gh.serve(t)

	t.Run("Missing Input Blocks Before Network", func(t *testing.T) {
		stub := stubModel()
		req := request()
		req.Resume = nil

		_, err := newPipeline(client, stub).Run(context.Background(), req)
		require.ErrorIs(t, err, shared.ErrMissingInput)
		assert.Zero(t, gh.hits.Load())
		assert.Empty(t, stub.Calls())
	})

	t.Run("Invalid Color Blocks Before Network", func(t *testing.T) {
		req := request()
		req.AccentColor = "chartreuse"

		_, err := newPipeline(client, stubModel()).Run(context.Background(), req)
		require.ErrorIs(t, err, shared.ErrInvalidColor)
		assert.Zero(t, gh.hits.Load())
	})
}

func TestRunDegrades(t *testing.T) {
	t.Run("Profile Failure Uses Handle", func(t *testing.T) {
		gh := &fakeGitHub{profileStatus: http.StatusNotFound, repos: []string{"alpha"}, readmes: map[string]string{"alpha": "text"}}
		stub := stubModel()

		res, err := newPipeline(gh.serve(t), stub).Run(context.Background(), request())
		require.NoError(t, err)
		assert.Equal(t, "octocat", res.Profile.DisplayName())
		assert.Contains(t, res.Site[models.IndexPage], "Hi, I'm octocat")
		assert.Contains(t, stub.CallsMatching("landing page")[0].Prompt, `"Hi, I'm octocat"`)
	})

	t.Run("Blank And Failed READMEs Are Skipped", func(t *testing.T) {
		gh := &fakeGitHub{
			repos: []string{"alpha", "blank", "missing", "dropped", "omega"},
			readmes: map[string]string{
				"alpha":   "alpha text",
				"blank":   "  \n\t ",
				"dropped": "<drop>",
				"omega":   "omega text",
			},
		}
		stub := stubModel()

		_, err := newPipeline(gh.serve(t), stub).Run(context.Background(), request())
		require.NoError(t, err)

		kw := stub.CallsMatching("README for")
		require.Len(t, kw, 2)
		agg := stub.CallsMatching("Here is the data")[0].Prompt
		assert.Less(t, strings.Index(agg, "Project: alpha"), strings.Index(agg, "Project: omega"))
		for _, skipped := range []string{"blank", "missing", "dropped"} {
			assert.NotContains(t, agg, "Project: "+skipped)
		}
	})

	t.Run("Malformed Categorization Falls Back", func(t *testing.T) {
		gh := &fakeGitHub{repos: []string{"alpha", "beta"}, readmes: map[string]string{"alpha": "a", "beta": "b"}}
		stub := llmtest.New().
			On("landing page", "hi").
			On("'About Me'", "me").
			On("README for", "data, pipelines").
			On("Here is the data", "I think alpha is about data and beta is about the web.")

		res, err := newPipeline(gh.serve(t), stub).Run(context.Background(), request())
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Equal(t, []string{categorize.FallbackCategory}, res.Categorization.Categories)
		require.Len(t, res.Categorization.Projects, 2)
		assert.Equal(t, 2, strings.Count(res.Site[models.ProjectsPage], categorize.FallbackSummary))
	})

	t.Run("Fallback Warning Carries Run ID", func(t *testing.T) {
		gh := &fakeGitHub{repos: []string{"alpha"}, readmes: map[string]string{"alpha": "a"}}
		stub := llmtest.New().
			On("landing page", "hi").
			On("'About Me'", "me").
			On("README for", `["data"]`).
			On("Here is the data", "not json")

		var buf bytes.Buffer
		cfg := &config.Config{GitHubWebURL: "https://github.com", FetchConcurrency: 2}
		res, err := New(cfg, gh.serve(t), stub, shared.NewLogger(&buf, "info")).Run(context.Background(), request())
		require.NoError(t, err)
		require.True(t, res.Fallback)

		var warning string
		for _, line := range strings.Split(buf.String(), "\n") {
			if strings.Contains(line, "categorization fell back") {
				warning = line
			}
		}
		require.NotEmpty(t, warning)
		assert.Contains(t, warning, "run=")
		assert.Contains(t, warning, "user=octocat")
	})

	t.Run("No Repositories", func(t *testing.T) {
		gh := &fakeGitHub{}
		stub := stubModel()

		res, err := newPipeline(gh.serve(t), stub).Run(context.Background(), request())
		require.NoError(t, err)
		assert.Empty(t, stub.CallsMatching("Here is the data"))
		assert.NotContains(t, res.Site[models.ProjectsPage], "project-tile")
	})
}

func TestRunAborts(t *testing.T) {
	t.Run("Repository Listing Failure", func(t *testing.T) {
		gh := &fakeGitHub{reposStatus: http.StatusInternalServerError}
		stub := stubModel()

		res, err := newPipeline(gh.serve(t), stub).Run(context.Background(), request())
		require.Error(t, err)
		assert.Nil(t, res)
		assert.Contains(t, err.Error(), "fetching repositories for octocat")
		assert.Empty(t, stub.Calls())
	})

	t.Run("Model Transport Failure", func(t *testing.T) {
		gh := &fakeGitHub{repos: []string{"alpha"}, readmes: map[string]string{"alpha": "a"}}
		stub := llmtest.New().Fail("landing page", io.ErrUnexpectedEOF)

		res, err := newPipeline(gh.serve(t), stub).Run(context.Background(), request())
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Nil(t, res)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		gh := &fakeGitHub{repos: []string{"alpha"}, readmes: map[string]string{"alpha": "a"}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newPipeline(gh.serve(t), stubModel()).Run(ctx, request())
		require.Error(t, err)
	})
}

func TestGenerateValidatesFirst(t *testing.T) {
	cfg := &config.Config{LLMProvider: config.ProviderOpenAI, FetchConcurrency: 1}
	_, err := Generate(context.Background(), cfg, shared.DiscardLogger(), models.Request{Handle: "octocat"})
	require.ErrorIs(t, err, shared.ErrMissingInput)
}
