package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, k := range []string{
			"GITHUB_API_URL", "GITHUB_WEB_URL", "GITHUB_TOKEN", "LLM_PROVIDER", "LLM_BASE_URL",
			"LLM_API_KEY", "LLM_MODEL", "FETCH_CONCURRENCY", "LOG_LEVEL", "SERVER_ADDR",
		} {
			t.Setenv(k, "")
		}

		cfg := Load()
		assert.Equal(t, "https://api.github.com", cfg.GitHubAPIURL)
		assert.Equal(t, "https://github.com", cfg.GitHubWebURL)
		assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
		assert.Equal(t, "https://api.openai.com/v1", cfg.LLMBaseURL)
		assert.Equal(t, "gpt-4", cfg.LLMModel)
		assert.Equal(t, 4, cfg.FetchConcurrency)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, ":8080", cfg.ServerAddr)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("GITHUB_API_URL", "http://ghe.local/api/v3/")
		t.Setenv("GITHUB_WEB_URL", "http://ghe.local/")
		t.Setenv("LLM_PROVIDER", " Gemini ")
		t.Setenv("LLM_MODEL", "")
		t.Setenv("LLM_BASE_URL", "")
		t.Setenv("FETCH_CONCURRENCY", "1")

		cfg := Load()
		assert.Equal(t, "http://ghe.local/api/v3", cfg.GitHubAPIURL)
		assert.Equal(t, "http://ghe.local", cfg.GitHubWebURL)
		assert.Equal(t, ProviderGemini, cfg.LLMProvider)
		assert.Equal(t, "gemini-2.0-flash", cfg.LLMModel)
		assert.Empty(t, cfg.LLMBaseURL)
		assert.Equal(t, 1, cfg.FetchConcurrency)
	})

	t.Run("Invalid Concurrency Falls Back", func(t *testing.T) {
		t.Setenv("FETCH_CONCURRENCY", "zero")
		assert.Equal(t, 4, Load().FetchConcurrency)
	})
}
