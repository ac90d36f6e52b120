package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	GitHubAPIURL string
	GitHubWebURL string
	GitHubToken  string

	LLMProvider string
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string

	FetchConcurrency int
	LogLevel         string
	ServerAddr       string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		GitHubAPIURL: os.Getenv("GITHUB_API_URL"),
		GitHubWebURL: os.Getenv("GITHUB_WEB_URL"),
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),

		LLMProvider: strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
		LLMModel:    os.Getenv("LLM_MODEL"),

		LogLevel:   os.Getenv("LOG_LEVEL"),
		ServerAddr: os.Getenv("SERVER_ADDR"),
	}

	if n, err := strconv.Atoi(os.Getenv("FETCH_CONCURRENCY")); err == nil {
		cfg.FetchConcurrency = n
	}

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.GitHubAPIURL == "" {
		c.GitHubAPIURL = "https://api.github.com"
	}
	if c.GitHubWebURL == "" {
		c.GitHubWebURL = "https://github.com"
	}
	c.GitHubAPIURL = strings.TrimSuffix(c.GitHubAPIURL, "/")
	c.GitHubWebURL = strings.TrimSuffix(c.GitHubWebURL, "/")

	if c.LLMProvider == "" {
		c.LLMProvider = ProviderOpenAI
	}
	// Gemini keeps an empty base URL so genai picks its own endpoint.
	if c.LLMBaseURL == "" && c.LLMProvider == ProviderOpenAI {
		c.LLMBaseURL = "https://api.openai.com/v1"
	}
	if c.LLMModel == "" {
		switch c.LLMProvider {
		case ProviderGemini:
			c.LLMModel = "gemini-2.0-flash"
		default:
			c.LLMModel = "gpt-4"
		}
	}

	if c.FetchConcurrency < 1 {
		c.FetchConcurrency = 4
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
}
