package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port    string
	DBDSN   string
	SQLite  string
	DevMode bool

	// quota
	DailyLimit              int
	ResetCron               bool
	AdminToken              string
	RefundOnUpstreamFailure bool

	// conversation
	SystemPrompt  string
	ContextTurns  int
	HistorySource string // "store" or "client"

	// provider
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
	Temperature       float64
	MaxTokens         int

	AllowedOrigins []string
}

const defaultSystemPrompt = "You are a concise, friendly assistant. Answer in the language the user writes in."

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "chatgate.db"
	}

	dailyLimit := 10
	if v := os.Getenv("DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dailyLimit = n
		}
	}

	contextTurns := 3
	if v := os.Getenv("CONTEXT_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			contextTurns = n
		}
	}

	historySource := strings.ToLower(os.Getenv("HISTORY_SOURCE"))
	if historySource != "client" {
		historySource = "store"
	}

	systemPrompt := os.Getenv("SYSTEM_PROMPT")
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	openRouterModel := os.Getenv("OPENROUTER_MODEL")
	if openRouterModel == "" {
		openRouterModel = "openrouter/auto"
	}

	temperature := 0.7
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			temperature = f
		}
	}

	maxTokens := 1024
	if v := os.Getenv("MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxTokens = n
		}
	}

	var origins []string
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Port:    port,
		DBDSN:   os.Getenv("DB_DSN"),
		SQLite:  sqlitePath,
		DevMode: os.Getenv("DEV_MODE") == "1" || strings.EqualFold(os.Getenv("DEV_MODE"), "true"),

		DailyLimit:              dailyLimit,
		ResetCron:               os.Getenv("RESET_CRON") != "0",
		AdminToken:              os.Getenv("ADMIN_TOKEN"),
		RefundOnUpstreamFailure: os.Getenv("REFUND_ON_UPSTREAM_FAILURE") == "1",

		SystemPrompt:  systemPrompt,
		ContextTurns:  contextTurns,
		HistorySource: historySource,

		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   openRouterModel,
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),
		Temperature:       temperature,
		MaxTokens:         maxTokens,

		AllowedOrigins: origins,
	}
}
