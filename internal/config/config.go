package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Completion service (optional). Empty BaseURL disables delegation.
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTopP        float64
	LLMTopK        int
	LLMSeed        int
	LLMTimeout     time.Duration

	// Entity recognizer (optional). Empty BaseURL disables it.
	NERBaseURL string
	NERTimeout time.Duration

	// Extraction quality gate
	MinUsefulChars int

	// Candidate generation
	MaxCandidatesPerKind int

	// Scoring weights
	WeightKeywordSameBlock float64
	WeightKeywordNearby    float64
	WeightTopOfDocCompany  float64
	WeightFrequency        float64
	WeightShape            float64

	// Decision thresholds. Empirically chosen; kept configurable for
	// calibration rather than hardcoded.
	TopKForLLM   int
	MarginAccept float64
	TieEpsilon   float64
	TieMinScore  float64

	// Confidence
	MinConfidenceWhenDefined float64

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCFIELDS_API_KEY"),

		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       envOr("LLM_MODEL", "local"),
		LLMMaxTokens:   envInt("LLM_MAX_TOKENS", 256),
		LLMTemperature: envFloat("LLM_TEMPERATURE", 0.0),
		LLMTopP:        envFloat("LLM_TOP_P", 1.0),
		LLMTopK:        envInt("LLM_TOP_K", 0),
		LLMSeed:        envInt("LLM_SEED", 42),
		LLMTimeout:     envDuration("LLM_TIMEOUT", 60*time.Second),

		NERBaseURL: os.Getenv("NER_BASE_URL"),
		NERTimeout: envDuration("NER_TIMEOUT", 15*time.Second),

		MinUsefulChars: envInt("MIN_USEFUL_CHARS", 200),

		MaxCandidatesPerKind: envInt("MAX_CANDIDATES_PER_KIND", 30),

		WeightKeywordSameBlock: envFloat("WEIGHT_KEYWORD_SAME_BLOCK", 2.0),
		WeightKeywordNearby:    envFloat("WEIGHT_KEYWORD_NEARBY", 1.0),
		WeightTopOfDocCompany:  envFloat("WEIGHT_TOP_OF_DOC_COMPANY", 1.5),
		WeightFrequency:        envFloat("WEIGHT_FREQUENCY", 0.5),
		WeightShape:            envFloat("WEIGHT_SHAPE", 0.75),

		TopKForLLM:   envInt("TOP_K_FOR_LLM", 5),
		MarginAccept: envFloat("MARGIN_ACCEPT", 1.0),
		TieEpsilon:   envFloat("TIE_EPSILON", 1e-9),
		TieMinScore:  envFloat("TIE_MIN_SCORE", 3.0),

		MinConfidenceWhenDefined: envFloat("MIN_CONFIDENCE_WHEN_DEFINED", 0.2),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MinUsefulChars <= 0 {
		cfg.MinUsefulChars = 200
	}
	if cfg.MaxCandidatesPerKind <= 0 {
		cfg.MaxCandidatesPerKind = 30
	}
	if cfg.TopKForLLM <= 0 {
		cfg.TopKForLLM = 5
	}
	if cfg.LLMMaxTokens <= 0 {
		cfg.LLMMaxTokens = 256
	}
	if cfg.TieEpsilon <= 0 {
		cfg.TieEpsilon = 1e-9
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCFIELDS_API_KEY is required")
	}
	return nil
}

// DelegationEnabled reports whether a completion service is configured.
func (c Config) DelegationEnabled() bool {
	return c.LLMBaseURL != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
