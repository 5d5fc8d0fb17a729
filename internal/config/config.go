package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	Gateway   GatewayConfig
	Knowledge KnowledgeConfig
	Triage    TriageConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogFilePath string
}

type DatabaseConfig struct {
	Connection string
}

type OpenAIConfig struct {
	APIKey     string
	ChatModel  string
	EmbedModel string
}

// GatewayConfig points at the chat gateway that delivers messages to end
// users. The bot receives updates on its webhook and calls the gateway back
// for sends and edits.
type GatewayConfig struct {
	BaseURL string
	Token   string
}

type KnowledgeConfig struct {
	DocsDir          string
	PairsPath        string
	Collection       string
	EmbedBatchSize   int
	MaxWordsPerChunk int
	OverlapWords     int
	HistoryWindow    int
	ProfilePath      string
	RetrievalEnabled bool
	RetrievalTopK    int
}

type TriageConfig struct {
	Strategy string // "marker" or "lexical"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:        getEnv("APP_PORT", "3000"),
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/app.log"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			ChatModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			EmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("BOT_GATEWAY_URL", ""),
			Token:   getEnv("BOT_GATEWAY_TOKEN", ""),
		},
		Knowledge: KnowledgeConfig{
			DocsDir:          getEnv("DOCS_DIR", "./data/docs"),
			PairsPath:        getEnv("PAIRS_JSON", "./data/parsed/faq_pairs.json"),
			Collection:       getEnv("VECTOR_COLLECTION", "faq_chunks"),
			EmbedBatchSize:   getEnvAsInt("EMBED_BATCH_SIZE", 32),
			MaxWordsPerChunk: getEnvAsInt("MAX_WORDS_PER_CHUNK", 300),
			OverlapWords:     getEnvAsInt("CHUNK_OVERLAP_WORDS", 50),
			HistoryWindow:    getEnvAsInt("HISTORY_WINDOW", 20),
			ProfilePath:      getEnv("ASSISTANT_PROFILE_PATH", "./data/assistant_profile.txt"),
			RetrievalEnabled: getEnvAsBool("RETRIEVAL_ENABLED", false),
			RetrievalTopK:    getEnvAsInt("RETRIEVAL_TOP_K", 5),
		},
		Triage: TriageConfig{
			Strategy: getEnv("TRIAGE_STRATEGY", "marker"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
