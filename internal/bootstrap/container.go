package bootstrap

import (
	"log"

	"support-assistant-be/internal/config"
	"support-assistant-be/internal/controller"
	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/repository/unitofwork"
	"support-assistant-be/internal/service"
	"support-assistant-be/internal/transport"
	llmopenai "support-assistant-be/pkg/llm/openai"
	"support-assistant-be/pkg/qa"
	"support-assistant-be/pkg/triage"
	"support-assistant-be/pkg/vectorstore"

	embopenai "support-assistant-be/pkg/embedding/openai"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WebhookController controller.IWebhookController

	// Services (exposed for CLI entrypoints)
	ConversationService service.IConversationService
	IngestService       service.IIngestService

	// Infrastructure
	ChunkStore *vectorstore.Store
	Logger     logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Providers
	llmProvider, err := llmopenai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM model: %s", cfg.OpenAI.ChatModel)

	embedder, err := embopenai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.EmbedModel)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	log.Printf("[INFO] Using embedding model: %s", cfg.OpenAI.EmbedModel)

	// 3. Knowledge store
	chunkStore := vectorstore.New(cfg.Knowledge.Collection, func() (*gorm.DB, error) {
		return db, nil
	})

	// 4. Triage
	strategy := triage.ForName(cfg.Triage.Strategy)
	log.Printf("[INFO] Using triage strategy: %s", cfg.Triage.Strategy)

	// 5. Outbound messenger
	messenger := transport.NewGatewayClient(cfg.Gateway.BaseURL, cfg.Gateway.Token)

	// 6. Services
	var searcher service.ChunkSearcher
	if cfg.Knowledge.RetrievalEnabled {
		searcher = chunkStore
	}
	conversationService := service.NewConversationService(
		uowFactory,
		llmProvider,
		embedder,
		searcher,
		strategy,
		messenger,
		sysLogger,
		service.ConversationOptions{
			Profile:       service.LoadAssistantProfile(cfg.Knowledge.ProfilePath),
			HistoryWindow: cfg.Knowledge.HistoryWindow,
			RetrievalTopK: cfg.Knowledge.RetrievalTopK,
		},
	)

	ingestService := service.NewIngestService(
		qa.NewNormalizer(llmProvider),
		embedder,
		chunkStore,
		sysLogger,
		service.IngestOptions{
			BatchSize:    cfg.Knowledge.EmbedBatchSize,
			MaxWords:     cfg.Knowledge.MaxWordsPerChunk,
			OverlapWords: cfg.Knowledge.OverlapWords,
		},
	)

	// 7. Controllers
	return &Container{
		WebhookController:   controller.NewWebhookController(conversationService, sysLogger),
		ConversationService: conversationService,
		IngestService:       ingestService,
		ChunkStore:          chunkStore,
		Logger:              sysLogger,
	}
}
