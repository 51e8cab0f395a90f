package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/ai"
	appsvc "gopherai-docqa/internal/app"
	"gopherai-docqa/internal/bootstrap"
	"gopherai-docqa/internal/cache"
	"gopherai-docqa/internal/extract"
	rabbitmqClient "gopherai-docqa/internal/platform/rabbitmq"
	"gopherai-docqa/internal/repository"
	"gopherai-docqa/internal/transport/http/handler"
	"gopherai-docqa/internal/transport/http/middleware"
)

// multipart framing on top of the file itself
const uploadOverheadBytes = 1 << 20

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, app.StartedAt, map[string]handler.CheckFunc{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := app.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		},
		"rabbitmq": func(context.Context) error {
			return rabbitmqClient.Ping(app.MQConn)
		},
		"milvus": app.VectorIndex.Ping,
	})
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	authService := appsvc.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.JWTExpiration())
	documentService := appsvc.NewDocumentService(appsvc.DocumentServiceDeps{
		Documents:  repository.NewDocumentRepository(app.MySQL),
		ChatLogs:   repository.NewChatLogRepository(app.MySQL),
		Files:      app.Files,
		Extractor:  extract.New(),
		Embedder:   ai.NewEmbedder(app.OpenAI, cfg.LLM.EmbeddingModel, cfg.LLM.EmbeddingDim),
		Summarizer: ai.NewSummarizer(app.OpenAI, cfg.LLM.ChatModel, cfg.LLM.SummaryMaxTokens),
		Answerer:   ai.NewAnswerer(app.OpenAI, cfg.LLM.ChatModel),
		Index:      app.VectorIndex,
		TextCache:  cache.NewTextCache(app.Redis, cfg.TextCacheTTL()),
		Publisher:  rabbitmqClient.NewChatLogPublisher(app.MQConn, cfg.RabbitMQ.ChatLogQueue),
	})
	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.MaxUploadBytes())

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(cfg.Auth.JWTSecret), authHandler.Me)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	docGroup.GET("", documentHandler.List)
	docGroup.POST("", middleware.LimitBody(cfg.MaxUploadBytes()+uploadOverheadBytes), documentHandler.Upload)
	docGroup.GET("/:id", documentHandler.View)
	docGroup.DELETE("/:id", documentHandler.Delete)
	docGroup.PATCH("/:id", documentHandler.Rename)
	docGroup.POST("/:id/reprocess", documentHandler.Reprocess)
	docGroup.GET("/:id/chats", documentHandler.ChatHistory)

	v1.POST("/ask", middleware.AuthJWT(cfg.Auth.JWTSecret), documentHandler.Ask)

	return router
}
