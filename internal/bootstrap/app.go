package bootstrap

import (
	"context"
	"fmt"
	"time"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"gopherai-docqa/internal/ai"
	"gopherai-docqa/internal/config"
	"gopherai-docqa/internal/model"
	milvusClient "gopherai-docqa/internal/platform/milvus"
	mysqlClient "gopherai-docqa/internal/platform/mysql"
	rabbitmqClient "gopherai-docqa/internal/platform/rabbitmq"
	redisClient "gopherai-docqa/internal/platform/redis"
	"gopherai-docqa/internal/repository"
	"gopherai-docqa/internal/storage"
	"gopherai-docqa/internal/vectorstore"
	"gopherai-docqa/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Milvus        milvusclient.Client
	OpenAI        *openai.Client
	VectorIndex   *vectorstore.Index
	Files         *storage.LocalStorage
	ChatLogWorker *worker.ChatLogWorker

	StartedAt time.Time
}

// New connects every backing service and fails fast on missing configuration.
// Partially opened resources are closed on error.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, StartedAt: time.Now()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Files, err = storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		return nil, err
	}

	a.MySQL, err = mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := a.MySQL.AutoMigrate(&model.User{}, &model.Document{}, &model.ChatLog{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	a.Redis, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ChatLogQueue)
	if err != nil {
		return nil, err
	}

	a.Milvus, err = milvusClient.New(ctx, cfg.Milvus.Address, cfg.Milvus.APIKey)
	if err != nil {
		return nil, err
	}
	a.VectorIndex = vectorstore.NewIndex(a.Milvus, cfg.Milvus.Collection, cfg.LLM.EmbeddingDim)
	if err := a.VectorIndex.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("prepare vector index failed: %w", err)
	}

	a.OpenAI = ai.NewOpenAICompatibleClient(ai.ClientConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLMTimeout(),
	})

	a.ChatLogWorker = worker.NewChatLogWorker(a.MQConn, repository.NewChatLogRepository(a.MySQL), cfg.RabbitMQ.ChatLogQueue)
	if err := a.ChatLogWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start chat log worker failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"collection": a.VectorIndex.Collection(),
		"upload_dir": a.Files.Dir(),
	}).Info("dependencies ready")
	return a, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.ChatLogWorker != nil {
		a.ChatLogWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Milvus != nil {
		if err := a.Milvus.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
