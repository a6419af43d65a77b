package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"portfolio-rag/handler"
	"portfolio-rag/internal/config"
	"portfolio-rag/internal/integrations/openai"
	"portfolio-rag/internal/integrations/paramstore"
	"portfolio-rag/internal/integrations/pinecone"
	"portfolio-rag/internal/memory"
	"portfolio-rag/internal/retrieval"
	"portfolio-rag/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg := config.Load()
	if err := cfg.MissingError(); err != nil {
		slog.Error("configuration invalid", "err", err)
		os.Exit(1)
	}
	if err := resolveSecrets(ctx, cfg); err != nil {
		slog.Error("failed to resolve secrets", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	pineconeClient, err := pinecone.NewClient(cfg.PineconeAPIKey, cfg.PineconeIndexHost, cfg.EmbedModel)
	if err != nil {
		slog.Error("failed to create Pinecone client", "err", err)
		os.Exit(1)
	}
	openaiClient, err := openai.NewClient(cfg.OpenAIAPIKey)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	// ---- Pipeline ----
	retriever, err := retrieval.NewRetriever(pineconeClient, pineconeClient, cfg.PineconeNamespace, cfg.TopKDefault)
	if err != nil {
		slog.Error("failed to create retriever", "err", err)
		os.Exit(1)
	}
	sessions := memory.NewStore(cfg.MaxSessionTurns)

	chatService, err := usecase.NewChatService(retriever, openaiClient, sessions, cfg.ChatModel, cfg.TopKDefault)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService, handler.HealthInfo{
		PineconeConfigured: cfg.PineconeAPIKey != "",
		IndexHost:          cfg.PineconeIndexHost,
		Namespace:          cfg.PineconeNamespace,
		EmbedModel:         cfg.EmbedModel,
	})
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

// resolveSecrets fills API keys from SSM Parameter Store when they were not
// provided via environment and a parameter prefix is configured.
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	if cfg.ParamPrefix == "" || (cfg.OpenAIAPIKey != "" && cfg.PineconeAPIKey != "") {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}
	store, err := paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
	if err != nil {
		return err
	}

	if cfg.OpenAIAPIKey == "" {
		if cfg.OpenAIAPIKey, err = store.GetSecret(ctx, "open-ai-token"); err != nil {
			return err
		}
	}
	if cfg.PineconeAPIKey == "" {
		if cfg.PineconeAPIKey, err = store.GetSecret(ctx, "pinecone-token"); err != nil {
			return err
		}
	}
	return nil
}
