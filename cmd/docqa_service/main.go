package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docqa/internal/billing"
	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/llm"
	"docqa/internal/qa_service/api"
	"docqa/internal/qa_service/service"
	"docqa/internal/rag/embeddings"
	"docqa/internal/rag/index"
	"docqa/internal/rag/memory"
	"docqa/internal/rag/pipeline"
	"docqa/internal/rag/splitters"
	"docqa/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		fmt.Printf("无法加载配置: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	log := logger.New(cfg.App.Name)
	log.Info("Configuration loaded, starting service")

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		log.Fatal(fmt.Sprintf("Failed to create upload directory %q: %v", cfg.Server.UploadDir, err))
	}

	ctx := context.Background()

	// 3. 构建 Embedding 模型（带 LRU 缓存）与 LLM 客户端
	embModel, err := embedding.NewModel(ctx, cfg.Embedding)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create embedding model: %v", err))
	}

	cacheTTL := time.Duration(0)
	if cfg.RAG.EmbeddingCache.TTL != "" {
		cacheTTL, err = time.ParseDuration(cfg.RAG.EmbeddingCache.TTL)
		if err != nil {
			log.Fatal(fmt.Sprintf("Invalid embedding cache TTL %q: %v", cfg.RAG.EmbeddingCache.TTL, err))
		}
	}
	cachedModel, err := embedding.NewCached(embModel, cfg.RAG.EmbeddingCache.Capacity, cacheTTL)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create embedding cache: %v", err))
	}
	embedder := embeddings.NewAdapter(cachedModel)

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create LLM client: %v", err))
	}

	// 4. 组装 RAG 管道
	splitter, err := splitters.NewTokenSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create splitter: %v", err))
	}

	idx := index.New()
	mem := memory.NewBuffer(cfg.RAG.MemoryTokenBudget, nil)

	indexing := pipeline.NewIndexingPipeline(splitter, embedder, idx, logger.New("indexing_pipeline"))
	engine := pipeline.NewQAEngine(embedder, llmClient, idx, mem, cfg.RAG.TopK, logger.New("qa_engine"))

	// 5. 组装计费
	gateway := billing.NewStripeGateway(cfg.Billing.StripeKey)
	ledger := billing.NewLedger(gateway, cfg.Billing.ChargeEvery, cfg.Billing.ChargeAmount, cfg.Billing.Currency, logger.New("billing"))

	// 6. 组装服务与路由
	svc := service.New(indexing, engine, ledger, logger.New("qa_service"))
	handler := api.NewHandler(svc, cfg.Server.UploadDir, cfg.Server.MaxFileSize, logger.New("api"))
	router := api.SetupRouter(handler, cfg.Middleware, log)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		log.Info("Server listening on " + cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(fmt.Sprintf("Server failed: %v", err))
		}
	}()

	// 7. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	log.Info("Server exited")
}
