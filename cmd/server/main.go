package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapp "aisle-server/internal/application/auth"
	creditapp "aisle-server/internal/application/credit"
	historyapp "aisle-server/internal/application/history"
	promotionapp "aisle-server/internal/application/promotion"
	purchaseapp "aisle-server/internal/application/purchase"
	"aisle-server/internal/domain/policy"
	"aisle-server/internal/domain/service"
	"aisle-server/internal/infrastructure/ai"
	"aisle-server/internal/infrastructure/cache"
	"aisle-server/internal/infrastructure/config"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
	"aisle-server/internal/infrastructure/persistence/mysql"
	"aisle-server/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// ポリシーテーブルの整合性チェック（壊れた定義で起動しない）
	if err := policy.Validate(); err != nil {
		log.Fatalf("Invalid credit policy: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer("aisle-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("aisle-server")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// リポジトリの初期化
	ledgerRepo := mysql.NewLedgerRepository(db)
	transactionRepo := mysql.NewTransactionRepository(db)
	purchaseRepo := mysql.NewPurchaseRepository(db)
	promoCodeRepo := mysql.NewPromoCodeRepository(db)

	// トランザクションマネージャーの初期化
	txManager := mysql.NewTransactionManager(db)

	// ドメインサービスとキャッシュの初期化
	creditService := service.NewCreditService(ledgerRepo)
	ledgerCache := cache.NewLedgerCache(&cfg.Cache)

	// AI生成クライアントの初期化
	generator := ai.NewOpenAIClient(&cfg.OpenAI)

	// アプリケーションサービスの初期化
	authAppService := authapp.NewAuthApplicationService(&cfg.JWT, logger)

	creditAppService := creditapp.NewCreditApplicationService(
		ledgerRepo,
		transactionRepo,
		txManager,
		creditService,
		ledgerCache,
		logger,
		metrics,
	)

	historyAppService := historyapp.NewHistoryApplicationService(
		transactionRepo,
		logger,
		metrics,
	)

	purchaseAppService := purchaseapp.NewPurchaseApplicationService(
		purchaseRepo,
		creditAppService,
		logger,
		metrics,
	)

	promotionAppService := promotionapp.NewPromotionApplicationService(
		promoCodeRepo,
		creditAppService,
		logger,
		metrics,
	)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		authAppService,
		creditAppService,
		historyAppService,
		purchaseAppService,
		promotionAppService,
		generator,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// シグナルを待機
	<-quit
	log.Println("Shutting down server...")

	// グレースフルシャットダウン
	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
