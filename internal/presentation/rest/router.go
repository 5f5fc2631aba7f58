package rest

import (
	authapp "aisle-server/internal/application/auth"
	creditapp "aisle-server/internal/application/credit"
	historyapp "aisle-server/internal/application/history"
	promotionapp "aisle-server/internal/application/promotion"
	purchaseapp "aisle-server/internal/application/purchase"
	"aisle-server/internal/domain/credit"
	"aisle-server/internal/infrastructure/ai"
	"aisle-server/internal/infrastructure/config"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
	"aisle-server/internal/presentation/rest/handler"
	restmiddleware "aisle-server/internal/presentation/rest/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Router REST APIルーター
type Router struct {
	echo            *echo.Echo
	authHandler     *handler.AuthHandler
	creditHandler   *handler.CreditHandler
	historyHandler  *handler.HistoryHandler
	purchaseHandler *handler.PurchaseHandler
	promoHandler    *handler.PromoHandler
	aiHandler       *handler.AIHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authService *authapp.AuthApplicationService,
	creditService *creditapp.CreditApplicationService,
	historyService *historyapp.HistoryApplicationService,
	purchaseService *purchaseapp.PurchaseApplicationService,
	promotionService *promotionapp.PromotionApplicationService,
	generator ai.Generator,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	// ハンドラーの作成
	authHandler := handler.NewAuthHandler(authService)
	creditHandler := handler.NewCreditHandler(creditService)
	historyHandler := handler.NewHistoryHandler(historyService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	promoHandler := handler.NewPromoHandler(promotionService)
	aiHandler := handler.NewAIHandler(generator)

	r := &Router{
		echo:            e,
		authHandler:     authHandler,
		creditHandler:   creditHandler,
		historyHandler:  historyHandler,
		purchaseHandler: purchaseHandler,
		promoHandler:    promoHandler,
		aiHandler:       aiHandler,
	}

	// ルーティングの設定
	r.setupRoutes(cfg, logger, metrics, creditService)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return r, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func (r *Router) setupRoutes(cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics, creditService *creditapp.CreditApplicationService) {
	e := r.echo

	// API v1グループ
	api := e.Group("/api/v1")

	// トークン発行エンドポイント（開発用、認証不要）
	api.POST("/auth/token", r.authHandler.GenerateToken)

	// 認証が必要なエンドポイント
	authGroup := api.Group("", restmiddleware.AuthMiddleware(&cfg.JWT, logger))

	// クレジット関連エンドポイント
	authGroup.GET("/me/credits", r.creditHandler.GetCredits)
	authGroup.POST("/me/credits/validate", r.creditHandler.ValidateCredits)
	authGroup.GET("/me/credits/history", r.historyHandler.GetTransactionHistory)
	authGroup.GET("/me/features/:feature", r.creditHandler.GetFeatureAccess)

	// 購入・プロモーション関連エンドポイント
	authGroup.POST("/purchases/process", r.purchaseHandler.ProcessPurchase)
	authGroup.POST("/codes/redeem", r.promoHandler.RedeemCode)

	// AI機能エンドポイント（機能ごとのクレジットゲートを通す）
	gate := func(feature credit.Feature) echo.MiddlewareFunc {
		return restmiddleware.CreditGateMiddleware(feature, creditService, logger, metrics)
	}
	authGroup.POST("/ai/draft-message", r.aiHandler.DraftMessage, gate(credit.FeatureDraftMessaging))
	authGroup.POST("/ai/todo-suggestions", r.aiHandler.TodoSuggestions, gate(credit.FeatureTodoGeneration))
	authGroup.POST("/ai/vendor-suggestions", r.aiHandler.VendorSuggestions, gate(credit.FeatureVendorSuggestions))

	// 管理APIエンドポイント（APIキー認証）
	adminGroup := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	adminGroup.GET("/users/:user_id/credits", r.creditHandler.GetCreditsAdmin)
	adminGroup.POST("/users/:user_id/credits/initialize", r.creditHandler.InitializeCredits)
	adminGroup.POST("/users/:user_id/credits/add", r.creditHandler.AddCredits)
	adminGroup.POST("/users/:user_id/credits/deduct", r.creditHandler.DeductCredits)
	adminGroup.GET("/users/:user_id/credits/history", r.historyHandler.GetTransactionHistoryAdmin)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
