package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	historyapp "aisle-server/internal/application/history"
	"aisle-server/internal/domain/credit"
	"aisle-server/internal/domain/transaction"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
	restmiddleware "aisle-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newHistoryHandlerTestEnv(txRepo *MockTransactionRepository) (*HistoryHandler, *otelinfra.Logger) {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, _ := otelinfra.NewMetrics("test")

	appService := historyapp.NewHistoryApplicationService(txRepo, logger, metrics)
	return NewHistoryHandler(appService), logger
}

func historyFixture() []*transaction.Transaction {
	spent := transaction.MustNewTransaction(
		"txn_1", "user123", transaction.TransactionTypeSpent, credit.FeatureDraftMessaging,
		1, 1, 0, 14, "", nil,
	)
	bonus := transaction.MustNewTransaction(
		"txn_2", "user123", transaction.TransactionTypeBonus, credit.FeatureBonus,
		25, 0, 25, 39, "promo", nil,
	)
	return []*transaction.Transaction{bonus, spent}
}

func TestHistoryHandler_GetTransactionHistory(t *testing.T) {
	tests := []struct {
		name           string
		tokenUserID    string
		query          string
		setupMock      func(*MockTransactionRepository)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:        "正常系: 履歴取得成功",
			tokenUserID: "user123",
			setupMock: func(mtr *MockTransactionRepository) {
				mtr.On("FindByUserID", mock.Anything, "user123", transaction.Filter{}, 50, 0).Return(historyFixture(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:        "正常系: トランザクションタイプでフィルタ",
			tokenUserID: "user123",
			query:       "?transaction_type=spent",
			setupMock: func(mtr *MockTransactionRepository) {
				spentOnly := historyFixture()[1:]
				mtr.On("FindByUserID", mock.Anything, "user123", transaction.Filter{TransactionType: "spent"}, 50, 0).Return(spentOnly, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "異常系: user_idがトークンにない",
			tokenUserID:    "",
			setupMock:      func(mtr *MockTransactionRepository) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: 不正なlimit",
			tokenUserID:    "user123",
			query:          "?limit=abc",
			setupMock:      func(mtr *MockTransactionRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: 負のoffset",
			tokenUserID:    "user123",
			query:          "?offset=-1",
			setupMock:      func(mtr *MockTransactionRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			txRepo := new(MockTransactionRepository)
			tt.setupMock(txRepo)

			handler, logger := newHistoryHandlerTestEnv(txRepo)

			req := httptest.NewRequest(http.MethodGet, "/me/credits/history"+tt.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.tokenUserID != "" {
				c.Set("user_id", tt.tokenUserID)
			}

			middlewareFunc := restmiddleware.ErrorHandlerMiddleware(logger)
			handlerFunc := middlewareFunc(func(c echo.Context) error {
				return handler.GetTransactionHistory(c)
			})
			err := handlerFunc(c)
			if err != nil {
				e.HTTPErrorHandler(err, c)
			}
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var response TransactionHistoryResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
				assert.Len(t, response.Transactions, tt.expectedCount)
			}
		})
	}
}

func TestHistoryHandler_GetTransactionHistoryAdmin(t *testing.T) {
	e := echo.New()
	txRepo := new(MockTransactionRepository)
	txRepo.On("FindByUserID", mock.Anything, "user123", transaction.Filter{}, 50, 0).Return(historyFixture(), nil)

	handler, logger := newHistoryHandlerTestEnv(txRepo)

	req := httptest.NewRequest(http.MethodGet, "/admin/users/user123/credits/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("user123")

	middlewareFunc := restmiddleware.ErrorHandlerMiddleware(logger)
	handlerFunc := middlewareFunc(func(c echo.Context) error {
		return handler.GetTransactionHistoryAdmin(c)
	})
	err := handlerFunc(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}

	assert.Equal(t, http.StatusOK, rec.Code)
	var response TransactionHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Transactions, 2)
	assert.Equal(t, "txn_2", response.Transactions[0].TransactionID)
	assert.Equal(t, "bonus", response.Transactions[0].TransactionType)
	assert.Equal(t, "25", response.Transactions[0].Amount)
	assert.Equal(t, "txn_1", response.Transactions[1].TransactionID)
	assert.Equal(t, "draft_messaging", response.Transactions[1].Feature)
	assert.Equal(t, "14", response.Transactions[1].BalanceAfter)
}
