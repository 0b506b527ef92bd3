package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	adaptershttp "github.com/solarbank/transferd/internal/adapter/http"
	"github.com/solarbank/transferd/internal/adapter/http/handler"
	"github.com/solarbank/transferd/internal/adapter/repository/postgres"
	"github.com/solarbank/transferd/internal/infrastructure/metrics"
	"github.com/solarbank/transferd/internal/usecase"
	"github.com/solarbank/transferd/tests/testutil"
)

// newTransferUseCase wires a use case against the test database.
func newTransferUseCase(testDB *testutil.TestDB) *usecase.TransferUseCase {
	pool := testDB.Pool
	accountRepo := postgres.NewAccountRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	txManager := postgres.NewTxManager(pool, 3*time.Second)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(zerolog.Nop())

	return usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, idGen, retrier, 5*time.Second)
}

// newRouter builds the full HTTP stack against the test database.
func newRouter(t *testing.T, testDB *testutil.TestDB) http.Handler {
	t.Helper()

	pool := testDB.Pool
	accountRepo := postgres.NewAccountRepository(pool)
	idGen := postgres.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(accountRepo, idGen)
	transferUC := newTransferUseCase(testDB)

	m := metrics.New(prometheus.NewRegistry())

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC, m),
		TransferHandler: handler.NewTransferHandler(transferUC, m),
		HealthHandler:   handler.NewHealthHandler(pool, nil),
	})
}
