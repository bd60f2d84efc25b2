package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appLedger "github.com/storeprime/backend/internal/application/ledger"
	appOrder "github.com/storeprime/backend/internal/application/order"
	"github.com/storeprime/backend/internal/domain/account"
	"github.com/storeprime/backend/internal/domain/cart"
	"github.com/storeprime/backend/internal/domain/product"
	"github.com/storeprime/backend/internal/infrastructure/id"
	"github.com/storeprime/backend/internal/infrastructure/memory"
	notifworker "github.com/storeprime/backend/internal/infrastructure/notification/worker"
	"github.com/storeprime/backend/internal/infrastructure/outbox"
	"github.com/storeprime/backend/internal/pkg/logging"
	httppresentation "github.com/storeprime/backend/internal/presentation/http"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "storeprime")
	env := getenvDefault("ENV", "dev")
	addr := getenvDefault("HTTP_ADDR", ":8080")

	baseLogger := logging.MustNewLogger(serviceName, env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	orderEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_total",
			Help: "Count of order lifecycle events handled.",
		},
		[]string{"event"},
	)
	prometheus.MustRegister(httpRequests, httpDuration, orderEvents)

	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store)
	idGenerator := id.NewUUIDGenerator()

	bus := outbox.NewBus(baseLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	orderService := appOrder.NewService(uow, store.Orders(), idGenerator, bus)
	ledgerService := appLedger.NewService(store.Accounts())

	worker := notifworker.New(bus, orderEvents, baseLogger)
	worker.Start()

	if os.Getenv("SEED_DEMO") == "true" {
		seedDemoData(store, baseLogger)
	}

	handler := httppresentation.NewHandler(orderService, ledgerService, baseLogger, &httppresentation.Metrics{
		Requests: httpRequests,
		Duration: httpDuration,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

// seedDemoData loads a buyer, a seller, a product and a cart item so the
// API can be exercised out of the box.
func seedDemoData(store *memory.Store, logger *zap.Logger) {
	ctx := context.Background()

	buyer, _ := account.New("buyer-1", account.KindBuyer, "Demo Buyer", decimal.NewFromInt(100))
	seller, _ := account.New("seller-1", account.KindSeller, "Demo Seller", decimal.Zero)
	_ = store.Accounts().Save(ctx, buyer)
	_ = store.Accounts().Save(ctx, seller)

	p, _ := product.New("product-1", seller.ID, "Demo Product", decimal.NewFromInt(10), 50)
	_ = store.Products().Save(ctx, p)

	item, _ := cart.NewItem("cart-item-1", buyer.ID, p.ID, 3)
	_ = store.CartItems().Save(ctx, item)

	logger.Info("demo_data_seeded",
		zap.String("buyer_id", buyer.ID),
		zap.String("seller_id", seller.ID),
		zap.String("product_id", p.ID),
	)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
