package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshnichols-lang/crossdesk/internal/bridge"
	"github.com/joshnichols-lang/crossdesk/internal/deposit"
	"github.com/joshnichols-lang/crossdesk/internal/platform/gateway"
	"github.com/joshnichols-lang/crossdesk/internal/platform/hyperliquid"
	"github.com/joshnichols-lang/crossdesk/internal/platform/orderly"
	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
	"github.com/joshnichols-lang/crossdesk/internal/server"
	"github.com/joshnichols-lang/crossdesk/internal/server/handler"
	"github.com/joshnichols-lang/crossdesk/internal/server/middleware"
	"github.com/joshnichols-lang/crossdesk/internal/server/ws"
	"github.com/joshnichols-lang/crossdesk/internal/service"
)

// services holds the service layer shared by both operating modes.
type services struct {
	positions *service.PositionService
	balances  *service.BalanceService
	closes    *service.CloseService
	orders    *service.OrderService
	deposits  *service.DepositService
}

// buildServices constructs the venue clients and service layer from the
// configuration and wired dependencies.
func (a *App) buildServices(deps *Dependencies) *services {
	hl := hyperliquid.NewClient(a.cfg.Hyperliquid.BaseURL, a.cfg.Hyperliquid.APIKey)
	orderlyClient := orderly.NewClient(a.cfg.Orderly.BaseURL, a.cfg.Orderly.APIKey)
	poly := polymarket.NewClient(a.cfg.Polymarket.BaseURL, a.cfg.Polymarket.APIKey)
	gw := gateway.NewClient(a.cfg.Gateway.BaseURL, a.cfg.Gateway.APIKey)

	positionSvc := service.NewPositionService(
		hl, orderlyClient, poly,
		deps.PositionCache, deps.OrderCache,
		deps.LockManager, deps.SignalBus,
		a.cfg.Wallet.Address,
		a.logger,
	)
	balanceSvc := service.NewBalanceService(
		gw, deps.BalanceCache, deps.SignalBus,
		a.cfg.Wallet.Address,
		a.logger,
	)
	closeSvc := service.NewCloseService(
		hl, positionSvc,
		deps.CloseLogStore, deps.SignalBus, deps.Notifier,
		a.logger,
	)

	guard := service.NewTradeGuard(a.cfg.Guard.MinimumMaticForGas)
	launcher := bridge.NewLauncher(a.cfg.Bridge.WidgetHost, a.cfg.Bridge.DestinationChainID)
	orderSvc := service.NewOrderService(poly, balanceSvc, guard, launcher, a.logger)

	tokens := make(map[string]deposit.Token, len(a.cfg.Deposit.Tokens))
	for _, t := range a.cfg.Deposit.Tokens {
		tokens[strings.ToUpper(t.Symbol)] = deposit.Token{
			Symbol:   t.Symbol,
			Address:  t.Address,
			Decimals: t.Decimals,
			ChainID:  t.ChainID,
		}
	}
	depositSvc := service.NewDepositService(
		deposit.Config{
			DestChainID:       a.cfg.Deposit.DestChainID,
			DestTokenAddress:  a.cfg.Deposit.DestTokenAddress,
			SlippageTolerance: a.cfg.Deposit.SlippageTolerance,
		},
		bridge.NewClient(a.cfg.Bridge.AggregatorURL),
		tokens,
		deps.DepositStore,
		a.logger,
	)

	return &services{
		positions: positionSvc,
		balances:  balanceSvc,
		closes:    closeSvc,
		orders:    orderSvc,
		deposits:  depositSvc,
	}
}

// startPollers launches the position, order, and balance refresh loops.
func (a *App) startPollers(ctx context.Context, g *errgroup.Group, svcs *services) {
	g.Go(func() error {
		return svcs.positions.RunPositionPoller(ctx, a.cfg.Poll.Positions.Duration)
	})
	g.Go(func() error {
		return svcs.positions.RunOrderPoller(ctx, a.cfg.Poll.Orders.Duration)
	})
	g.Go(func() error {
		return svcs.balances.Run(ctx, a.cfg.Poll.Balances.Duration)
	})
}

// startArchiver launches the history archiver when both the database and
// object storage are wired.
func (a *App) startArchiver(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if deps.BlobWriter == nil || deps.CloseLogStore == nil {
		return
	}
	archiver := service.NewArchiver(
		deps.CloseLogStore, deps.DepositStore, deps.BlobWriter,
		a.cfg.Archive.Retention.Duration,
		a.logger,
	)
	g.Go(func() error {
		return archiver.Run(ctx, a.cfg.Archive.Interval.Duration)
	})
}

// ServeMode runs the full dashboard backend: the REST + WebSocket API server,
// the refresh pollers, and the history archiver when storage is wired.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)
	launcher := bridge.NewLauncher(a.cfg.Bridge.WidgetHost, a.cfg.Bridge.DestinationChainID)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Positions: handler.NewPositionHandler(svcs.positions, svcs.closes, a.logger),
		Orders:    handler.NewOrderHandler(svcs.orders, a.logger),
		Balances:  handler.NewBalanceHandler(svcs.balances, a.logger),
		Bridge:    handler.NewBridgeHandler(launcher, a.logger),
		Deposits:  handler.NewDepositHandler(svcs.deposits, a.logger),
	}
	if deps.CloseLogStore != nil && deps.DepositStore != nil {
		handlers.History = handler.NewHistoryHandler(deps.CloseLogStore, deps.DepositStore, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.InfoContext(ctx, "HTTP server shutting down")
		return srv.Shutdown(shutCtx)
	})

	a.startPollers(ctx, g, svcs)
	a.startArchiver(ctx, g, deps)

	return g.Wait()
}

// MonitorMode runs the refresh pollers and a read-only HTTP surface (health,
// positions, orders, balances, and the WebSocket feed) without any of the
// mutating endpoints.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	mux := http.NewServeMux()

	health := handler.NewHealthHandler(a.logger)
	mux.HandleFunc("GET /api/health", health.HealthCheck)

	ph := handler.NewPositionHandler(svcs.positions, svcs.closes, a.logger)
	mux.HandleFunc("GET /api/positions", ph.ListPositions)
	mux.HandleFunc("GET /api/orders", ph.ListOrders)

	bh := handler.NewBalanceHandler(svcs.balances, a.logger)
	mux.HandleFunc("GET /api/balances", bh.GetBalances)
	mux.HandleFunc("GET /api/wallet", bh.GetWallet)

	mux.HandleFunc("GET /ws", hub.HandleWS)

	var h http.Handler = mux
	h = middleware.Logging(a.logger)(h)
	h = middleware.CORS(a.cfg.Server.CORSOrigins)(h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening (read-only)",
			slog.Int("port", a.cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	a.startPollers(ctx, g, svcs)

	return g.Wait()
}
