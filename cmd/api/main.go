package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/config"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/db"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/httpserver"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/notify"
	accountrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/account"
	addressrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/address"
	basketrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/basket"
	categoryrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/category"
	orderrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/order"
	partrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/part"
	quoterepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/quote"
	tokenrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/token"
	basketsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/basket"
	checkoutsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/checkout"
	identitysvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/identity"
	ordersvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/order"
	partsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/part"
	quotesvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/quote"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	redisClient, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer redisClient.Close()

	var notifier notify.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := notify.NewKafka(cfg.KafkaBrokers, cfg.NotifyTopic, logger)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	} else {
		notifier = notify.NewLog(logger)
	}

	accountRepo := accountrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	addressRepo := addressrepo.NewPostgres(dbpool)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	partRepo := partrepo.NewPostgres(dbpool, logger)
	quoteRepo := quoterepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	accountBaskets := basketrepo.NewPostgres(dbpool)
	deviceBaskets := basketrepo.NewRedis(redisClient, cfg.DeviceBasketTTL)

	identityService := identitysvc.New(accountRepo, tokenRepo)
	partService := partsvc.New(partRepo)
	basketService := basketsvc.New(accountBaskets, deviceBaskets, partRepo, notifier)
	quoteService := quotesvc.New(quoteRepo, notifier)
	orderService := ordersvc.New(orderRepo, quoteService)
	checkoutService := checkoutsvc.New(basketService, quoteService, addressRepo, orderService, notifier)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		IdentitySvc:  identityService,
		BasketSvc:    basketService,
		CheckoutSvc:  checkoutService,
		QuoteSvc:     quoteService,
		OrderSvc:     orderService,
		PartSvc:      partService,
		CategoryRepo: categoryRepo,
		AddressRepo:  addressRepo,
		AdminToken:   cfg.AdminToken,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
