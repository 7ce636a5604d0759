package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopledger/internal/config"
	"shopledger/internal/handler"
	"shopledger/internal/infrastructure/cache"
	"shopledger/internal/infrastructure/database"
	"shopledger/internal/infrastructure/mq"
	"shopledger/internal/job"
	"shopledger/internal/repository"
	"shopledger/internal/service"
	"shopledger/pkg/idgen"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	workerID := flag.Int64("worker-id", 1, "snowflake worker id")
	flag.Parse()

	cfg := config.LoadConfig(*configPath)
	idgen.Init(*workerID)

	db := database.InitMySQL(&cfg.MySQL)
	redisClient := cache.InitRedis(&cfg.Redis)
	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	accountingRepo := repository.NewAccountingRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	shopRepo := repository.NewShopRepository(db)

	accountingSvc := service.NewAccountingService(db, accountingRepo, outboxRepo)
	orderSvc := service.NewOrderService(db, orderRepo, productRepo, inventoryRepo, accountingSvc)
	inventorySvc := service.NewInventoryService(db, inventoryRepo, productRepo)
	reportSvc := service.NewReportService(orderRepo, accountingRepo, productRepo)
	cartSvc := service.NewCartService(redisClient, productRepo, orderSvc,
		time.Duration(cfg.Business.CartTTLMinutes)*time.Minute)
	forecastSvc := service.NewForecastService(db, productRepo, inventoryRepo,
		cfg.Business.ForecastWindowDays, cfg.Business.ForecastHorizonDays)

	dispatcher := job.NewOutboxDispatcher(outboxRepo, cfg.Business.MaxRetryCount)
	dispatcher.Start()
	defer dispatcher.Stop()

	router := handler.NewRouter(handler.Handlers{
		Auth:       handler.NewAuthHandler(shopRepo),
		Order:      handler.NewOrderHandler(orderSvc),
		Inventory:  handler.NewInventoryHandler(inventorySvc),
		Accounting: handler.NewAccountingHandler(reportSvc, outboxRepo),
		Cart:       handler.NewCartHandler(cartSvc),
		Forecast:   handler.NewForecastHandler(forecastSvc),
	}, cfg.Auth.JWTSecret)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		config.Logger().Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			config.Logger().Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	config.Logger().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		config.Logger().Errorf("forced shutdown: %v", err)
	}
}
