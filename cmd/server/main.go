package main

import (
	"context"
	"log"

	"ticketing-backend/config"
	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/cache"
	"ticketing-backend/internal/database"
	"ticketing-backend/internal/delivery"
	"ticketing-backend/internal/handler"
	"ticketing-backend/internal/queue"
	"ticketing-backend/internal/repository"
	"ticketing-backend/internal/service"
	"ticketing-backend/internal/worker"
	"ticketing-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	defer logger.L.Sync()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// Repositories
	eventRepo := repository.NewEventRepository(pool)
	performanceRepo := repository.NewPerformanceRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Delivery pipeline: Redis Stream queue + background worker
	deliveryQueue, err := queue.NewRedisStreamDeliveryQueue(rdb, cfg.Worker.ConsumerID, nil)
	if err != nil {
		log.Fatalf("Failed to initialize delivery queue: %v", err)
	}

	deliveryService := service.NewDeliveryService(
		ticketRepo, eventRepo, userRepo,
		delivery.NewPDFRenderer(),
		delivery.NewSMTPSender(&cfg.SMTP),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveryWorker := worker.NewDeliveryWorker(deliveryService, deliveryQueue)
	if err := deliveryWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start delivery worker: %v", err)
	}

	// Services
	purchaseService := service.NewPurchaseService(
		pool, orderRepo, ticketRepo, performanceRepo, paymentRepo, userRepo, deliveryQueue,
	)
	cancellationService := service.NewCancellationService(pool, orderRepo, ticketRepo, performanceRepo)
	ticketService := service.NewTicketService(pool, ticketRepo, performanceRepo)
	performanceService := service.NewPerformanceService(pool, performanceRepo)
	eventService := service.NewEventService(eventRepo)
	paymentService := service.NewPaymentService(paymentRepo)
	seatHoldService := service.NewSeatHoldService(cache.NewSeatHoldManager(rdb), service.DefaultHoldTTL)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(auth.Middleware(cfg.JWT.Secret))

	handler.NewOrderHandler(purchaseService, cancellationService).RegisterRoutes(api)
	handler.NewTicketHandler(ticketService, cancellationService).RegisterRoutes(api)
	handler.NewPerformanceHandler(performanceService).RegisterRoutes(api)
	handler.NewEventHandler(eventService).RegisterRoutes(api)
	handler.NewPaymentHandler(paymentService).RegisterRoutes(api)
	handler.NewSeatHandler(seatHoldService).RegisterRoutes(api)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
