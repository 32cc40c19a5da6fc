package main // Entry point package

import (
    "log" // Logging library

    "github.com/joho/godotenv"    // .env loader for local development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/cinevn/backend/internal/config"     // Environment config loader
    "github.com/cinevn/backend/internal/database"   // MySQL connector
    "github.com/cinevn/backend/internal/handler"    // HTTP handlers
    "github.com/cinevn/backend/internal/queue"      // RabbitMQ publisher and consumer
    "github.com/cinevn/backend/internal/realtime"   // WebSocket hub
    "github.com/cinevn/backend/internal/repository" // Data access layer
    "github.com/cinevn/backend/internal/router"     // Route registration
    "github.com/cinevn/backend/internal/service"    // Business logic
)

func main() {
    _ = godotenv.Load() // Load .env if present; real env wins in production

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName) // Connect to MySQL
    if err != nil {
        log.Fatalf("mysql: %v", err)
    }
    defer db.Close()

    rdb, err := config.NewRedisClient() // Connect to Redis; seat holds fail closed without it
    if err != nil {
        log.Fatalf("redis: %v", err)
    }
    defer rdb.Close()

    // Seat-hold coordination: Redis lock store + WebSocket hub behind one coordinator.
    locks := repository.NewSeatLockRepo(rdb, cfg.SeatHoldTTL)
    hub := realtime.NewHub()
    holds := service.NewHoldCoordinator(locks, hub)

    // Persistence and payment wiring.
    orders := repository.NewOrderRepo(db)
    accounts := repository.NewAccountRepo(db)
    showtimes := repository.NewShowtimeRepo(db)
    publisher := queue.NewPublisher(cfg.AMQPURL)
    payments := service.NewPaymentService(cfg.VNPay, orders, accounts, showtimes, holds, publisher)

    go queue.StartOrderConsumer(cfg.AMQPURL) // Drain completed-order events in the background

    e := echo.New() // Create Echo instance
    router.Register(e, router.Handlers{
        Auth:     handler.NewAuthHandler(cfg, accounts),
        Payment:  handler.NewPaymentHandler(payments),
        Ticket:   handler.NewTicketHandler(payments),
        Showtime: handler.NewShowtimeHandler(showtimes, holds),
        WS:       handler.NewWSHandler(hub, holds),
    }, cfg.JWTSecret)

    addr := ":" + cfg.Port                                // Address string with port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

    if err := e.Start(addr); err != nil { // Start HTTP server
        log.Fatal(err)
    }
}
