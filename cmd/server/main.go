package main // Entry point package

import (
    "log" // Logging library

    "github.com/joho/godotenv"    // .env loader for local development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/scanchain/scanchain/internal/blob"
    "github.com/scanchain/scanchain/internal/config"
    "github.com/scanchain/scanchain/internal/database"
    "github.com/scanchain/scanchain/internal/handler"
    "github.com/scanchain/scanchain/internal/ledger"
    "github.com/scanchain/scanchain/internal/middleware"
    "github.com/scanchain/scanchain/internal/queue"
    "github.com/scanchain/scanchain/internal/repository"
    "github.com/scanchain/scanchain/internal/router"
    "github.com/scanchain/scanchain/internal/service"
)

func main() {
    // Load .env if present; in production the variables come from the
    // environment directly.
    _ = godotenv.Load()

    cfg := config.Load()
    ledgerCfg := config.LoadLedgerConfig()
    blobCfg := config.LoadBlobConfig()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Stores and repositories.
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    batches := repository.NewMySQLBatchStore(db)

    // Ledger client per configuration. The mock backend is a labeled
    // stand-in for local development; it is never a fallback.
    var ledgerClient ledger.Client
    switch ledgerCfg.Backend {
    case config.LedgerBackendGateway:
        ledgerClient = ledger.NewGatewayLedger(ledgerCfg.GatewayURL, ledgerCfg.Timeout)
    default:
        log.Printf("ledger: using in-process mock backend")
        ledgerClient = ledger.NewMockLedger()
    }

    var blobStore blob.Store
    switch blobCfg.Backend {
    case config.BlobBackendBucket:
        blobStore = blob.NewBucketStore(blobCfg.BucketURL, blobCfg.Timeout)
    default:
        log.Printf("blob: using in-memory store")
        blobStore = blob.NewMemoryStore()
    }

    // Services.
    orchestrator := service.NewOrchestrator(batches, users, ledgerClient, blobStore)
    recorder := service.NewScanRecorder(batches, queue.NewPublisher())
    aggregator := service.NewDashboardAggregator(batches, users)

    // Handlers.
    authH := handler.NewAuthHandler(cfg, users, tokens)
    batchH := handler.NewBatchHandler(cfg, orchestrator, batches, users)
    scanH := handler.NewScanHandler(recorder, batches, users)
    verifyH := handler.NewVerifyHandler(orchestrator.Verifier, batches)
    searchH := handler.NewSearchHandler(batches)
    dashH := handler.NewDashboardHandler(aggregator)
    userH := handler.NewUserHandler(users)

    e := echo.New()

    // Redis-backed rate limiting and response caching; both disable
    // themselves when Redis is not configured.
    rdb := config.NewRedisClient()
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterPublic(e, batchH, scanH, verifyH, searchH)
    router.RegisterProvenance(e, batchH, scanH, dashH, userH, cfg.JWTSecret)

    // Consume scan.recorded events into the audit log.
    go func() {
        if err := queue.StartScanConsumer(); err != nil {
            log.Printf("scan-consumer: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
