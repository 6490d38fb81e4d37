package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"room-booking-backend/config"
	"room-booking-backend/internal/api"
	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/cache"
	"room-booking-backend/internal/db"
	"room-booking-backend/internal/importer"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/notification"
	"room-booking-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "booking-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	overlap, err := availability.ParseOverlapRule(cfg.Availability.Overlap)
	if err != nil {
		logger.Fatalf("invalid availability configuration: %v", err)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Fatalf("failed to initialize cache: %v", err)
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}

	baseStore := store.NewGormStore(gormDB, cfg.Database.ShadowWrites)
	appStore := store.NewCachedStore(baseStore, backend, cfg.Cache.TTL)
	logger.Printf("data store initialized (cache backend %q, shadow writes %t)", cfg.Cache.Backend, cfg.Database.ShadowWrites)

	// Push notifications are optional; without VAPID keys cancellations
	// are not announced.
	var webpushOptions *webpush.Options
	var notifier booking.Notifier
	var pool *notification.Pool
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Println("VAPID keys not configured, push notifications disabled")
	}

	svc := booking.NewService(appStore, notifier, booking.Options{
		StorageOffset: cfg.Availability.StorageOffset,
		Overlap:       overlap,
		Zoom:          cfg.Resources.Zoom,
	})

	logger.Printf("display zone %s (storage offset %s, overlap %s)", svc.Location(), svc.Normalizer().Offset(), overlap)

	if len(cfg.Resources.Rooms) > 0 {
		if err := svc.SeedRooms(ctx, roomsFromConfig(cfg.Resources.Rooms)); err != nil {
			logger.Fatalf("failed to seed rooms: %v", err)
		}
		logger.Printf("seeded %d rooms from configuration", len(cfg.Resources.Rooms))
	}

	if cfg.Importer.Enabled {
		importerSvc := importer.NewService(cfg.Importer, appStore, svc.Normalizer())
		go importerSvc.Run(ctx)
	}

	// Initialize router
	router := api.NewRouter(api.NewHandler(svc, appStore, webpushOptions), cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	if pool != nil {
		pool.Wait()
	}
	logger.Println("Server gracefully stopped")
}

func roomsFromConfig(rooms []config.RoomConfig) []model.RoomCoord {
	out := make([]model.RoomCoord, len(rooms))
	for i, r := range rooms {
		out[i] = model.RoomCoord{
			RoomNo:   r.RoomNo,
			Capacity: r.Capacity,
			X:        r.X,
			Y:        r.Y,
			Floor:    r.Floor,
		}
	}
	return out
}
