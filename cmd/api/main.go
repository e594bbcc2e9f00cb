package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/mealdrop/go-delivery-orders/internal/auth"
	"github.com/mealdrop/go-delivery-orders/internal/catalog"
	"github.com/mealdrop/go-delivery-orders/internal/config"
	"github.com/mealdrop/go-delivery-orders/internal/httpx"
	kafkax "github.com/mealdrop/go-delivery-orders/internal/kafka"
	"github.com/mealdrop/go-delivery-orders/internal/orders"
	"github.com/mealdrop/go-delivery-orders/internal/postgres"
	"github.com/mealdrop/go-delivery-orders/internal/redisx"
	"github.com/mealdrop/go-delivery-orders/internal/reviews"
	"github.com/mealdrop/go-delivery-orders/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	createdProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	createdProd.Start(ctx)
	statusProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	statusProd.Start(ctx)
	reviewProd := kafkax.NewProducer(cfg.KafkaBrokers, reviews.TopicReviewCreated, 256)
	reviewProd.Start(ctx)

	// Services
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	userRepo := &users.Repo{DB: db}
	userSvc := users.NewService(userRepo, tokens, cfg.BcryptCost)
	catalogSvc := catalog.NewService(&catalog.Repo{DB: db}, rdb)
	orderSvc := orders.NewService(
		&orders.Repo{DB: db},
		catalogSvc,
		userRepo,
		&orders.StatusCache{R: rdb},
		createdProd,
		statusProd,
		cfg.ServiceName,
	)
	reviewSvc := reviews.NewService(&reviews.Repo{DB: db}, catalogSvc, reviewProd, cfg.ServiceName)

	// Router & handlers
	router := httpx.NewRouter(cfg.CORSOrigins)
	ah := &httpx.AuthHandler{Users: userSvc}
	ch := &httpx.CatalogHandler{Catalog: catalogSvc}
	oh := &httpx.OrdersHandler{Svc: orderSvc}
	rh := &httpx.ReviewsHandler{Svc: reviewSvc}

	ah.RegisterPublic(router)
	ch.RegisterPublic(router)
	rh.RegisterPublic(router)
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokens))
		ah.RegisterProtected(r)
		oh.RegisterProtected(r)
		rh.RegisterProtected(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	createdProd.Close() // tutup inbox -> flush & close writer
	statusProd.Close()
	reviewProd.Close()
	cancel() // stop producer loop
	createdProd.WaitClosed()
	statusProd.WaitClosed()
	reviewProd.WaitClosed()
}
