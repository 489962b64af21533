package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/henhouse-foods/storefront/internal/cart"
	"github.com/henhouse-foods/storefront/internal/catalog"
	"github.com/henhouse-foods/storefront/internal/checkout"
	"github.com/henhouse-foods/storefront/internal/config"
	"github.com/henhouse-foods/storefront/internal/httpx"
	kafkax "github.com/henhouse-foods/storefront/internal/kafka"
	"github.com/henhouse-foods/storefront/internal/kv"
	"github.com/henhouse-foods/storefront/internal/notify"
	"github.com/henhouse-foods/storefront/internal/postgres"
	"github.com/henhouse-foods/storefront/internal/remote"
	"github.com/henhouse-foods/storefront/internal/wishlist"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// catalog DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis: durable storage for cart/wishlist snapshots
	rdb := kv.New(cfg.RedisAddr)
	defer rdb.Close()
	storage := kv.NewRedis(rdb)

	// Kafka producers, one per storefront topic
	pConfirmed := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicOrderConfirmed, 1024)
	pConfirmed.Start(ctx)
	pDegraded := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicOrderDegraded, 1024)
	pDegraded.Start(ctx)
	pPayment := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicPaymentLink, 1024)
	pPayment.Start(ctx)

	sink := &notify.Kafka{
		Service:   cfg.ServiceName,
		Confirmed: pConfirmed,
		Degraded:  pDegraded,
		Payment:   pPayment,
	}

	resolver := &catalog.PG{DB: db}
	orderSvc := remote.NewOrderClient(cfg.OrderServiceURL)
	paymentSvc := remote.NewPaymentClient(cfg.PaymentServiceURL)

	factory := func(ctx context.Context, session string) *httpx.Engine {
		c := cart.New(ctx, storage, kv.CartKey(session), resolver)
		w := wishlist.New(ctx, storage, kv.WishlistKey(session), resolver)
		return &httpx.Engine{
			Cart:     c,
			Wishlist: w,
			Checkout: checkout.NewOrchestrator(c, orderSvc, paymentSvc, sink, cfg.DeliveryFee),
		}
	}

	router := httpx.NewRouter()
	h := httpx.NewStorefrontHandler(factory, resolver)
	h.Register(router)

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

	pConfirmed.Close() // close inbox -> flush & close writer
	pDegraded.Close()
	pPayment.Close()
	cancel()
	pConfirmed.WaitClosed()
	pDegraded.WaitClosed()
	pPayment.WaitClosed()
}
