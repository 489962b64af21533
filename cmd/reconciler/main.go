package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/henhouse-foods/storefront/internal/config"
	kafkax "github.com/henhouse-foods/storefront/internal/kafka"
	"github.com/henhouse-foods/storefront/internal/kv"
	"github.com/henhouse-foods/storefront/internal/notify"
	"github.com/henhouse-foods/storefront/internal/reconcile"
	"github.com/henhouse-foods/storefront/internal/remote"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis for event dedup
	rdb := kv.New(cfg.RedisAddr)
	defer rdb.Close()

	// producer for the reconciled outcomes
	pReconciled := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicOrderReconciled, 1024)
	pReconciled.Start(ctx)

	svc := &reconcile.Service{
		Orders: remote.NewOrderClient(cfg.OrderServiceURL),
		Dedup:  &reconcile.RedisDedup{Client: rdb, Service: "reconciler"},
		Sink: &notify.Kafka{
			Service:    cfg.ServiceName + "-reconciler",
			Reconciled: pReconciled,
		},
	}

	group := getenv("RECONCILER_GROUP", "storefront-reconciler")
	workers := mustAtoi(os.Getenv("RECONCILER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, notify.TopicOrderDegraded, workers)

	go func() {
		log.Printf("reconciler started: group=%s topic=%s workers=%d", group, notify.TopicOrderDegraded, workers)
		if err := cons.Start(ctx, svc.HandleOrderDegraded); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down reconciler...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pReconciled.Close()
	pReconciled.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
