// Command site serves the marketing site and its live hero viewer.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showcase/internal/telemetry"
	"showcase/site"
)

const serviceName = "showcase-site"

func main() {
	log.SetPrefix("[SITE] ")
	cfg, err := site.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, serviceName)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	if err := site.Run(ctx, cfg); err != nil {
		log.Printf("serve site: %v", err)
		stop()
		os.Exit(1)
	}
}
