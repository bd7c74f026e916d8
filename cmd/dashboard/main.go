// Web dashboard for the MEV block analyzer
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metachris/go-ethutils/utils"
	"github.com/metachris/mev-block-analyzer/analyzer"
	"github.com/metachris/mev-block-analyzer/config"
	"github.com/metachris/mev-block-analyzer/dashboard"
	"github.com/metachris/mev-block-analyzer/etherscan"
	"github.com/metachris/mev-block-analyzer/flashbots"
	"github.com/metachris/mev-block-analyzer/metrics"
)

func main() {
	log.SetOutput(os.Stdout)
	cfg := config.MustLoad()

	addrPtr := flag.String("addr", cfg.ListenAddr, "listen address")
	flashbotsPtr := flag.Bool("flashbots", false, "query the Flashbots mev-blocks API for bundles in the block")
	flag.Parse()

	m := metrics.NewMetrics(nil)

	client := etherscan.NewClient(cfg.APIKey, cfg.EtherscanURL)
	client.OnRequest = m.RecordAPIRequest

	service := analyzer.NewService(client, cfg)
	service.Metrics = m
	if *flashbotsPtr {
		service.Flashbots = flashbots.NewClient(cfg.FlashbotsURL)
	}

	server, err := dashboard.New(*addrPtr, service, cfg.BlockNumber)
	utils.Perror(err)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	case sig := <-shutdown:
		log.Println("Shutting down:", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Println("Shutdown error:", err)
		}
	}
}
