package main

import (
	"fmt"
	"os"
	"time"

	bidding "auction-rooms/internal/biddingEngine"
	"auction-rooms/internal/config"
	"auction-rooms/internal/events"
	"auction-rooms/internal/ledger"
	model "auction-rooms/internal/models"
	"auction-rooms/internal/registry"
	"auction-rooms/internal/server"
	"auction-rooms/internal/wallet"
	"auction-rooms/utils"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store := ledger.NewMemoryLedger()
	funds := wallet.NewMemoryWallet()
	bus := events.NewBus()

	prepopulateAuctions(store, funds)

	reg := registry.New(store, bus, cfg.Room)
	reg.SetSweepInterval(cfg.SweepInterval(registry.DefaultSweepInterval))
	reg.Run()
	defer reg.Stop()

	engine := bidding.NewEngine(reg, store, funds, nil, bus)

	router := server.SetupRouter(reg, engine)

	port := getPort(cfg.HTTP.Addr)
	utils.Info("starting auction room server", map[string]any{"addr": port})
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulateAuctions seeds sample auctions and balances into the in-memory collaborators
func prepopulateAuctions(store *ledger.MemoryLedger, funds *wallet.MemoryWallet) {
	now := time.Now()
	auctions := []model.AuctionSnapshot{
		{AuctionID: "auction1", StartPrice: 1000, EndTime: now.Add(1 * time.Hour), Status: model.StatusLive},
		{AuctionID: "auction2", StartPrice: 5000, EndTime: now.Add(2 * time.Hour), Status: model.StatusLive},
		{AuctionID: "auction3", StartPrice: 250, EndTime: now.Add(24 * time.Hour), Status: model.StatusUpcoming},
	}
	for _, a := range auctions {
		store.AddAuction(a)
	}

	for i := 1; i <= 5; i++ {
		funds.SetBalance(fmt.Sprintf("user%d", i), 1_000_000)
	}
}

// getPort returns the server address from env or the config default
func getPort(def string) string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return def
}
