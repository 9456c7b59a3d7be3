package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/config"
	"github.com/beduldjakurra/stockproduksi/internal/server"
	"github.com/beduldjakurra/stockproduksi/internal/util"
)

var (
	port    = flag.Int("port", 0, "listen port (config.toml wins when it sets one)")
	devMode = flag.Bool("dev", false, "development mode")
	dataDir = flag.String("dataDir", "", "data directory (overrides config file)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  STO Stock Produksi - PT Fuji Seat Indonesia")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		fmt.Printf("gagal memuat konfigurasi, memakai bawaan: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	log, err := newLogger(cfg.Server.DevMode)
	if err != nil {
		fmt.Printf("gagal membuat logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.Run(addr); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	if !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("buka browser secara manual: %s\n", url)
		}
	} else {
		fmt.Printf("mode pengembangan: buka %s\n", url)
	}

	fmt.Println("\ntekan Ctrl+C untuk berhenti...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nmenutup layanan...")
	if err := srv.SaveNow(); err != nil {
		log.Error("save on exit failed", zap.Error(err))
	}
	if err := srv.Close(); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
