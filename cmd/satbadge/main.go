package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/satbadge/internal/app"
	"github.com/relabs-tech/satbadge/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to satbadge.yaml (empty: built-in defaults)")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	log.Println("starting satbadge (NMEA -> fix store -> OLED)")

	if err := app.RunBadge(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
