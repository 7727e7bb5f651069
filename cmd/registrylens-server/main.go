package main

import (
	"context"
	"flag"
	"registrylens-backend/lib/configutil"
	"registrylens-backend/lib/osutil"
	"registrylens-backend/lib/serviceutil"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	Port          int                 `json:"port"`
	CompanySearch CompanySearchConfig `json:"companysearch"`
	RegisterWatch RegisterWatchConfig `json:"registerwatch"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	checkNow := flag.Bool("check", false, "Sweep every register watch immediately on start.")
	flag.Parse()

	// .env carries the smtp password in dev, deployments set real
	// environment variables
	godotenv.Load()

	ctx := osutil.SignalContext(context.Background())

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}

	r := chi.NewRouter()

	search, err := InitCompanySearch(r, cfg.CompanySearch)
	if err != nil {
		serviceutil.Fatal("init companysearch", err)
	}
	err = InitRegisterWatch(ctx, r, cfg.RegisterWatch, search, checkNow)
	if err != nil {
		serviceutil.Fatal("init registerwatch", err)
	}

	serviceutil.StartHttpServer(ctx, cfg.Port, otelhttp.NewHandler(r, "registrylens-server"))
}
