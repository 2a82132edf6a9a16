package main

import (
	"log"
	"os"
	"time"

	"github.com/calder-media/newsfront"
)

func main() {
	cfg := newsfront.Config{
		Name:        newsfront.EnvOr("SITE_NAME", "Newsfront"),
		URL:         newsfront.EnvOr("SITE_URL", "http://localhost:3000"),
		Description: os.Getenv("SITE_DESCRIPTION"),
		Language:    newsfront.EnvOr("SITE_LANGUAGE", "en"),
		Addr:        newsfront.EnvOr("ADDR", ":3000"),
		CMSEndpoint: newsfront.MustEnv("CMS_GRAPHQL_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid CACHE_TTL: %v", err)
		}
		cfg.CacheTTL = ttl
	}

	app := newsfront.New(cfg)
	defer app.Close()
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
