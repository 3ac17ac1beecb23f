package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// config is read once at startup from the environment (and .env if present).
type config struct {
	Host             string
	Port             string
	SiteURL          string // canonical origin, no trailing slash
	AdClient         string // ad-network publisher ID for the page's script tag
	CountdownSeconds int
	SessionTTL       time.Duration
	DBURL            string
}

func defaultConfig() config {
	return config{
		Host:             "localhost",
		Port:             "3000",
		SiteURL:          "https://diabete-random-generate.vercel.app",
		AdClient:         "ca-pub-1833210144684624",
		CountdownSeconds: 5,
		SessionTTL:       30 * time.Minute,
	}
}

// loadConfig loads .env (a missing file is fine) and overlays env vars on the
// defaults.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (config, error) {
	cfg := defaultConfig()
	if v := getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("SITE_URL"); v != "" {
		cfg.SiteURL = strings.TrimRight(v, "/")
	}
	if v := getenv("AD_CLIENT"); v != "" {
		cfg.AdClient = v
	}
	if v := getenv("AD_COUNTDOWN_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return config{}, fmt.Errorf("AD_COUNTDOWN_SECONDS must be a non-negative integer, got %q", v)
		}
		cfg.CountdownSeconds = n
	}
	if v := getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return config{}, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", v)
		}
		cfg.SessionTTL = d
	}
	cfg.DBURL = getenv("DB_URL")
	return cfg, nil
}

func (c config) addr() string {
	return c.Host + ":" + c.Port
}

func (c config) logSummary() {
	source := "embedded"
	if c.DBURL != "" {
		source = "database"
	}
	log.Printf("[config] addr=%s site=%s countdown=%ds session_ttl=%s catalog=%s",
		c.addr(), c.SiteURL, c.CountdownSeconds, c.SessionTTL, source)
}
