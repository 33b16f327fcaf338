package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaume/remotejobs/internal/config"
	"github.com/jaume/remotejobs/internal/model"
	"github.com/jaume/remotejobs/internal/ratelimit"
	"github.com/jaume/remotejobs/internal/retry"
	"github.com/jaume/remotejobs/internal/scraper"
	"github.com/jaume/remotejobs/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "remotejobs",
	Short:        "Remote job aggregator",
	Long:         "Collects remote job postings from multiple sources into a local database.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: REMOTEJOBS_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > REMOTEJOBS_CONFIG env var > "./config.yaml".
// A missing default config file is not an error; built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv("REMOTEJOBS_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = "config.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.DBPath, err)
	}
	logger.Debug("store opened", "path", cfg.DBPath)
	return st, nil
}

func newScraper(name string, httpClient *http.Client) (model.Scraper, bool) {
	switch name {
	case "remoteok":
		return scraper.NewRemoteOK(httpClient), true
	case "weworkremotely":
		return scraper.NewWeWorkRemotely(httpClient), true
	case "indeed":
		return scraper.NewIndeed(httpClient), true
	case "reddit":
		return scraper.NewReddit(httpClient), true
	default:
		return nil, false
	}
}

// buildScrapers assembles the enabled scrapers, each wrapped with retry and
// source-level rate limiting. only, when non-empty, restricts to one source.
func buildScrapers(cfg *config.Config, only string, logger *slog.Logger) ([]model.Scraper, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	limiter := ratelimit.NewSourceLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.SourceOverrides)

	var scrapers []model.Scraper
	for _, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}
		if only != "" && src.Name != only {
			continue
		}

		sc, ok := newScraper(src.Name, httpClient)
		if !ok {
			logger.Warn("unknown source, skipping", "source", src.Name)
			continue
		}

		sc = retry.Wrap(sc, 2, 5*time.Second, logger)
		sc = ratelimit.Limited(sc, limiter)
		scrapers = append(scrapers, sc)
		logger.Debug("registered source", "source", src.Name)
	}

	if len(scrapers) == 0 {
		if only != "" {
			return nil, fmt.Errorf("source %q is not enabled or not known", only)
		}
		return nil, fmt.Errorf("no sources enabled")
	}
	return scrapers, nil
}
