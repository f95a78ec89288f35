package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitepdf"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Fetcher    sitepdf.SitemapFetcher
	Parser     sitepdf.SitemapParser
	Discoverer sitepdf.SitemapDiscoverer

	// Optional sinks. Nil disables the corresponding feature.
	Runs      sitepdf.RunService
	Publisher sitepdf.PDFPublisher
	Status    sitepdf.StatusStore

	Now func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool            `short:"v" help:"Enable debug logging"`
	DB        string          `help:"Run archive database path (default $SITEPDF_DB or XDG data dir)"`
	NoArchive bool            `help:"Do not archive runs to the database"`
	Config    kong.ConfigFlag `help:"Load flag defaults from a YAML file"`

	Crawl CrawlCmd `cmd:"" default:"withargs" help:"Crawl a website's sitemaps for PDF URLs"`
	Runs  RunsCmd  `cmd:"" help:"List archived crawl runs"`
}

// CrawlCmd is the "crawl" subcommand, and the default when only a URL is given.
type CrawlCmd struct {
	URL string `arg:"" help:"Homepage URL of the website"`

	Workers int           `short:"w" default:"5" help:"Concurrent sitemap fetches"`
	Delay   float64       `short:"d" default:"1.0" help:"Delay in seconds before each request"`
	Timeout time.Duration `short:"t" default:"15s" help:"Per-request timeout"`
	Output  string        `short:"o" default:"pdf_urls.txt" help:"Output file for PDF URLs"`
	Format  string        `short:"f" default:"text" enum:"text,markdown" help:"Output format (text, markdown)"`

	UserAgent         string   `help:"User-Agent header for sitemap requests"`
	RPS               float64  `name:"rps" default:"0" help:"Per-domain request rate limit (0 disables)"`
	IncludeSubdomains bool     `help:"Accept URLs on any subdomain of the registrable domain"`
	Include           []string `short:"I" help:"Only keep PDF URLs matching regex (repeatable)"`
	Exclude           []string `short:"X" help:"Drop PDF URLs matching regex (repeatable)"`

	KafkaBroker string `help:"Kafka broker address for publishing PDF URLs"`
	KafkaTopic  string `default:"sitepdf.pdfs" help:"Kafka topic for PDF URLs"`
	RedisAddr   string `help:"Redis address for live crawl status"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Limit   int    `short:"n" default:"20" help:"Maximum number of runs to list"`
	BaseURL string `name:"url" help:"Only list runs for this base URL"`
}
