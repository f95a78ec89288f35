package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitepdf"
	"github.com/fwojciec/sitepdf/crawl"
	"github.com/fwojciec/sitepdf/etree"
	sitehttp "github.com/fwojciec/sitepdf/http"
	"github.com/fwojciec/sitepdf/kafka"
	"github.com/fwojciec/sitepdf/redis"
	siteslog "github.com/fwojciec/sitepdf/slog"
	"github.com/fwojciec/sitepdf/sqlite"
)

// AppName is used for the XDG config and data directories.
const AppName = "sitepdf"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path for the run archive. Set before calling Run().
	DBPath string

	// SQLite database used by the run archive.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && first == nil {
			first = err
		}
		m.DB = nil
	}
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Now:    time.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name(AppName),
		kong.Description("Collect every PDF URL listed in a website's sitemaps."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Configuration(YAMLResolver, configPaths()...),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no URL specified. Run 'sitepdf --help' for usage")
	}

	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	if !cli.NoArchive {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			m.DB = nil
			fmt.Fprintf(stderr, "Hint: Set SITEPDF_DB or --db to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		deps.Runs = sqlite.NewRunService(m.DB)
	}

	if strings.HasPrefix(kongCtx.Command(), "crawl") {
		m.wireCrawl(deps, &cli.Crawl)
	}

	return kongCtx.Run(deps)
}

// wireCrawl builds the fetch pipeline and optional sinks for the crawl command.
func (m *Main) wireCrawl(deps *Dependencies, cmd *CrawlCmd) {
	logger := deps.Logger

	opts := []sitehttp.Option{sitehttp.WithTimeout(cmd.Timeout)}
	if cmd.UserAgent != "" {
		opts = append(opts, sitehttp.WithUserAgent(cmd.UserAgent))
	}
	var fetcher sitepdf.SitemapFetcher = sitehttp.NewFetcher(opts...)
	if cmd.RPS > 0 {
		fetcher = crawl.NewLimitedFetcher(fetcher, crawl.NewDomainLimiter(cmd.RPS))
	}
	deps.Fetcher = siteslog.NewLoggingFetcher(fetcher, logger)
	deps.Parser = siteslog.NewLoggingParser(etree.NewParser(), logger)
	deps.Discoverer = siteslog.NewLoggingDiscoverer(crawl.NewBootstrapper(deps.Fetcher, logger), logger)

	if cmd.KafkaBroker != "" {
		publisher := kafka.NewPublisher(cmd.KafkaBroker, cmd.KafkaTopic)
		m.closers = append(m.closers, publisher)
		deps.Publisher = siteslog.NewLoggingPublisher(publisher, logger)
	}
	if cmd.RedisAddr != "" {
		store := redis.NewStatusStore(cmd.RedisAddr, redis.DefaultPrefix, redis.DefaultTTL)
		m.closers = append(m.closers, store)
		deps.Status = store
	}
}

func defaultDBPath() string {
	if path := os.Getenv("SITEPDF_DB"); path != "" {
		return path
	}
	dir := filepath.Join(xdg.DataHome, AppName)
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sitepdf.db")
}

// configPaths lists the YAML files consulted for flag defaults, in
// priority order.
func configPaths() []string {
	return []string{
		".sitepdf.yaml",
		filepath.Join(xdg.ConfigHome, AppName, "config.yaml"),
	}
}
