package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/mecolosimo/progressbar/internal/config"
	"github.com/mecolosimo/progressbar/internal/console"
	"github.com/mecolosimo/progressbar/internal/logger"
	"github.com/mecolosimo/progressbar/internal/request"
	"github.com/mecolosimo/progressbar/pkg/progress"
	"github.com/mecolosimo/progressbar/pkg/worker"
)

const version = "1.0"

func main() {
	// Define flags
	var (
		configPath string
		logLevel   string
		label      string
		format     string
		interval   time.Duration
		units      int64
		pace       float64
		workers    int
		grow       bool
		syncMode   bool
		output     string
		showHelp   bool
		showVer    bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&configPath, "c", "", "Path to config file (shorthand)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&label, "label", "", "Bar label; without one the bar shows a percentage")
	flag.StringVar(&label, "l", "", "Bar label (shorthand)")
	flag.StringVar(&format, "format", "", "Three-glyph bar format: begin, fill, end")
	flag.StringVar(&format, "f", "", "Three-glyph bar format (shorthand)")
	flag.DurationVar(&interval, "interval", 0, "Redraw base interval")
	flag.Int64Var(&units, "units", 100, "Demo workload size")
	flag.Int64Var(&units, "n", 100, "Demo workload size (shorthand)")
	flag.Float64Var(&pace, "rate", 25, "Demo units completed per second")
	flag.Float64Var(&pace, "r", 25, "Demo units per second (shorthand)")
	flag.IntVar(&workers, "workers", 0, "Demo parallel workers")
	flag.IntVar(&workers, "w", 0, "Demo parallel workers (shorthand)")
	flag.BoolVar(&grow, "grow", false, "Enlarge the demo workload midway (single worker only)")
	flag.BoolVar(&syncMode, "sync", false, "Redraw on updates instead of a background render loop")
	flag.StringVar(&output, "output", "", "Fetch output file (default: URL basename)")
	flag.StringVar(&output, "o", "", "Fetch output file (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help")
	flag.BoolVar(&showHelp, "h", false, "Show help (shorthand)")
	flag.BoolVar(&showVer, "version", false, "Show version")
	flag.BoolVar(&showVer, "v", false, "Show version (shorthand)")

	flag.Parse()

	if showVer {
		fmt.Printf("progressbar v%s\n", version)
		os.Exit(0)
	}

	if showHelp || len(flag.Args()) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := strings.ToLower(flag.Arg(0))

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override file configuration
	if format != "" {
		cfg.Format = format
	}
	if interval > 0 {
		cfg.UpdateIntervalMS = int(interval / time.Millisecond)
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	// Set up logging
	if logLevel != "" {
		logger.SetLogLevel(logLevel)
	} else if cfg.LogLevel != "" {
		logger.SetLogLevel(cfg.LogLevel)
	}
	logger.SetLogDir(cfg.LogDir)

	log := logger.Default()

	if !console.IsTerminal(os.Stderr) {
		log.Debug().Msg("stderr is not a terminal; frames use the fallback width")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "demo":
		runDemo(ctx, cfg, label, units, pace, grow, syncMode)

	case "fetch":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "fetch requires a URL")
			printUsage()
			os.Exit(1)
		}
		runFetch(ctx, cfg, flag.Arg(1), output, label, syncMode)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`progressbar v%s - single-line terminal progress bars

Usage: progressbar [options] <command>

Commands:
  demo      Render a simulated workload
  fetch     Download a URL behind a transfer progress bar

Options:
  -c, --config <path>     Path to config file
  --log-level <level>     Log level (debug, info, warn, error)
  -l, --label <text>      Bar label (default: completion percentage)
  -f, --format <glyphs>   Three-glyph bar format (default "|=|")
  --interval <duration>   Redraw base interval (default 500ms)
  -n, --units <count>     Demo workload size (default 100)
  -r, --rate <per-sec>    Demo units completed per second (default 25)
  -w, --workers <count>   Demo parallel workers (default 1)
  --grow                  Enlarge the demo workload midway
  --sync                  Redraw on updates instead of a render loop
  -o, --output <path>     Fetch output file (default: URL basename)
  -v, --version           Show version
  -h, --help              Show this help

Examples:
  progressbar demo
  progressbar -l "Processing" -n 500 -r 100 demo
  progressbar -w 8 demo
  progressbar -o archive.tar.gz fetch https://example.com/archive.tar.gz
`, version)
}

// barOptions translates configuration into progress options shared by
// every command.
func barOptions(cfg *config.Config, label string, syncMode bool) []progress.Option {
	opts := []progress.Option{
		progress.WithFormat(cfg.Format),
		progress.WithUpdateInterval(cfg.UpdateInterval()),
		progress.WithFallbackWidth(cfg.FallbackWidth),
		progress.WithDayWidth(cfg.DayWidth),
		progress.WithLogger(logger.New("progress")),
	}
	if label != "" {
		opts = append(opts, progress.WithLabel(label))
	}
	if syncMode {
		opts = append(opts, progress.WithoutRenderLoop())
	}
	return opts
}

func runDemo(ctx context.Context, cfg *config.Config, label string, units int64, pace float64, grow, syncMode bool) {
	log := logger.Default()

	if units < 1 {
		units = 1
	}
	if pace <= 0 {
		pace = 25
	}

	bar := progress.New(units, barOptions(cfg, label, syncMode)...)
	startedAt := time.Now()

	var err error
	if cfg.Workers > 1 {
		err = runDemoParallel(ctx, cfg, bar, units, pace)
	} else {
		err = runDemoPaced(ctx, bar, label, units, pace, grow)
	}
	if err != nil {
		bar.Finish()
		log.Warn().Msg("Demo interrupted")
		os.Exit(1)
	}

	bar.Finish()
	log.Info().
		Int64("units", bar.Max()).
		Dur("took", time.Since(startedAt).Round(time.Millisecond)).
		Msg("Demo complete")
}

// runDemoPaced completes units one at a time on a fixed pace, exercising
// the label and max mutators midway through.
func runDemoPaced(ctx context.Context, bar *progress.Bar, label string, units int64, pace float64, grow bool) error {
	limiter := rate.NewLimiter(rate.Limit(pace), 1)
	relabeled := false

	for bar.Value() < bar.Max() {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		bar.Increment()

		if bar.Value() != units/2 {
			continue
		}
		if grow {
			bar.UpdateMax(bar.Max() + units/4)
			grow = false
		}
		if label != "" && !relabeled {
			bar.UpdateLabel(label + " (second half)")
			relabeled = true
		}
	}
	return nil
}

// runDemoParallel burns the workload down on a bounded worker pool, with
// each completion reported back through the bar. Cancellation cuts the
// in-flight waits short so an interrupt never sits out the pool.
func runDemoParallel(ctx context.Context, cfg *config.Config, bar *progress.Bar, units int64, pace float64) error {
	perItem := time.Duration(float64(time.Second) / pace)

	items := make([]int, units)
	for i := range items {
		items[i] = i
	}

	worker.ProcessWithProgress(items, cfg.Workers, func(int) (struct{}, error) {
		select {
		case <-ctx.Done():
			return struct{}{}, ctx.Err()
		case <-time.After(perItem):
			return struct{}{}, nil
		}
	}, func(completed, total int) {
		bar.Update(int64(completed))
	})

	return ctx.Err()
}

func runFetch(ctx context.Context, cfg *config.Config, rawURL, output, label string, syncMode bool) {
	log := logger.Default()

	client, err := request.New(
		request.WithTimeout(cfg.Timeout()),
		request.WithProxy(cfg.Proxy),
		request.WithLogger(logger.New("request")),
	)
	if err != nil {
		log.Error().Err(err).Msg("Building HTTP client failed")
		os.Exit(1)
	}

	resp, err := client.Get(ctx, rawURL)
	if err != nil {
		log.Error().Err(err).Str("url", rawURL).Msg("Download failed")
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.ContentLength <= 0 {
		log.Error().Str("url", rawURL).Msg("Server did not report a content length; cannot track progress")
		os.Exit(1)
	}

	if output == "" {
		output = filepath.Base(resp.Request.URL.Path)
		if output == "/" || output == "." || output == "" {
			output = "download"
		}
	}

	out, err := os.Create(output)
	if err != nil {
		log.Error().Err(err).Str("path", output).Msg("Creating output file failed")
		os.Exit(1)
	}
	defer out.Close()

	if label == "" {
		label = output
	}

	bar := progress.New(resp.ContentLength, barOptions(cfg, label, syncMode)...)

	written, err := io.Copy(io.MultiWriter(out, bar), resp.Body)
	bar.Finish()
	if err != nil {
		log.Error().Err(err).Str("path", output).Msg("Download interrupted")
		os.Exit(1)
	}

	log.Info().
		Int64("bytes", written).
		Str("path", output).
		Msg("Download complete")
}
