package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/paddock/internal/preview"
	"github.com/okian/paddock/pkg/logger"
)

func main() {
	var (
		fixtures = flag.String("fixtures", preview.DefaultFixtures, "Fixture catalog for the in-process engine")
		riders   = flag.String("rider", "", "Comma separated rider ids (default: every catalog rider)")
		limit    = flag.Int("limit", preview.DefaultLimit, "Candidates per rider")
		strategy = flag.String("strategy", "", "Scoring strategy: additive or weighted")
		explain  = flag.String("explain", "", "Explain one listing instead of ranking")
		baseURL  = flag.String("url", "", "Query a running server instead")
		timeout  = flag.Duration("timeout", preview.DefaultTimeout, "HTTP request timeout")
		asJSON   = flag.Bool("json", false, "Emit JSON")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		preview.ShowHelp(os.Stdout)
		return
	}

	// Logs go to stderr so stdout stays parseable.
	if err := logger.InitWith(logger.FormatText, os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString("warn")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &preview.Config{
		BaseURL:  *baseURL,
		Fixtures: *fixtures,
		Riders:   splitList(*riders),
		Limit:    *limit,
		Strategy: *strategy,
		Explain:  *explain,
		Timeout:  *timeout,
		JSON:     *asJSON,
	}
	if err := preview.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString("preview failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
