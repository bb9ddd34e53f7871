// orderctl is a small operator tool for Ordr: it loads a YAML run profile
// the same way a host process would and validates it, and it can render a
// graph's dependency structure as a mermaid diagram for inspection. Ordr
// graph topology is Go code rather than data, so orderctl has no graph of
// its own to load from the command line; -diagram instead renders the
// taxonomy graph bundled under examples, annotated against a job
// targeting its two most distant leaves.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/ordr-dev/ordr/config"
	"github.com/ordr-dev/ordr/examples"
	"github.com/ordr-dev/ordr/mermaid"
)

func main() {
	var (
		profilePath = flag.String("profile", "", "path to a YAML run profile to validate")
		diagram     = flag.Bool("diagram", false, "print a mermaid diagram of the bundled taxonomy example graph and exit")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()

	if *diagram {
		if err := printDiagram(); err != nil {
			log.Fatalf("orderctl: %v", err)
		}
		return
	}

	if *profilePath == "" {
		fmt.Fprintln(os.Stderr, "usage: orderctl -profile path/to/profile.yaml\n       orderctl -diagram")
		os.Exit(2)
	}

	if err := validateProfile(logger, *profilePath); err != nil {
		log.Fatalf("orderctl: %v", err)
	}
}

func printDiagram() error {
	g, err := examples.BuildTaxonomy()
	if err != nil {
		return fmt.Errorf("building demo graph: %w", err)
	}
	diagram, err := mermaid.Job(g, examples.TaxonomyDemoJob())
	if err != nil {
		return fmt.Errorf("rendering diagram: %w", err)
	}
	fmt.Println(diagram)
	return nil
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("orderctl: building logger: %v", err)
	}
	return logger
}

func validateProfile(logger *zap.Logger, path string) error {
	loader := config.NewLoader()
	cfg, err := loader.LoadFile(context.Background(), path)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	logger.Info("profile valid",
		zap.String("name", cfg.Metadata.Name),
		zap.Int64("concurrency_limit", cfg.ConcurrencyLimit),
		zap.Float64("rate_limit_per_second", cfg.RateLimitPerSecond),
		zap.Int("retry_max_attempts", cfg.Retry.MaxAttempts),
	)
	fmt.Printf("profile %q is valid (%d execute option(s) derived)\n", cfg.Metadata.Name, len(cfg.ExecuteOptions()))
	return nil
}
