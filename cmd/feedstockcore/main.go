// Command feedstockcore runs the field-operation reconciliation pipeline:
// provider merge, decision matrix, bulk-upload assembly, and attestation
// overwrite.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	attestfile "feedstockcore/internal/adapters/attestation"
	"feedstockcore/internal/adapters/canonical"
	"feedstockcore/internal/blob"
	blobcore "feedstockcore/internal/blob/core"
	"feedstockcore/internal/config"
	"feedstockcore/internal/core"
	"feedstockcore/internal/infra/logging"
	prommetrics "feedstockcore/internal/infra/metrics"
	"feedstockcore/internal/infra/persistence/postgres"
	"feedstockcore/internal/infra/persistence/sqlite"
	"feedstockcore/pkg/domain"
)

var (
	configPath  string
	grower      string
	cycle       int
	verbose     bool
	metricsAddr string

	sourceFlags      []string
	attestationsPath string
)

var rootCmd = &cobra.Command{
	Use:   "feedstockcore",
	Short: "Agronomic field-operation reconciliation and CI bulk-upload pipeline",
	Long: `feedstockcore reconciles field operations across provider exports,
derives per-field practice decisions, assembles the carbon-intensity
bulk-upload record set, and applies grower attestation overwrites.

Each subcommand runs one pipeline stage against the configured report
store; run executes all four in order.`,
	SilenceUsage: true,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge provider exports into the comprehensive inputs report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPipeline(cmd.Context(), func(ctx context.Context, p core.Pipeline) error {
			sources, err := readSources(ctx)
			if err != nil {
				return err
			}
			_, err = p.Merge(ctx, grower, cycle, sources)
			return err
		})
	},
}

var matrixCmd = &cobra.Command{
	Use:   "decision-matrix",
	Short: "Build the per-field practice decision matrix",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPipeline(cmd.Context(), func(ctx context.Context, p core.Pipeline) error {
			_, err := p.BuildDecisionMatrix(ctx, grower, cycle)
			return err
		})
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk-upload",
	Short: "Assemble the bulk-upload record set from the decision matrix",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPipeline(cmd.Context(), func(ctx context.Context, p core.Pipeline) error {
			_, err := p.AssembleBulkUpload(ctx, grower, cycle)
			return err
		})
	},
}

var attestCmd = &cobra.Command{
	Use:   "attest",
	Short: "Apply grower attestation overwrites to the bulk upload",
	Long: `Applies the stored attestation overwrite records on top of the
assembled bulk upload. With --file, the given workbook is imported into
the report store first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPipeline(cmd.Context(), func(ctx context.Context, p core.Pipeline) error {
			if attestationsPath != "" {
				if err := importAttestations(ctx, p.Store); err != nil {
					return err
				}
			}
			_, err := p.ApplyAttestations(ctx, grower, cycle)
			return err
		})
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all pipeline stages in order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPipeline(cmd.Context(), func(ctx context.Context, p core.Pipeline) error {
			sources, err := readSources(ctx)
			if err != nil {
				return err
			}
			if attestationsPath != "" {
				if err := importAttestations(ctx, p.Store); err != nil {
					return err
				}
			}
			return p.Run(ctx, grower, cycle, sources)
		})
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the config file")
	rootCmd.PersistentFlags().StringVar(&grower, "grower", "", "grower identifier (required)")
	rootCmd.PersistentFlags().IntVar(&cycle, "cycle", 0, "growing cycle, e.g. 2023 (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	_ = rootCmd.MarkPersistentFlagRequired("grower")
	_ = rootCmd.MarkPersistentFlagRequired("cycle")

	for _, cmd := range []*cobra.Command{mergeCmd, runCmd} {
		cmd.Flags().StringArrayVar(&sourceFlags, "source", nil, "provider export as name=path, repeatable")
	}
	for _, cmd := range []*cobra.Command{attestCmd, runCmd} {
		cmd.Flags().StringVar(&attestationsPath, "file", "", "attestation overwrite workbook (.xlsx) to import")
	}

	rootCmd.AddCommand(mergeCmd, matrixCmd, bulkCmd, attestCmd, runCmd, importCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withPipeline loads config, wires the pipeline collaborators, and runs fn.
func withPipeline(ctx context.Context, fn func(context.Context, core.Pipeline) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, sync, err := logging.New(level)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer sync()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := buildPipeline(ctx, cfg, store, log)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		recorder := prommetrics.NewRecorder()
		p.Metrics = recorder
		srv := &http.Server{Addr: metricsAddr, Handler: recorder.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	return fn(ctx, p)
}

// openStore builds the report store for the configured driver. The
// FEEDSTOCK_STORE_DRIVER environment variable overrides the config file.
func openStore(ctx context.Context, cfg config.Config) (domain.ReportStore, func(), error) {
	driver := cfg.Store.Driver
	if env := os.Getenv("FEEDSTOCK_STORE_DRIVER"); env != "" {
		driver = env
	}
	if driver == "" {
		driver = "blob-fs"
	}

	noop := func() {}
	switch driver {
	case "sqlite":
		artifacts, err := sqlite.NewArtifacts(cfg.Store.Root)
		if err != nil {
			return nil, nil, err
		}
		return reportsStore(artifacts), func() { _ = artifacts.Close() }, nil
	case "postgres":
		artifacts, err := postgres.NewArtifacts(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return reportsStore(artifacts), func() { _ = artifacts.Close() }, nil
	case "blob-fs", "blob-s3", "blob-memory":
		blobs, err := blob.Open(ctx, blob.Config{
			Driver: blobcore.Driver(strings.TrimPrefix(driver, "blob-")),
			Root:   cfg.Store.Root,
			S3: blob.S3Config{
				Region:    cfg.Store.S3.Region,
				Bucket:    cfg.Store.S3.Bucket,
				Endpoint:  cfg.Store.S3.Endpoint,
				PathStyle: cfg.Store.S3.PathStyle,
			},
		})
		if err != nil {
			return nil, nil, err
		}
		return blobReportsStore(blobs, cfg.Store.Prefix), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// readSources parses the --source flags and reads each provider export.
func readSources(ctx context.Context) ([]core.SourceOperations, error) {
	if len(sourceFlags) == 0 {
		return nil, fmt.Errorf("at least one --source name=path is required")
	}
	sources := make([]core.SourceOperations, 0, len(sourceFlags))
	for _, flag := range sourceFlags {
		name, path, ok := strings.Cut(flag, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("malformed --source %q, want name=path", flag)
		}
		adapter := canonical.New(name)
		ops, err := adapter.Read(ctx, path)
		if err != nil {
			return nil, err
		}
		fieldOps := make([]domain.FieldOperation, len(ops))
		for i, op := range ops {
			fieldOps[i] = domain.FieldOperation{CanonicalOperation: op}
		}
		sources = append(sources, core.SourceOperations{Name: name, Operations: fieldOps})
	}
	return sources, nil
}

// importAttestations reads the workbook at attestationsPath into the store.
func importAttestations(ctx context.Context, store domain.ReportStore) error {
	attestations, err := attestfile.ReadFile(attestationsPath)
	if err != nil {
		return err
	}
	key := domain.ReportKey{Grower: grower, GrowingCycle: cycle, Type: domain.ReportAttestations}
	if err := store.SaveAttestations(ctx, key, attestations); err != nil {
		return fmt.Errorf("import attestations: %w", err)
	}
	return nil
}
