// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sujikathir/test-gen/internal/artifact"
	"github.com/sujikathir/test-gen/internal/config"
	"github.com/sujikathir/test-gen/internal/coverage"
	"github.com/sujikathir/test-gen/internal/llmclient"
	"github.com/sujikathir/test-gen/internal/observability"
	"github.com/sujikathir/test-gen/internal/orchestrator"
	"github.com/sujikathir/test-gen/internal/pattern"
	"github.com/sujikathir/test-gen/internal/project"
	"github.com/sujikathir/test-gen/internal/source"
)

// Function variables for dependency injection in tests.
var (
	newLLMClient = llmclient.NewClient
	getwd        = os.Getwd
)

type rootOptions struct {
	dryRun   bool
	logLevel string
}

// NewRootCommand creates a fresh root command. Each call returns an
// independent instance so flags never leak between executions.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "testgen [config-file]",
		Short: "testgen writes JUnit tests for the methods your test suite misses.",
		Long: `testgen reads a JaCoCo coverage report, finds every method below the
configured coverage threshold and asks an AI backend to write a JUnit 5 test
for it. Without a config-file argument <project root>/testgen.json is used and
created with defaults when missing.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, args, opts)
		},
	}
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "analyze coverage and build prompts without calling the AI backend or writing files")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override logger.level (debug, info, warn, error)")
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	return rootCmd
}

// Execute runs the root command. A cancelled context is returned as is so the
// caller can exit cleanly.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func runGenerate(ctx context.Context, cmd *cobra.Command, args []string, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	wd, err := getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	root, err := project.FindRoot(wd)
	if err != nil {
		return err
	}

	// Variables already present in the environment take precedence over .env.
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := filepath.Join(root, config.DefaultFileName)
	if len(args) == 1 {
		configPath = args[0]
	}
	cfg, created, err := config.Load(viper.New(), configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logger.Level = opts.logLevel
	}
	if err := cfg.ResolvePaths(root); err != nil {
		return err
	}

	logger, closer, err := observability.NewLogger(cfg.Logger, zapcore.Lock(zapcore.AddSync(cmd.OutOrStdout())))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closer.Close()
	defer observability.Sync(logger)

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Starting testgen",
		zap.String("version", Version),
		zap.String("project_root", root),
		zap.String("config", configPath),
	)
	if created {
		logger.Info("No configuration found, wrote defaults.", zap.String("path", configPath))
	}

	orch, err := buildOrchestrator(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}

	summary, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	for _, path := range summary.Written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

func buildOrchestrator(ctx context.Context, cfg *config.Config, opts *rootOptions, logger *zap.Logger) (*orchestrator.Orchestrator, error) {
	locator, err := source.NewLocator(cfg.Coverage.SourceDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create source locator: %w", err)
	}

	var (
		client llmclient.Client
		writer orchestrator.TestWriter
	)
	if !opts.dryRun {
		client, err = newLLMClient(ctx, cfg.AIProvider, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AI backend: %w", err)
		}
		writer = artifact.NewWriter(cfg.Output.Dir, logger)
	}

	return orchestrator.New(
		orchestrator.Options{
			Coverage: coverage.Options{
				TraceFile: cfg.Coverage.ExecFile,
				ClassDir:  cfg.Coverage.ClassDir,
				Threshold: float64(cfg.Coverage.Threshold),
				Filter:    pattern.NewFilter(cfg.TargetPackages, cfg.Exclusions),
			},
			DryRun: opts.dryRun,
		},
		logger,
		coverage.NewAnalyzer(nil, logger),
		locator,
		client,
		writer,
		orchestrator.NewPacer(cfg.Pacing.Delay()),
	)
}
