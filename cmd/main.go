package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"item-catalog-service/internal/config"
	"item-catalog-service/internal/dataset"
	"item-catalog-service/internal/logger"
)

const (
	defaultAppName = "ItemCatalogService"
	appVersion     = "1.0.0"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not fatal: variables may come from the real environment.
		log.Println("INFO: .env file not found, relying on system environment variables.")
	}

	rootCmd := &cobra.Command{
		Use:   "itemcatalog",
		Short: "Item catalog API server",
		Long:  "Serves and mutates a JSON-file backed item catalog over HTTP and gRPC.",
	}
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, nil, err
	}
	appLogger = appLogger.WithFields("app", defaultAppName)
	zap.ReplaceGlobals(appLogger.Desugar())
	return cfg, appLogger, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer appLogger.Sync()
			return runServer(cfg, appLogger)
		},
	}
}

func newGenerateCommand() *cobra.Command {
	var (
		size   int
		output string
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic item dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			if size <= 0 {
				return fmt.Errorf("size must be positive, got %d", size)
			}
			appLogger.Infow("generating dataset", "size", size, "output", output)
			start := time.Now()
			if err := dataset.NewGenerator(seed).Generate(contextOrBackground(cmd), output, size); err != nil {
				return err
			}
			appLogger.Infow("dataset generated", "size", size, "output", output, "duration", time.Since(start))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 50000, "Number of items to generate")
	cmd.Flags().StringVar(&output, "output", "dataset_50000.json", "Output file")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks a fresh one)")
	return cmd
}

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve, and bootstrap if needed, the dataset file and print its path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			gen := dataset.NewGenerator(cfg.Dataset.GenerateSeed)
			path := dataset.NewResolver(cfg.Dataset, gen, appLogger).Resolve(contextOrBackground(cmd))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", defaultAppName, appVersion)
		},
	}
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
