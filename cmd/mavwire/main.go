package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DanWilson00/mavwire/config"
	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/link"
)

var (
	configPath string
	verbose    bool

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "mavwire",
	Short: "Telemetry dialect compiler and stream tool",
	Long: `mavwire compiles XML message definitions into wire metadata, inspects
the resulting layouts, and replays recorded byte streams through the
frame parser and decoder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = c
		}
		if verbose || cfg.Log.Level == "debug" {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			dialect.SetLogger(logger)
			link.SetLogger(logger)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(replayCmd)
}

// loadRegistry builds a registry from an XML definition document or a
// precompiled JSON document. An empty path falls back to the config.
func loadRegistry(ctx context.Context, path string) (*dialect.Registry, error) {
	if path == "" {
		if cfg.Dialect.Document != "" {
			path = cfg.Dialect.Document
		} else {
			path = cfg.Dialect.Path
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no dialect given; pass --dialect or set one in the config file")
	}

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		doc, err := dialect.LoadDocument(data)
		if err != nil {
			return nil, err
		}
		d, err := doc.Build()
		if err != nil {
			return nil, err
		}
		return dialect.NewRegistry(d), nil
	}

	resolver, name := dialect.FileResolver(path)
	c := dialect.NewCompiler(resolver)
	d, err := c.Compile(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, diag := range c.Diagnostics() {
		fmt.Fprintf(os.Stderr, "warning: %v\n", diag)
	}
	return dialect.NewRegistry(d), nil
}
