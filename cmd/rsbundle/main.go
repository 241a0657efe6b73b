package main

import (
	"bytes"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/rsbundle/internal/config"
	"github.com/frederic-klein/rsbundle/internal/emitter"
	"github.com/frederic-klein/rsbundle/internal/fsys"
	"github.com/frederic-klein/rsbundle/internal/loader"
	"github.com/frederic-klein/rsbundle/internal/resolver"
)

const defaultConfigFile = "bundle.yaml"

var (
	configPath string
	entry      string
	roots      []string
	output     string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rsbundle",
		Short: "Merges a multi-file Rust project into a single source file",
		Long:  "rsbundle inlines every `mod name;` declaration recursively, producing one self-contained .rs file for single-file submission targets.",
	}

	bundleCmd := &cobra.Command{
		Use:   "bundle",
		Short: "Bundle the entry module and everything it declares",
		RunE:  runBundle,
	}

	bundleCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (default ./"+defaultConfigFile+" if present)")
	bundleCmd.Flags().StringVarP(&entry, "entry", "e", "", "Entry module name (default \"main\")")
	bundleCmd.Flags().StringArrayVarP(&roots, "root", "r", nil, "Search root directory, repeatable (default \"src\")")
	bundleCmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default stdout)")
	bundleCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose resolution tracing")

	rootCmd.AddCommand(bundleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBundle(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if entry != "" {
		cfg.Entry = entry
	}
	if len(roots) > 0 {
		cfg.Roots = roots
	}
	if output != "" {
		cfg.Output = output
	}

	fs := fsys.OS{}
	res := resolver.New(fs, cfg.Roots, logger)

	logger.Debug("building module tree", "entry", cfg.Entry, "roots", cfg.Roots)
	tree, err := loader.New(fs, res, logger).Load(cfg.Entry)
	if err != nil {
		return err
	}

	// Emit to memory first so a failed run never leaves partial output.
	var buf bytes.Buffer
	if err := emitter.New(&buf).Emit(tree); err != nil {
		return err
	}

	if cfg.Output == "" {
		if _, err := buf.WriteTo(os.Stdout); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(cfg.Output, buf.Bytes(), 0o644); err != nil {
			return err
		}
	}

	logger.Info("bundle complete", "modules", tree.Count(), "bytes", buf.Len(), "output", outputName(cfg.Output))
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.Default(), nil
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
