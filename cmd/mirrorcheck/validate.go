package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathanspw/mirrors/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the service config and every mirror config",
		Long: `Validate the service config and every mirror descriptor in the mirrors
directory against their JSON schemas without probing anything. The service
config is already validated on startup, so this command mainly reports
which mirror files would be skipped by a check run.`,
		Example: `  mirrorcheck validate
  mirrorcheck validate --mirrors-dir ./mirrors`,
		RunE: validateRun,
	}
}

func validateRun(cmd *cobra.Command, args []string) error {
	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}

	valid := 0
	var invalid []string

	err := filepath.WalkDir(globalCfg.MirrorsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		if _, err := config.LoadMirror(path); err != nil {
			logger.Error("invalid mirror config", "path", path, "error", err)
			invalid = append(invalid, path)
			return nil
		}
		valid++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking mirrors dir: %w", err)
	}

	fmt.Printf("Service config: OK\n")
	fmt.Printf("Mirror configs: %d valid, %d invalid\n", valid, len(invalid))
	for _, path := range invalid {
		fmt.Printf("  - %s\n", path)
	}

	if len(invalid) > 0 {
		return fmt.Errorf("validation failed: %d invalid mirror configs", len(invalid))
	}
	return nil
}
