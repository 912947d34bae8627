package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathanspw/mirrors/internal/check"
	"github.com/jonathanspw/mirrors/internal/config"
)

var (
	checkMirrorNames string
	checkConcurrency int
	checkHead        bool
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe mirrors and report which are available",
		Long: `Probe every mirror in the mirrors directory (or only the mirrors named
with --mirror) and report, per mirror, whether all required repository
metadata URLs are reachable. The command exits non-zero when any checked
mirror is unavailable.`,
		Example: `  mirrorcheck check
  mirrorcheck check --mirror mirror.example.org,mirror.example.net
  mirrorcheck check --head --concurrency 30`,
		RunE: checkRun,
	}

	cmd.Flags().StringVar(&checkMirrorNames, "mirror", "", "comma-separated list of mirror names to check (default: all)")
	cmd.Flags().IntVar(&checkConcurrency, "concurrency", check.DefaultConcurrency, "number of mirrors checked in parallel")
	cmd.Flags().BoolVar(&checkHead, "head", false, "probe with HEAD requests instead of GET (skips the body read)")

	return cmd
}

func checkRun(cmd *cobra.Command, args []string) error {
	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}

	mirrors, err := config.LoadMirrorsDir(globalCfg.MirrorsDir, logger)
	if err != nil {
		return fmt.Errorf("failed to load mirror configs: %w", err)
	}

	if checkMirrorNames != "" {
		wanted := make(map[string]bool)
		for _, name := range strings.Split(checkMirrorNames, ",") {
			wanted[strings.TrimSpace(name)] = true
		}
		var filtered []*config.Mirror
		for _, m := range mirrors {
			if wanted[m.Name] {
				filtered = append(filtered, m)
			}
		}
		mirrors = filtered
	}

	if len(mirrors) == 0 {
		logger.Warn("no mirrors to check")
		return nil
	}

	checker := check.New(globalCfg, logger)
	checker.SetUseGet(!checkHead)

	results, err := checker.CheckAll(context.Background(), mirrors, checkConcurrency)
	if err != nil {
		return fmt.Errorf("mirror check failed: %w", err)
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%-50s %s\n", "Mirror", "Available")
	fmt.Println(strings.Repeat("-", 60))
	unavailable := 0
	for _, name := range names {
		status := "yes"
		if !results[name] {
			status = "NO"
			unavailable++
		}
		fmt.Printf("%-50s %s\n", name, status)
	}
	fmt.Println()
	fmt.Printf("Checked: %d  Available: %d  Unavailable: %d\n",
		len(results), len(results)-unavailable, unavailable)

	if unavailable > 0 {
		return fmt.Errorf("%d of %d mirrors unavailable", unavailable, len(results))
	}
	return nil
}
