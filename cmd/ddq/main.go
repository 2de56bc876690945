// Copyright 2025 The DBQ Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/DataBridgeTech/ddqcore"
	"github.com/DataBridgeTech/ddqcore/reporters"
	"github.com/DataBridgeTech/ddqcore/sqltable"
)

var (
	checksFile    string
	driverName    string
	dsn           string
	maxConcurrent int
	markdown      bool
	verbose       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ddq",
		Short: "Declarative data-quality checks for tabular datasets",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a check-suite file against a datasource",
		RunE:  runChecks,
	}
	runCmd.Flags().StringVarP(&checksFile, "checks", "c", "", "path to the YAML check-suite file")
	runCmd.Flags().StringVar(&driverName, "driver", "postgres", "datasource driver (postgres, mysql, clickhouse)")
	runCmd.Flags().StringVar(&dsn, "dsn", "", "driver-specific connection string")
	runCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 1, "number of checks to run in parallel")
	runCmd.Flags().BoolVar(&markdown, "markdown", false, "render the report as markdown instead of colored console output")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = runCmd.MarkFlagRequired("checks")
	_ = runCmd.MarkFlagRequired("dsn")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the ddqcore library version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(ddqcore.GetDdqCoreLibVersion())
		},
	}

	rootCmd.AddCommand(runCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChecks(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := ddqcore.LoadChecksFileConfig(checksFile)
	if err != nil {
		return fmt.Errorf("failed to load checks file: %w", err)
	}

	database, err := sqltable.OpenDSN(driverName, dsn, logger)
	if err != nil {
		return err
	}

	checks, err := ddqcore.BuildChecks(cfg, database)
	if err != nil {
		return err
	}

	var reporter ddqcore.Reporter
	if markdown {
		reporter = reporters.NewMarkdownReporter(os.Stdout)
	} else {
		reporter = reporters.NewConsoleReporter(os.Stdout)
	}

	runner := ddqcore.NewRunner(logger)
	results, errs := ddqcore.RunAll(cmd.Context(), runner, checks, maxConcurrent, reporter)
	for _, err := range errs {
		logger.Error("check run failed", "error", err.Error())
	}

	failed := len(errs) > 0
	for _, result := range results {
		if result == nil || !result.Success {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}
