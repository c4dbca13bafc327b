package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	pg "learning-access/internal/infra/db/postgres"
	"learning-access/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "migrate [up|down [version]|status]",
		Short: "Run database migrations",
		Args:  migrateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command = args[0]
			}
			version := int64(-1)
			if len(args) > 1 {
				version, _ = strconv.ParseInt(args[1], 10, 64)
			}
			return runMigrate(cmd, opts, command, version, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text or json)")
	return cmd
}

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "up", "down", "status":
	default:
		return fmt.Errorf("invalid migrate command: %q", args[0])
	}
	if len(args) == 2 {
		if args[0] != "down" {
			return fmt.Errorf("invalid argument combination: %q", args)
		}
		if v, err := strconv.ParseInt(args[1], 10, 64); err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %q", args[1])
		}
	}
	return nil
}

func runMigrate(cmd *cobra.Command, opts *rootOptions, command string, version int64, format string) error {
	cfg, _, err := opts.load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := pg.OpenSQL(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	var popts []goose.ProviderOption
	if format == "json" {
		popts = append(popts, goose.WithLogger(goose.NopLogger()))
	}
	provider, err := pg.NewMigrationProvider(db, migrations.EmbedMigrations, popts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch command {
	case "down":
		return migrateDown(ctx, provider, version, format, out)
	case "status":
		return migrateStatus(ctx, provider, format, out)
	default:
		results, err := provider.Up(ctx)
		if err != nil {
			return err
		}
		return printResults(results, format, out)
	}
}

func migrateDown(ctx context.Context, provider *goose.Provider, version int64, format string, out io.Writer) error {
	if version >= 0 {
		results, err := provider.DownTo(ctx, version)
		if err != nil {
			return err
		}
		return printResults(results, format, out)
	}
	result, err := provider.Down(ctx)
	if err != nil {
		return err
	}
	return printResults([]*goose.MigrationResult{result}, format, out)
}

func migrateStatus(ctx context.Context, provider *goose.Provider, format string, out io.Writer) error {
	statuses, err := provider.Status(ctx)
	if err != nil {
		return err
	}
	if format == "json" {
		return json.NewEncoder(out).Encode(statuses)
	}
	fmt.Fprintln(out, "    Applied At                  Migration")
	fmt.Fprintln(out, "    =======================================")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(out, "    %-24s -- %s\n", appliedAt, s.Source.Path)
	}
	return nil
}

func printResults(results []*goose.MigrationResult, format string, out io.Writer) error {
	if format == "json" {
		if results == nil {
			results = []*goose.MigrationResult{}
		}
		return json.NewEncoder(out).Encode(map[string]interface{}{"applied": results})
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "no migrations to apply")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%-4s %s (%s)\n", r.Direction, r.Source.Path, r.Duration.Round(time.Millisecond))
	}
	return nil
}
