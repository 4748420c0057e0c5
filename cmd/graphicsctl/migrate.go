package main

import (
	"context"
	"fmt"
	"strconv"

	"graphics-server/migrations"
	"graphics-server/pkg/migration"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", cobra.NoArgs, func(ctx context.Context, m *migration.Migrator, _ []string) error {
			return m.Up(ctx)
		}),
		migrateAction("down", "Roll back every migration", cobra.NoArgs, func(ctx context.Context, m *migration.Migrator, _ []string) error {
			return m.Down(ctx)
		}),
		migrateAction("steps N", "Apply N migrations (negative N rolls back)", cobra.ExactArgs(1), func(ctx context.Context, m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q: %w", args[0], err)
			}
			return m.Steps(ctx, n)
		}),
		migrateAction("force VERSION", "Set the schema version without running migrations", cobra.ExactArgs(1), func(ctx context.Context, m *migration.Migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return m.ForceVersion(ctx, v)
		}),
	)
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *migration.Migrator) error {
				version, dirty, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %t\n", version, dirty)
				return nil
			})
		},
	})
	return cmd
}

func migrateAction(use, short string, args cobra.PositionalArgs, run func(context.Context, *migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, positional []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *migration.Migrator) error {
				return run(ctx, m, positional)
			})
		},
	}
}

func withMigrator(cmd *cobra.Command, fn func(context.Context, *migration.Migrator) error) error {
	cfg, err := loadCLIConfig(envFile)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := cfg.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	m := migration.NewMigrator(migration.Config{
		MigrationsFS: migrations.FS,
		LockTimeout:  cfg.LockTimeout,
	}, pool)
	return fn(ctx, m)
}
