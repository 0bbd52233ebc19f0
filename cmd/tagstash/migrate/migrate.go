// Package migratecmder provides the migrate command for managing the storage
// schema.
package migratecmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/storage"
)

const migrateLongDesc string = `Manage the storage schema.

Schema migrations are embedded in the binary and applied automatically
whenever the store is opened. Use these subcommands to apply them ahead of
time or to revert them.

  tagstash migrate up      Apply every pending migration
  tagstash migrate down    Revert every migration, dropping all records`

const migrateShortDesc string = "Manage the storage schema"

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: migrateShortDesc,
		Long:  migrateLongDesc,
	}

	cmd.AddCommand(newDirectionCmd("up", "Apply every pending migration", "Applying migrations",
		func(ctx context.Context, m storage.Migrator) error { return m.Migrate(ctx) },
	))
	cmd.AddCommand(newDirectionCmd("down", "Revert every migration, dropping all records", "Reverting migrations",
		func(ctx context.Context, m storage.Migrator) error { return m.MigrateDown(ctx) },
	))

	return cmd
}

func newDirectionCmd(use, short, step string, apply func(context.Context, storage.Migrator) error) *cobra.Command {
	var flags stashopen.StorageFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, configDir, err := stashopen.LoadViper(cmd, config.StorageFlags...)
			if err != nil {
				return err
			}

			driver, err := stashopen.OpenDriver(cmd.Context(), v, configDir, stashopen.NewLogger(cmd))
			if err != nil {
				return err
			}
			defer driver.Close()

			m, ok := driver.(storage.Migrator)
			if !ok {
				return errors.New("the memory driver has no schema to migrate")
			}

			return cliui.Step(cmd.OutOrStdout(), fmt.Sprintf("%s (%s)", step, v.GetString("storage.driver")), func() error {
				return apply(cmd.Context(), m)
			})
		},
	}

	flags.Register(cmd)

	return cmd
}
