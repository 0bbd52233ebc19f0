// Package configcmder provides the config command for managing persistent
// tagstash configuration stored in the .tagstash/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent tagstash configuration.

Configuration is stored as config.toml in the .tagstash/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.postgres_dsn, storage.sqlite_path,
  storage.max_conns, storage.max_conn_idle_time, storage.connect_timeout,
  tags.max_length, tags.max_per_record,
  api.listen,
  events.provider, events.brokers, events.topic,
  mcp.enabled

Use subcommands to get, set, or list configuration values:
  tagstash config set <key> <value>    Set a configuration value
  tagstash config get <key>            Get a configuration value
  tagstash config list                 List all configuration values

Examples:
  tagstash config set storage.driver postgres
  tagstash config set events.brokers kafka-1:9092,kafka-2:9092
  tagstash config get storage.driver
  tagstash config list`

const configShortDesc string = "Manage persistent tagstash configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
