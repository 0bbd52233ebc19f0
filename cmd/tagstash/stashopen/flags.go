package stashopen

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/logger"
)

// StorageFlags holds the targets of the storage flags shared by every
// command that opens the store. Values are read back through viper so
// that flags, environment and config.toml resolve in one place.
type StorageFlags struct {
	driver         string
	postgresDSN    string
	sqlitePath     string
	connectTimeout string
	maxConns       uint
}

// Register adds the storage flags to cmd.
func (f *StorageFlags) Register(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &f.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &f.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagConnectTimeout, &f.connectTimeout)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxConns, &f.maxConns)
}

// LoadViper resolves the configuration for cmd from --config-dir, the
// environment and the registered flags named by keys. It returns the config
// dir alongside so callers can place files next to config.toml.
func LoadViper(cmd *cobra.Command, keys ...string) (*viper.Viper, string, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, "", err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, keys)
	return v, configDir, nil
}

// NewLogger returns the logger for one-shot commands: pretty debug output
// on stderr with --debug, nothing otherwise so command output stays clean.
func NewLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	if !debug {
		return logger.Nop()
	}
	return logger.New(
		logger.WithDebug(true),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)
}
