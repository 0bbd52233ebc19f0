// Package tagstashcmder wires every tagstash subcommand under the root
// command.
package tagstashcmder

import (
	"github.com/spf13/cobra"

	addcmder "github.com/papercomputeco/tagstash/cmd/tagstash/add"
	configcmder "github.com/papercomputeco/tagstash/cmd/tagstash/config"
	editcmder "github.com/papercomputeco/tagstash/cmd/tagstash/edit"
	importcmder "github.com/papercomputeco/tagstash/cmd/tagstash/import"
	initcmder "github.com/papercomputeco/tagstash/cmd/tagstash/init"
	migratecmder "github.com/papercomputeco/tagstash/cmd/tagstash/migrate"
	rmcmder "github.com/papercomputeco/tagstash/cmd/tagstash/rm"
	searchcmder "github.com/papercomputeco/tagstash/cmd/tagstash/search"
	servecmder "github.com/papercomputeco/tagstash/cmd/tagstash/serve"
	showcmder "github.com/papercomputeco/tagstash/cmd/tagstash/show"
	tagscmder "github.com/papercomputeco/tagstash/cmd/tagstash/tags"
	versioncmder "github.com/papercomputeco/tagstash/cmd/version"
)

const tagstashLongDesc string = `Tagstash stores short pieces of content, each indexed by the set of words
it contains. No two records may carry the same tag set.

Capture and find records:
  tagstash add "Café menu"       Store a record tagged cafe, menu
  tagstash search cafe           Records tagged with every query word
  tagstash tags                  Tag usage, most used first

Run services using:
  tagstash serve                 Run the HTTP API (with MCP on /mcp)
  tagstash migrate up            Apply storage migrations`

const tagstashShortDesc string = "Tagstash - tag-set record store"

func NewTagstashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tagstash",
		Short:         tagstashShortDesc,
		Long:          tagstashLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .tagstash/ config directory")

	// Add subcommands
	cmd.AddCommand(addcmder.NewAddCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(editcmder.NewEditCmd())
	cmd.AddCommand(importcmder.NewImportCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(migratecmder.NewMigrateCmd())
	cmd.AddCommand(rmcmder.NewRmCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(showcmder.NewShowCmd())
	cmd.AddCommand(tagscmder.NewTagsCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
