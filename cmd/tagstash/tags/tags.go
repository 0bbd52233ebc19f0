// Package tagscmder provides the tags command for tag usage statistics.
package tagscmder

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
)

type tagsCommander struct {
	storage stashopen.StorageFlags
	limit   int
	json    bool
}

const tagsLongDesc string = `List tags by how many records use them.

Tags are ordered most used first, alphabetically among equals.

Examples:
  tagstash tags
  tagstash tags --limit 10
  tagstash tags --json`

const tagsShortDesc string = "List tag usage"

func NewTagsCmd() *cobra.Command {
	cmder := &tagsCommander{}

	cmd := &cobra.Command{
		Use:   "tags",
		Short: tagsShortDesc,
		Long:  tagsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmder.storage.Register(cmd)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 0, "Show only the most used tags (0 for all)")
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the statistics as JSON")

	return cmd
}

func (c *tagsCommander) run(cmd *cobra.Command) error {
	v, configDir, err := stashopen.LoadViper(cmd, config.StorageFlags...)
	if err != nil {
		return err
	}

	s, err := stashopen.Open(cmd.Context(), v, configDir, stashopen.NewLogger(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	counts, err := s.Service.TagStatistics(cmd.Context())
	if err != nil {
		return err
	}
	if c.limit > 0 && len(counts) > c.limit {
		counts = counts[:c.limit]
	}

	out := cmd.OutOrStdout()
	if c.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(counts)
	}

	if len(counts) == 0 {
		fmt.Fprintln(out, "No tags yet.")
		return nil
	}

	width := 0
	for _, tc := range counts {
		if n := len([]rune(tc.Tag)); n > width {
			width = n
		}
	}

	for _, tc := range counts {
		fmt.Fprintf(out, "  %s%*s  %s\n",
			cliui.TagStyle.Render(tc.Tag),
			width-len([]rune(tc.Tag)), "",
			cliui.ValueStyle.Render(fmt.Sprint(tc.Count)),
		)
	}
	return nil
}
