// Package showcmder provides the show command for printing a single record.
package showcmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/record"
)

type showCommander struct {
	storage stashopen.StorageFlags
	byTags  bool
	json    bool
}

const showLongDesc string = `Print a record in full.

The record is looked up by id, or with --tags by its exact tag set: the
words given must normalize to exactly the record's tags, in any order.

Examples:
  tagstash show 7c9e6679-7425-40de-944b-e07fc1f90ae7
  tagstash show --tags menu cafe
  tagstash show --json 7c9e6679-7425-40de-944b-e07fc1f90ae7`

const showShortDesc string = "Print a record in full"

func NewShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show <id> | --tags <words...>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmder.byTags && len(args) != 1 {
				return errors.New("show takes exactly one record id")
			}
			return cmder.run(cmd, args)
		},
	}

	cmder.storage.Register(cmd)
	cmd.Flags().BoolVarP(&cmder.byTags, "tags", "t", false, "Look the record up by its exact tag set")
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the record as JSON")

	return cmd
}

func (c *showCommander) run(cmd *cobra.Command, args []string) error {
	v, configDir, err := stashopen.LoadViper(cmd, config.StorageFlags...)
	if err != nil {
		return err
	}

	s, err := stashopen.Open(cmd.Context(), v, configDir, stashopen.NewLogger(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	var r *record.Record
	if c.byTags {
		r, err = s.Service.FindByTags(cmd.Context(), strings.Join(args, " "))
	} else {
		id, perr := uuid.Parse(args[0])
		if perr != nil {
			return fmt.Errorf("invalid record id %q: %w", args[0], perr)
		}
		r, err = s.Service.Get(cmd.Context(), id)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(out, "%s  %s\n%s\n\n%s\n",
		cliui.IDStyle.Render(r.ID.String()),
		cliui.DimStyle.Render("updated "+r.UpdatedAt.Local().Format(time.DateTime)),
		cliui.RenderTags(r.TagValues()),
		r.Content,
	)
	return nil
}
