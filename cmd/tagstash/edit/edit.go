// Package editcmder provides the edit command for replacing a record's
// content.
package editcmder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
)

type editCommander struct {
	storage stashopen.StorageFlags
}

const editLongDesc string = `Replace the content of a record.

The record's tags are recomputed from the new content. The edit fails when
another record already has the resulting tag set; keeping the record's own
tag set is fine.

Examples:
  tagstash edit 7c9e6679-7425-40de-944b-e07fc1f90ae7 "Café menu for Saturday"`

const editShortDesc string = "Replace the content of a record"

func NewEditCmd() *cobra.Command {
	cmder := &editCommander{}

	cmd := &cobra.Command{
		Use:   "edit <id> <content...>",
		Short: editShortDesc,
		Long:  editLongDesc,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}
			return cmder.run(cmd, id, strings.Join(args[1:], " "))
		},
	}

	cmder.storage.Register(cmd)

	return cmd
}

func (c *editCommander) run(cmd *cobra.Command, id uuid.UUID, content string) error {
	v, configDir, err := stashopen.LoadViper(cmd, config.StorageFlags...)
	if err != nil {
		return err
	}

	s, err := stashopen.Open(cmd.Context(), v, configDir, stashopen.NewLogger(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.Service.Update(cmd.Context(), id, content)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  %s Updated record\n\n", cliui.SuccessMark)
	cliui.PrintRecord(out, r)
	return nil
}
