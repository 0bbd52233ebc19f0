// Package rmcmder provides the rm command for deleting records.
package rmcmder

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
)

type rmCommander struct {
	storage stashopen.StorageFlags
}

const rmLongDesc string = `Delete records by id.

Deleting a record frees its tag set for new records. Ids are validated
before anything is deleted; deletion stops at the first failure.

Examples:
  tagstash rm 7c9e6679-7425-40de-944b-e07fc1f90ae7
  tagstash search --quiet draft | xargs tagstash rm`

const rmShortDesc string = "Delete records"

func NewRmCmd() *cobra.Command {
	cmder := &rmCommander{}

	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: rmShortDesc,
		Long:  rmLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid record id %q: %w", arg, err)
				}
				ids = append(ids, id)
			}
			return cmder.run(cmd, ids)
		},
	}

	cmder.storage.Register(cmd)

	return cmd
}

func (c *rmCommander) run(cmd *cobra.Command, ids []uuid.UUID) error {
	v, configDir, err := stashopen.LoadViper(cmd, config.StorageFlags...)
	if err != nil {
		return err
	}

	s, err := stashopen.Open(cmd.Context(), v, configDir, stashopen.NewLogger(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	for _, id := range ids {
		if err := s.Service.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s Deleted %s\n", cliui.SuccessMark, cliui.IDStyle.Render(id.String()))
	}
	return nil
}
