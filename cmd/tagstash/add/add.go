// Package addcmder provides the add command for capturing a new record.
package addcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
)

type addCommander struct {
	storage stashopen.StorageFlags
	quiet   bool
}

const addLongDesc string = `Store a new record.

The record is tagged with every word of its content, lowercased and with
accents removed. Adding content whose tag set matches an existing record
fails, whatever the word order.

Content is taken from the arguments, or read from stdin when there are none.

Examples:
  tagstash add "Café menu for Friday"
  echo "deploy checklist" | tagstash add
  tagstash add --quiet "standup notes"`

const addShortDesc string = "Store a new record"

func NewAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add [content...]",
		Short: addShortDesc,
		Long:  addLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return cmder.run(cmd, content)
		},
	}

	cmder.storage.Register(cmd)
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Print only the new record id")

	return cmd
}

func (c *addCommander) run(cmd *cobra.Command, content string) error {
	v, configDir, err := stashopen.LoadViper(cmd, config.StorageFlags...)
	if err != nil {
		return err
	}

	s, err := stashopen.Open(cmd.Context(), v, configDir, stashopen.NewLogger(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.Service.Create(cmd.Context(), content)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.quiet {
		fmt.Fprintln(out, r.ID)
		return nil
	}

	fmt.Fprintf(out, "\n  %s Stored record\n\n", cliui.SuccessMark)
	cliui.PrintRecord(out, r)
	return nil
}

// readContent joins args, or reads all of in when there are none.
func readContent(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
