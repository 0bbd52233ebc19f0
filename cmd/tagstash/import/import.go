// Package importcmder provides the import command for storing many records
// in one transaction.
package importcmder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/record"
)

type importCommander struct {
	storage stashopen.StorageFlags
}

const importLongDesc string = `Import records from a file, one record per line.

Blank lines are skipped. Every line is validated before anything is stored,
and the records are saved in a single transaction: either all of them are
imported or none is. Lines sharing a tag set with each other or with a
stored record abort the import.

Use - to read from stdin.

Examples:
  tagstash import notes.txt
  grep TODO journal.txt | tagstash import -`

const importShortDesc string = "Import records from a file"

func NewImportCmd() *cobra.Command {
	cmder := &importCommander{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: importShortDesc,
		Long:  importLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmder.storage.Register(cmd)

	return cmd
}

func (c *importCommander) run(cmd *cobra.Command, path string) error {
	contents, err := readLines(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	if len(contents) == 0 {
		return fmt.Errorf("nothing to import from %s", path)
	}

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
	var records []*record.Record
	err = cliui.Step(out, fmt.Sprintf("Importing %d records", len(contents)), func() error {
		var ierr error
		records, ierr = s.Service.Import(cmd.Context(), contents)
		return ierr
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Imported %s records\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(fmt.Sprint(len(records))),
	)
	return nil
}

// readLines returns the non-blank lines of path, or of stdin for "-".
func readLines(stdin io.Reader, path string) ([]string, error) {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening import file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	return lines, nil
}
