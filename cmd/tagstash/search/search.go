// Package searchcmder provides the search command for finding records by tag.
package searchcmder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/tagstash/cmd/tagstash/stashopen"
	"github.com/papercomputeco/tagstash/pkg/cliui"
	"github.com/papercomputeco/tagstash/pkg/config"
	"github.com/papercomputeco/tagstash/pkg/stash"
	"github.com/papercomputeco/tagstash/pkg/storage"
	"github.com/papercomputeco/tagstash/pkg/tag"
)

type searchCommander struct {
	storage stashopen.StorageFlags

	limit  int
	offset int
	sortBy string
	order  string
	any    bool
	quiet  bool
	json   bool
}

const searchLongDesc string = `Search records by tag.

Query words are normalized like record content. By default a record matches
when its tags contain every query word; with --any, when they contain at
least one. An empty query lists every record.

Results are paginated, newest first unless --sort-by or --order say otherwise.

Use --quiet to output only record ids, one per line. This is useful for
piping into other commands like tagstash rm.

Examples:
  tagstash search cafe menu
  tagstash search --any cafe bar --limit 10
  tagstash search --sort-by updated_at --order asc
  tagstash search --quiet draft | xargs tagstash rm`

const searchShortDesc string = "Search records by tag"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmder.storage.Register(cmd)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", storage.DefaultLimit, "Maximum number of records to return")
	cmd.Flags().IntVar(&cmder.offset, "offset", 0, "Number of records to skip")
	cmd.Flags().StringVar(&cmder.sortBy, "sort-by", "created_at", "Sort field (created_at, updated_at)")
	cmd.Flags().StringVar(&cmder.order, "order", "desc", "Sort order (asc, desc)")
	cmd.Flags().BoolVar(&cmder.any, "any", false, "Match records carrying any query word instead of all")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only record ids, one per line (for piping)")
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the result page as JSON")

	return cmd
}

func (c *searchCommander) run(cmd *cobra.Command, query string) error {
	v, configDir, err := stashopen.LoadViper(cmd, config.StorageFlags...)
	if err != nil {
		return err
	}

	s, err := stashopen.Open(cmd.Context(), v, configDir, stashopen.NewLogger(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	req := stash.SearchRequest{
		Query:     query,
		Limit:     c.limit,
		Offset:    c.offset,
		SortBy:    c.sortBy,
		SortOrder: c.order,
	}

	var page *storage.Page
	if c.any {
		req.Query = ""
		page, err = s.Service.SearchByTagIDs(cmd.Context(), TagIDs(query), req)
	} else {
		page, err = s.Service.Search(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case c.json:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)

	case c.quiet:
		for _, r := range page.Records {
			fmt.Fprintln(out, r.ID)
		}
		return nil
	}

	if len(page.Records) == 0 {
		fmt.Fprintln(out, "No records found.")
		return nil
	}

	fmt.Fprintf(out, "\n%s %s\n\n",
		cliui.KeyStyle.Render("Records tagged:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%q", query)),
	)
	for _, r := range page.Records {
		cliui.PrintRecord(out, r)
	}

	end := c.offset + len(page.Records)
	summary := fmt.Sprintf("%d-%d of %d", c.offset+1, end, page.Total)
	if page.HasMore {
		summary += fmt.Sprintf(", next: --offset %d", end)
	}
	fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render(summary))
	return nil
}

// TagIDs returns the identifiers of the distinct tags in text, skipping
// words that normalize to nothing.
func TagIDs(text string) []uuid.UUID {
	var values []string
	for _, token := range tag.Parse(text) {
		if v := tag.Normalize(token); v != "" {
			values = append(values, v)
		}
	}
	return tag.SetFromValues(values...).IDs()
}
