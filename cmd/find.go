package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/montrey/fastfolder/logging"
	"github.com/montrey/fastfolder/search"
)

// NewCmdFind prints the best match for a query without starting the picker.
func NewCmdFind(a *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "find <query...>",
		Short: "Print the best matching folder.",
		Long: heredoc.Doc(`
			Run one full search and print the best match. Exits with status 1
			when nothing matches.

			Examples:
			  fastfolder find api server
			  fastfolder find --all proj
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFind(cmd, strings.Join(args, " "), all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print every result with its score")
	return cmd
}

func (a *App) runFind(cmd *cobra.Command, query string, all bool) error {
	history, err := a.newHistory().Load()
	if err != nil {
		logging.Warn("failed to load history", logging.Err(err))
	}

	snap, err := a.newSearcher().Search(context.Background(), searchRequest(query, history), nil)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(snap.Entries) == 0 {
		return errNoMatch
	}

	out := cmd.OutOrStdout()
	if !all {
		fmt.Fprintln(out, snap.Entries[0].Path)
		return nil
	}
	for _, e := range snap.Entries {
		fmt.Fprintf(out, "%3d\t%s\t%s\n", e.Score, e.Path, e.MatchReason)
	}
	return nil
}

func searchRequest(query string, history []string) search.Request {
	return search.Request{Query: query, History: history}
}
