package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/montrey/fastfolder/search"
)

// NewCmdHistory manages the list of recently opened folders.
func NewCmdHistory(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "List or edit recently opened folders.",
		Long: heredoc.Doc(`
			Recently opened folders are listed first in every search.
			Without a subcommand the list is printed, most recent first.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listHistory(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print recent folders.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listHistory(cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <path>",
		Short: "Add a folder to the front of the list.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if ok, err := a.searchFS().IsDir(path); err != nil || !ok {
				return fmt.Errorf("not a directory: %s", path)
			}
			h := a.newHistory()
			if _, err := h.Load(); err != nil {
				return err
			}
			return h.Record(path)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"rm"},
		Short:   "Remove a folder from the list.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			h := a.newHistory()
			if _, err := h.Load(); err != nil {
				return err
			}
			return h.Remove(path)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget every recent folder.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.newHistory().Clear()
		},
	})

	return cmd
}

func (a *App) listHistory(cmd *cobra.Command) error {
	paths, err := a.newHistory().Load()
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), search.TildePath(p))
	}
	return nil
}
