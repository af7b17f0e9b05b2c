package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/flickguess/internal/movies"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List the movie catalog",
	Long:  `Shows the catalog loaded from MOVIES_FILE, or the embedded fallback list.`,
	RunE:  runMovies,
}

func runMovies(cmd *cobra.Command, _ []string) error {
	if err := movies.Init(cfg.MoviesFile); err != nil {
		return err
	}
	list := movies.Default().All()

	maxTitle := len("Title")
	for _, m := range list {
		maxTitle = max(maxTitle, len(m.Title))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %-3s  %-*s  %s\n", "#", maxTitle, "Title", "Year")
	fmt.Fprintf(out, "  %-3s  %-*s  %s\n", "-", maxTitle, "-----", "----")
	for i, m := range list {
		fmt.Fprintf(out, "  %-3d  %-*s  %s\n", i, maxTitle, m.Title, m.Year)
	}
	fmt.Fprintf(out, "\n%d movies\n", len(list))
	return nil
}
