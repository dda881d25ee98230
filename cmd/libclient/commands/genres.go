package commands

import (
	"github.com/spf13/cobra"
)

func genresCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List all genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genres, err := st.lib.Genres(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(genres))
			for _, g := range genres {
				rows = append(rows, []string{g.GenreID, g.Name})
			}
			return st.render(genres, []string{"ID", "NAME"}, rows)
		},
	}
}
