package commands

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/library-maintenance/libclient/pkg/catalog"
)

func artistsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artists",
		Short: "Inspect and edit artist genres",
	}
	cmd.AddCommand(
		artistGenresCmd(st),
		artistGenreEditCmd(st, "add-genre", "Link a genre to an artist", true),
		artistGenreEditCmd(st, "remove-genre", "Unlink a genre from an artist", false),
	)
	return cmd
}

func artistGenresCmd(st *state) *cobra.Command {
	var all, noGenre bool
	cmd := &cobra.Command{
		Use:   "genres [name]",
		Short: "Show artists with their genres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				list []catalog.ArtistGenres
				err  error
			)
			switch {
			case all && noGenre:
				return errors.New("--all and --no-genre are mutually exclusive")
			case all:
				list, err = st.lib.AllArtistGenres(cmd.Context())
			case noGenre:
				list, err = st.lib.ArtistsWithoutGenre(cmd.Context())
			case len(args) == 1:
				list, err = st.lib.ArtistGenres(cmd.Context(), args[0])
			default:
				return errors.New("artist name required unless --all or --no-genre is set")
			}
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, a := range list {
				rows = append(rows, []string{strconv.Itoa(a.ArtistID), a.Artist, strings.Join(a.Genres, ", ")})
			}
			return st.render(list, []string{"ID", "ARTIST", "GENRES"}, rows)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every artist")
	cmd.Flags().BoolVar(&noGenre, "no-genre", false, "list artists without any genre")
	return cmd
}

func artistGenreEditCmd(st *state, use, short string, add bool) *cobra.Command {
	var upd catalog.GenreUpdate
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			edit := st.lib.RemoveArtistGenre
			if add {
				edit = st.lib.AddArtistGenre
			}
			res, err := edit(cmd.Context(), upd)
			if err != nil {
				return err
			}
			return st.render(res, []string{"ARTIST", "GENRE", "STATUS"}, [][]string{{upd.ArtistID, upd.Genre, res.Status}})
		},
	}
	cmd.Flags().StringVar(&upd.ArtistID, "artist-id", "", "artist id")
	cmd.Flags().StringVar(&upd.Genre, "genre", "", "genre name")
	_ = cmd.MarkFlagRequired("artist-id")
	_ = cmd.MarkFlagRequired("genre")
	return cmd
}
