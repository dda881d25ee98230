package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/library-maintenance/libclient/internal/logger"
	"github.com/library-maintenance/libclient/internal/sweep"
	"github.com/library-maintenance/libclient/pkg/catalog"
)

func tracksCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Search and repair tracks",
	}
	cmd.AddCommand(trackSearchCmd(st), trackRetryCmd(st), trackSweepCmd(st))
	return cmd
}

func trackSearchCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "search <artist>",
		Short: "Find tracks by artist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracks, err := st.lib.SearchTracks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(tracks))
			for _, t := range tracks {
				rows = append(rows, []string{
					strconv.Itoa(t.TrackID), t.Artist, t.Album, t.Title,
					t.TrackMBID, deref(t.YoutubeCode), t.DownloadStatus,
				})
			}
			return st.render(tracks, []string{"ID", "ARTIST", "ALBUM", "TITLE", "MBID", "YOUTUBE", "STATUS"}, rows)
		},
	}
}

func trackRetryCmd(st *state) *cobra.Command {
	var upd catalog.TrackUpdate
	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Set a track's youtube code and optionally re-queue the download",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := st.lib.RetryTrack(cmd.Context(), upd)
			if err != nil {
				return err
			}
			return st.render(res, []string{"TRACK", "STATUS"}, [][]string{{upd.TrackMBID, res.Status}})
		},
	}
	cmd.Flags().StringVar(&upd.TrackMBID, "mbid", "", "track MusicBrainz id")
	cmd.Flags().StringVar(&upd.YoutubeCode, "code", "", "youtube video code")
	cmd.Flags().BoolVar(&upd.RetryDownload, "queue", false, "re-queue the download")
	_ = cmd.MarkFlagRequired("mbid")
	return cmd
}

func trackSweepCmd(st *state) *cobra.Command {
	opts := sweep.Options{Status: "failed"}
	cmd := &cobra.Command{
		Use:   "sweep <artist>...",
		Short: "Find tracks in a download status across artists, optionally re-queueing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, runErr := sweep.NewService(st.lib, st.lib, logger.Std{}).Run(cmd.Context(), args, opts)
			rows := make([][]string, 0, len(res.Matched))
			requeued := make(map[string]bool, len(res.Requeued))
			for _, id := range res.Requeued {
				requeued[id] = true
			}
			for _, t := range res.Matched {
				rows = append(rows, []string{
					t.Artist, t.Title, t.TrackMBID, deref(t.YoutubeCode),
					strings.ToLower(t.DownloadStatus), strconv.FormatBool(requeued[t.TrackMBID]),
				})
			}
			if err := st.render(res, []string{"ARTIST", "TITLE", "MBID", "YOUTUBE", "STATUS", "REQUEUED"}, rows); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&opts.Status, "status", opts.Status, "download status to match")
	cmd.Flags().BoolVar(&opts.Requeue, "requeue", false, "re-queue matched tracks that have a youtube code")
	return cmd
}
