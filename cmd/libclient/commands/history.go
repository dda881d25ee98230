package commands

import (
	"time"

	"github.com/spf13/cobra"
)

func historyCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show journaled mutations, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			changes, err := st.lib.History()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(changes))
			for _, c := range changes {
				rows = append(rows, []string{
					c.OccurredAt.Format(time.RFC3339), string(c.Kind), c.Service, c.Subject, c.Status, c.ID,
				})
			}
			return st.render(changes, []string{"WHEN", "KIND", "SERVICE", "SUBJECT", "STATUS", "ID"}, rows)
		},
	}
}
