package commands

import (
	"github.com/spf13/cobra"
)

func servicesCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List configured client handles",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			infos := st.lib.Services()
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{info.Name, info.BaseURL, joinHeaders(info.DefaultHeaders)})
			}
			return st.render(infos, []string{"NAME", "BASE URL", "HEADERS"}, rows)
		},
	}
}
