package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

func newDispatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch -f FLOW_FILE",
		Short: "Bind the job types of a flow execution to image versions",
		Long: `Runs the dispatch workflow on the configured engine for one execution of
the flow in FLOW_FILE and records the chosen versions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			var flow domain.Flow
			if err := readYAML(path, &flow); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.dispatchService(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := svc.Dispatch(cmd.Context(), flow)
			if err != nil && !errors.Is(err, domain.ErrUnresolvedImageTypes) {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "execution %s of %s: %s\n", rec.ExecutionID, rec.FlowName, rec.State)
			if len(rec.ProxyUsers) > 0 {
				fmt.Fprintf(out, "proxy users: %s\n", strings.Join(rec.ProxyUsers, ", "))
			}
			if err != nil {
				return err
			}
			printVersions(cmd, rec.ImageVersions)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "flow YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
