package cli

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [IMAGE_TYPE...]",
		Short: "Resolve the version each image type runs",
		Long: `Resolves image types to versions through their active rampup plans,
falling back to the latest active version.

With --key the rampup draw is derived from the key, so the same key always
gets the same versions while the plans are unchanged. With --flow the job
types of each flow file are resolved, keyed by the flow name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			flowFiles, _ := cmd.Flags().GetStringSlice("flow")
			if len(flowFiles) > 0 {
				flows := make([]domain.Flow, len(flowFiles))
				for i, path := range flowFiles {
					if err := readYAML(path, &flows[i]); err != nil {
						return err
					}
				}
				results, err := a.resolution.ResolveForFlows(ctx, flows)
				if err != nil {
					return err
				}
				var failed bool
				for _, r := range results {
					if r.Err != nil {
						failed = true
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", r.Flow, r.Err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", r.Flow)
					printVersions(cmd, r.Versions)
				}
				if failed {
					return domain.ErrUnresolvedImageTypes
				}
				return nil
			}

			spec := domain.RandomSelection()
			if key, _ := cmd.Flags().GetString("key"); key != "" {
				spec = domain.DeterministicSelection(key)
			}

			var versions map[string]string
			if all, _ := cmd.Flags().GetBool("all"); all {
				versions, err = a.resolution.ResolveAll(ctx, spec)
			} else {
				if len(args) == 0 {
					return fmt.Errorf("%w: no image types given", domain.ErrInvalidArgument)
				}
				versions, err = a.resolution.ResolveVersions(ctx, args, spec)
			}
			if err != nil {
				return err
			}
			printVersions(cmd, versions)
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "resolve every registered image type")
	cmd.Flags().String("key", "", "derive rampup draws from this key instead of drawing at random")
	cmd.Flags().StringSlice("flow", nil, "flow YAML files whose job types to resolve")
	return cmd
}

func printVersions(cmd *cobra.Command, versions map[string]string) {
	types := make([]string, 0, len(versions))
	for it := range versions {
		types = append(types, it)
	}
	sort.Strings(types)

	tw := newTable(cmd, "Image Type", "Version")
	for _, it := range types {
		tw.AppendRow(table.Row{it, versions[it]})
	}
	tw.Render()
}
