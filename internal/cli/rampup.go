package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fleetshift/imagemgmt/internal/application"
	"github.com/fleetshift/imagemgmt/internal/domain"
)

func newRampupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rampup",
		Short: "Manage rampup plans",
	}
	cmd.AddCommand(newRampupApplyCmd(), newRampupGetCmd())
	return cmd
}

func newRampupApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply -f PLAN_FILE",
		Short: "Create a rampup plan, or update the active one with --update",
		Long: `Reads a rampup plan from a YAML file:

  imageType: spark
  name: spark-3.2-rollout
  entries:
    - version: 3.1.0
      percentage: 90
    - version: 3.2.0
      percentage: 10
      stabilityTag: experimental

Without --update a new plan is created and replaces the active plan of the
image type. With --update only the entries of the active plan are replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			var pf planFile
			if err := readYAML(path, &pf); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var plan domain.RampupPlan
			if update, _ := cmd.Flags().GetBool("update"); update {
				plan, err = a.rampup.Update(cmd.Context(), application.UpdatePlanInput{
					ImageType: pf.ImageType,
					Entries:   pf.entries(),
					User:      currentUser(cmd),
				})
			} else {
				plan, err = a.rampup.Create(cmd.Context(), application.CreatePlanInput{
					ImageType:   pf.ImageType,
					Name:        pf.Name,
					Description: pf.Description,
					Entries:     pf.entries(),
					User:        currentUser(cmd),
				})
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rampup plan %d (%s) active for %s\n", plan.ID, plan.Name, plan.ImageType)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "rampup plan YAML file")
	cmd.Flags().Bool("update", false, "replace the entries of the active plan instead of creating a new plan")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRampupGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get IMAGE_TYPE",
		Short: "Show the active rampup plan of an image type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := a.rampup.GetActive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "plan %d %s (modified by %s)\n", plan.ID, plan.Name, plan.ModifiedBy)
			tw := newTable(cmd, "Version", "Percentage", "Stability")
			for _, e := range plan.Entries {
				tw.AppendRow(table.Row{e.Version, e.Percentage, e.StabilityTag})
			}
			tw.Render()
			return nil
		},
	}
}
