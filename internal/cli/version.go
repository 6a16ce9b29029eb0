package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fleetshift/imagemgmt/internal/application"
	"github.com/fleetshift/imagemgmt/internal/domain"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"versions"},
		Short:   "Manage image versions",
	}
	cmd.AddCommand(newVersionRegisterCmd(), newVersionSetStateCmd(), newVersionListCmd())
	return cmd
}

func newVersionRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register IMAGE_TYPE VERSION",
		Short: "Register a version of an image type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			state, _ := cmd.Flags().GetString("state")
			tag, _ := cmd.Flags().GetString("release-tag")
			v, err := a.images.RegisterVersion(cmd.Context(), application.RegisterVersionInput{
				ImageType:  args[0],
				Version:    args[1],
				ReleaseTag: tag,
				State:      domain.VersionState(state),
				User:       currentUser(cmd),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s@%s (%s)\n", v.ImageType, v.Version, v.State)
			return nil
		},
	}
	cmd.Flags().String("state", string(domain.VersionStateNew), `initial state ("new", "active", "unstable", "deprecated")`)
	cmd.Flags().String("release-tag", "", "release tag of the version")
	return cmd
}

func newVersionSetStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-state IMAGE_TYPE VERSION STATE",
		Short: "Move a version to another lifecycle state",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.images.SetVersionState(cmd.Context(), args[0], args[1], domain.VersionState(args[2]), currentUser(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s@%s is now %s\n", args[0], args[1], args[2])
			return nil
		},
	}
}

func newVersionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list IMAGE_TYPE",
		Short: "List the versions of an image type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			versions, err := a.images.ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tw := newTable(cmd, "Version", "State", "Release Tag", "Modified By")
			for _, v := range versions {
				tw.AppendRow(table.Row{v.Version, v.State, v.ReleaseTag, v.ModifiedBy})
			}
			tw.Render()
			return nil
		},
	}
}
