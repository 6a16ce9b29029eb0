package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

func newImageTypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image-type",
		Aliases: []string{"image-types", "it"},
		Short:   "Manage image types",
	}
	cmd.AddCommand(newImageTypeCreateCmd(), newImageTypeListCmd())
	return cmd
}

func newImageTypeCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Register a new image type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			desc, _ := cmd.Flags().GetString("description")
			if err := a.images.RegisterType(cmd.Context(), domain.ImageType{
				Name:        args[0],
				Description: desc,
				CreatedBy:   currentUser(cmd),
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "image type %s created\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("description", "", "human readable description")
	return cmd
}

func newImageTypeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List image types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			types, err := a.images.ListTypes(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd, "Name", "Description", "Created By")
			for _, t := range types {
				tw.AppendRow(table.Row{t.Name, t.Description, t.CreatedBy})
			}
			tw.Render()
			return nil
		},
	}
}
