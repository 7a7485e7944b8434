package update

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	force     bool
	checkOnly bool
)

func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "update",
		Short:         "Update the ec2recon binary to the latest version",
		Long:          `Updates the ec2recon binary to the latest version by downloading the latest release from github and installing it`,
		SilenceErrors: true,
		RunE:          runUpdate,
	}

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.BoolVar(&force, "force", false, "Force update without user confirmation")
	optionalFlags.BoolVar(&checkOnly, "check-only", false, "Only check for updates, don't install")

	cmd.Flags().AddFlagSet(optionalFlags)

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		usage := optionalFlags.FlagUsages()
		if usage != "" {
			fmt.Printf("Optional Flags:\n%s\n", usage)
		}

		return nil
	})

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	updater := NewUpdater(UpdaterOpts{
		Force:     force,
		CheckOnly: checkOnly,
	})

	if err := updater.Run(); err != nil {
		return fmt.Errorf("failed to update: %v", err)
	}

	return nil
}
