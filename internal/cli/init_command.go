package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/harvest/internal/config"
	"github.com/temirov/harvest/internal/types"
)

const (
	globalFlagName = "global"
	forceFlagName  = "force"

	initUse              = types.CommandInit
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to .harvest.yaml in the working directory,
or to ~/.harvest/config.yaml with --global.`

	globalFlagDescription = "write the per-user configuration"
	forceFlagDescription  = "overwrite an existing configuration file"

	initWrittenFormat = "configuration written to %s"
)

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  wrapArguments(cobra.NoArgs),
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if err != nil {
				return err
			}
			return writeLine(command.OutOrStdout(), initWrittenFormat, path)
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
