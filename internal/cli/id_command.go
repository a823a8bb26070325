package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/harvest/internal/ident"
	"github.com/temirov/harvest/internal/types"
)

const (
	idUse              = types.CommandID + " PREFIX PART..."
	idShortDescription = "print a generated identifier"
	idLongDescription  = `Print the identifier harvest assigns for a prefix and parts.
The identifier is the prefix followed by the upper-case MD5 of the parts joined
with "|" and encoded as UTF-16LE.`
	idUsageExample = `  # Directory identifier for a reference path
  harvest id dir '$(var.HarvestPath)\sub'

  # Component identifier for a directory and file identifier pair
  harvest id cmp dirC827FAD91C17AB5209EB12D8351058DB fil8B564B47FF74C17EE41825433F971A20`
)

// createIDCommand returns the id subcommand.
func createIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:     idUse,
		Short:   idShortDescription,
		Long:    idLongDescription,
		Example: idUsageExample,
		Args:    wrapArguments(cobra.MinimumNArgs(2)),
		RunE: func(command *cobra.Command, arguments []string) error {
			identifier, err := ident.Generate(arguments[0], arguments[1:]...)
			if err != nil {
				return fmt.Errorf("%w: %w", types.ErrInvalidArguments, err)
			}
			return writeLine(command.OutOrStdout(), "%s", identifier)
		},
	}
}
