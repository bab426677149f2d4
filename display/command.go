package display

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ShouldOutputJSON decides between styled and JSON rendering for a command.
// An explicit --json flag wins at either level; with no flag set, machine
// callers get JSON so agents never have to parse the styled output.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		// Rendering outside command context, e.g. from a gate error.
		return IsMachineEnvironment()
	}

	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return IsMachineEnvironment()
}

// OutputJSON renders v through MarshalJSON and prints it to stdout.
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("marshal JSON output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
