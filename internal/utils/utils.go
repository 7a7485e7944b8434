package utils

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Truncate shortens s to max characters, appending "..." only when s is
// actually longer than max.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// sets flag values from corresponding environment variables if flags weren't explicitly provided
func BindEnvToFlags(cmd *cobra.Command) error {
	v := viper.New()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		flagName := f.Name

		// Convert flag name to environment variable name
		// e.g., "output-dir" -> "OUTPUT_DIR"
		envVarName := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		v.BindEnv(flagName, envVarName)

		// If the flag wasn't explicitly set via command line
		// AND
		// there's a value available from environment,
		// THEN
		// set the flag value from the environment
		if !f.Changed && v.IsSet(flagName) {
			val := v.Get(flagName)
			cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
		}
	})

	return nil
}
