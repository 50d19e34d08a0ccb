package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/expand"
)

var validateConfigPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a plan file without publishing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateConfigPath == "" {
			return fmt.Errorf("validate: -c/--config is required")
		}

		plan, err := config.LoadFile(validateConfigPath)
		if err != nil {
			return err
		}

		resolved, err := expand.Expand(plan)
		if err != nil {
			return err
		}

		fmt.Printf("%s: valid — %d broker(s), %d resolved stream(s)\n", validateConfigPath, len(plan.Brokers), len(resolved))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "", "path to the plan file (JSON or YAML)")
	rootCmd.AddCommand(validateCmd)
}
