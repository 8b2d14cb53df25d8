package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend availability",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	h, err := rt.client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}

	fmt.Printf("Backend status: %s\n", h.Status)
	return nil
}
