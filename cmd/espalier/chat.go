package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively against a described API",
	Run: func(cmd *cobra.Command, args []string) {
		specPath, _ := cmd.Flags().GetString("spec")
		headless, _ := cmd.Flags().GetBool("headless")

		agent, toolName, err := buildAgent(cmd, specPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if !headless {
			tui.PrintBanner()
		}

		runner := espalier.NewRunner()
		runner.Input = os.Stdin
		runner.Output = os.Stdout
		runner.Headless = headless
		if !headless {
			runner.Renderer = tui.NewRenderer()
		}

		if err := runner.Run(cmd.Context(), agent, toolName); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("spec", "", "Path to the OpenAPI description")
	chatCmd.Flags().Bool("headless", false, "Plain IO without banner or markdown rendering")
	chatCmd.MarkFlagRequired("spec")
}
