package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question against a described API",
	Long: `Reduces the given OpenAPI description, synthesizes one API call for the
question, and prints the textual answer.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		specPath, _ := cmd.Flags().GetString("spec")
		question := strings.Join(args, " ")

		agent, toolName, err := buildAgent(cmd, specPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(agent.Dispatch(cmd.Context(), toolName, question))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().String("spec", "", "Path to the OpenAPI description")
	askCmd.MarkFlagRequired("spec")
}
