package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/pkg/apispec"
)

// reduceCmd represents the reduce command
var reduceCmd = &cobra.Command{
	Use:   "reduce [openapi-file]",
	Short: "Reduce an OpenAPI description to its call-construction form",
	Long: `Prints the reduced projection of an API description: per operation the
method, path, one-line summary, and parameter metadata. The reduction is
idempotent and never larger than its input.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		asPrompt, _ := cmd.Flags().GetBool("prompt")

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		reduced, err := apispec.ReduceBytes(data)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if asPrompt {
			fmt.Print(reduced.RenderPrompt())
			return
		}

		out, err := json.MarshalIndent(reduced, "", "  ")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(reduceCmd)

	reduceCmd.Flags().Bool("prompt", false, "Render as the prompt text sent to the model")
}
