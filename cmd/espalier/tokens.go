package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/pkg/tokens"
)

// tokensCmd represents the tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens [text]",
	Short: "Estimate the token count of text and the strategy for a model",
	Long: `Estimates tokens with the same rule the dispatcher uses for budget checks.
Reads stdin when no argument is given. With --model it also reports the
model's budget and whether a single pass would fit.`,
	Run: func(cmd *cobra.Command, args []string) {
		model, _ := cmd.Flags().GetString("model")
		completion, _ := cmd.Flags().GetInt("completion")

		var text string
		if len(args) > 0 {
			text = strings.Join(args, " ")
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			text = string(data)
		}

		count := tokens.Estimate(text)
		fmt.Printf("tokens: %d\n", count)

		if model != "" {
			budget := tokens.Budget(model)
			strategy := tokens.ChooseForModel(model, 0, count, completion)
			fmt.Printf("model: %s\nbudget: %d\nstrategy: %s\n", model, budget, strategy)
		}
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().String("model", "", "Model identifier for budget lookup")
	tokensCmd.Flags().Int("completion", 1000, "Completion token reservation for the strategy check")
}
