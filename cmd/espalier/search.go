package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/httpclient"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/tools/endpoint"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the configured schema-less search endpoint",
	Long: `Sends the query to the fixed endpoint from search_endpoint, including
the search_key credential, and prints the raw response.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if cfg.SearchEndpoint == "" {
			fmt.Println("Error: search_endpoint is not configured")
			os.Exit(1)
		}
		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}

		opts := []endpoint.Option{
			endpoint.WithHTTPClient(httpclient.New(
				httpclient.WithTimeout(timeout),
				httpclient.WithLogger(logger),
			)),
			endpoint.WithLogger(logger),
		}
		if cfg.SearchKey != "" {
			opts = append(opts, endpoint.WithCredential("subscription-key", cfg.SearchKey))
		}
		tool := endpoint.New(cfg.SearchEndpoint, opts...)

		agent := espalier.New(espalier.WithLogger(logger))
		agent.Register(tool)

		fmt.Println(agent.Dispatch(cmd.Context(), tool.Name(), strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
