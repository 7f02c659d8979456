package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/httpclient"
	"github.com/aretw0/espalier/internal/logging"
	anthropicadapter "github.com/aretw0/espalier/pkg/adapters/anthropic"
	memorycache "github.com/aretw0/espalier/pkg/adapters/memory"
	openaiadapter "github.com/aretw0/espalier/pkg/adapters/openai"
	rediscache "github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/apispec"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/tools/openapi"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier turns described HTTP APIs into tools for LLM reasoning loops",
	Long: `Espalier reduces an OpenAPI description to the minimum a completion model
needs to synthesize a concrete request, executes that request, and
summarizes the response back into plain text.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig resolves the configuration for a command invocation.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

// buildAgent assembles the agent with the spec-guided tool from flags.
func buildAgent(cmd *cobra.Command, specPath string) (*espalier.Agent, string, error) {
	return buildAgentWithHooks(cmd, specPath, domain.LifecycleHooks{})
}

func buildAgentWithHooks(cmd *cobra.Command, specPath string, hooks domain.LifecycleHooks) (*espalier.Agent, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	doc, err := apispec.LoadFile(specPath)
	if err != nil {
		return nil, "", fmt.Errorf("load API description: %w", err)
	}
	reduced, err := apispec.Reduce(doc)
	if err != nil {
		return nil, "", fmt.Errorf("reduce API description: %w", err)
	}

	completer, err := buildCompleter(cfg)
	if err != nil {
		return nil, "", err
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientOpts := []httpclient.Option{
		httpclient.WithTimeout(timeout),
		httpclient.WithLogger(logger),
	}
	if cache := buildCache(cfg); cache != nil {
		clientOpts = append(clientOpts, httpclient.WithCache(cache, cfg.CacheTTL))
	}
	client := httpclient.New(clientOpts...)

	tool := openapi.New(reduced, completer,
		openapi.WithAllowList(cfg.AllowList...),
		openapi.WithHTTPClient(client),
		openapi.WithModel(cfg.DeploymentName),
		openapi.WithCompletionTokens(cfg.MaxTokens),
		openapi.WithHooks(hooks),
		openapi.WithLogger(logger),
	)

	agent := espalier.New(
		espalier.WithLogger(logger),
		espalier.WithLifecycleHooks(hooks),
	)
	agent.Register(tool)
	return agent, tool.Name(), nil
}

// buildCompleter selects the completion provider from configuration.
func buildCompleter(cfg *config.Config) (ports.Completer, error) {
	switch cfg.Provider {
	case "", "openai":
		opts := []openaiadapter.Option{
			openaiadapter.WithModel(cfg.DeploymentName),
			openaiadapter.WithMaxTokens(int64(cfg.MaxTokens)),
			openaiadapter.WithTemperature(cfg.Temperature),
		}
		if cfg.APIKey != "" {
			opts = append(opts, openaiadapter.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openaiadapter.WithBaseURL(cfg.BaseURL))
		}
		return openaiadapter.New(opts...), nil
	case "anthropic":
		opts := []anthropicadapter.Option{
			anthropicadapter.WithModel(cfg.DeploymentName),
			anthropicadapter.WithMaxTokens(int64(cfg.MaxTokens)),
			anthropicadapter.WithTemperature(cfg.Temperature),
		}
		if cfg.APIKey != "" {
			opts = append(opts, anthropicadapter.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicadapter.WithBaseURL(cfg.BaseURL))
		}
		return anthropicadapter.New(opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected openai or anthropic)", cfg.Provider)
	}
}

// buildCache resolves the configured response cache backend, if any.
func buildCache(cfg *config.Config) ports.ResponseCache {
	switch cfg.CacheBackend {
	case "memory":
		return memorycache.New()
	case "redis":
		return rediscache.New(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil
	}
}
