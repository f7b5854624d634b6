// Package main provides the recall caching assistant application.
// Recall answers questions from a persistent local cache first and only
// consults the configured language model on a miss, making repeat questions
// instant and available offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/entrhq/recall/pkg/assistant"
	"github.com/entrhq/recall/pkg/assistant/transcript"
	"github.com/entrhq/recall/pkg/cache"
	appconfig "github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/executor/cli"
	"github.com/entrhq/recall/pkg/executor/tui"
	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/llm/ollama"
	"github.com/entrhq/recall/pkg/llm/openai"
	"github.com/entrhq/recall/pkg/logging"
)

const version = "0.1.0"

// Config holds the application configuration
type Config struct {
	ConfigPath  string
	DataDir     string
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	NoTUI       bool
	ShowVersion bool
}

func main() {
	// Parse command line flags
	config := parseFlags()

	// Show version if requested
	if config.ShowVersion {
		fmt.Printf("Recall v%s\n", version)
		return
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
}

// parseFlags parses command line flags and environment variables
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ConfigPath, "config", "", "Path to config file (default: ~/.recall/config.json)")
	flag.StringVar(&config.DataDir, "data-dir", "", "Directory for cache and transcripts (default: ~/.recall)")
	flag.StringVar(&config.Provider, "provider", "", "Model backend: ollama or openai (overrides config)")
	flag.StringVar(&config.BaseURL, "base-url", "", "Model API base URL (overrides config)")
	flag.StringVar(&config.Model, "model", "", "Model name (overrides config)")
	flag.StringVar(&config.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "API key for the openai backend (or set OPENAI_API_KEY env var)")
	flag.BoolVar(&config.NoTUI, "no-tui", false, "Run the plain line-based interface instead of the TUI")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Recall - A caching question answering assistant\n\n")
		fmt.Fprintf(os.Stderr, "Usage: recall [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     API key for the openai backend\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  recall                                   # Local Ollama, default model\n")
		fmt.Fprintf(os.Stderr, "  recall -model mistral\n")
		fmt.Fprintf(os.Stderr, "  recall -provider openai -model gpt-4o-mini\n")
		fmt.Fprintf(os.Stderr, "  recall -no-tui                           # Plain stdin/stdout loop\n")
	}

	flag.Parse()
	return config
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	logger, err := logging.NewLogger("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()

	// Load persisted settings, then let flags override them for this run.
	settings, configMgr, err := loadSettings(config, logger)
	if err != nil {
		return err
	}

	dataDir, err := resolveDataDir(config.DataDir)
	if err != nil {
		return err
	}

	store, err := cache.New(dataDir, settings.GetDBFilename(), assistant.PolicyFromSettings(settings))
	if err != nil {
		return fmt.Errorf("failed to open answer cache: %w", err)
	}

	provider, err := buildProvider(settings)
	if err != nil {
		return err
	}

	transcripts, err := transcript.NewFileStore(filepath.Join(dataDir, "transcripts"))
	if err != nil {
		return fmt.Errorf("failed to open transcript store: %w", err)
	}

	a := assistant.New(store, provider, settings,
		assistant.WithTranscripts(transcripts),
		assistant.WithLogger(logger),
	)

	logger.Infof("recall v%s starting: provider=%s model=%s policy=%s store=%s",
		version, settings.GetProvider(), provider.GetModel(), store.ActivePolicy(), store.StorePath())

	if config.NoTUI {
		executor := cli.NewExecutor(a)
		if err := executor.Run(ctx); err != nil {
			return fmt.Errorf("executor error: %w", err)
		}
	} else {
		executor := tui.NewExecutor(a, "")
		if err := executor.Run(ctx); err != nil {
			return fmt.Errorf("executor error: %w", err)
		}
	}

	// Persist settings changed during the session, such as a policy switch.
	settings.SetMatchPunctuation(store.ActivePolicy() == cache.PolicyExact)
	if err := configMgr.SaveAll(); err != nil {
		logger.Warnf("settings not saved: %v", err)
	}

	return nil
}

// loadSettings wires the config manager, loads the assistant section from
// disk, and applies flag overrides.
func loadSettings(config *Config, logger *logging.Logger) (*appconfig.AssistantSection, *appconfig.Manager, error) {
	fileStore, err := appconfig.NewFileStore(config.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open config store: %w", err)
	}

	mgr := appconfig.NewManager(fileStore)
	settings := appconfig.NewAssistantSection()
	if err := mgr.RegisterSection(settings); err != nil {
		return nil, nil, err
	}
	if err := mgr.LoadAll(); err != nil {
		logger.Warnf("config not loaded, using defaults: %v", err)
	}

	if config.Provider != "" {
		settings.SetProvider(config.Provider)
	}
	if config.BaseURL != "" {
		settings.SetBaseURL(config.BaseURL)
	}
	if config.Model != "" {
		settings.SetModel(config.Model)
	}
	if config.APIKey != "" {
		settings.SetAPIKey(config.APIKey)
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	return settings, mgr, nil
}

// resolveDataDir returns the directory holding cache files and transcripts.
func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".recall"), nil
}

// buildProvider creates the model backend named by the settings.
func buildProvider(settings *appconfig.AssistantSection) (llm.Provider, error) {
	switch settings.GetProvider() {
	case appconfig.ProviderOllama:
		opts := []ollama.ProviderOption{ollama.WithModel(settings.GetModel())}
		if url := settings.GetBaseURL(); url != "" {
			opts = append(opts, ollama.WithBaseURL(url))
		}
		return ollama.NewProvider(opts...), nil
	case appconfig.ProviderOpenAI:
		opts := []openai.ProviderOption{openai.WithModel(settings.GetModel())}
		// The default base URL targets the local Ollama server and must not
		// leak into the OpenAI client.
		if url := settings.GetBaseURL(); url != "" && url != ollama.DefaultBaseURL {
			opts = append(opts, openai.WithBaseURL(url))
		}
		return openai.NewProvider(settings.GetAPIKey(), opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", settings.GetProvider())
	}
}
