package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, language model and vector store.

Each configure command prompts for anything not given as a flag, then checks
that the chosen service is reachable.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the language model provider",
	RunE:  runSettingsLLM,
}

var settingsVectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Configure the vector store backend",
	RunE:  runSettingsVector,
}

var (
	settingsProvider     string
	settingsModel        string
	settingsAPIKey       string
	settingsURL          string
	settingsSkipValidate bool
)

// settingsInput is where interactive answers are read from.
var settingsInput io.Reader = os.Stdin

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&settingsProvider, "provider", "", "provider name")
		c.Flags().StringVar(&settingsModel, "model", "", "model name (default depends on provider)")
		c.Flags().StringVar(&settingsAPIKey, "api-key", "", "API key, if the provider needs one")
		c.Flags().BoolVar(&settingsSkipValidate, "skip-validate", false, "save without contacting the service")
	}
	settingsVectorCmd.Flags().StringVar(&settingsProvider, "backend", "", "vector backend name")
	settingsVectorCmd.Flags().StringVar(&settingsURL, "url", "", "backend URL or index host")
	settingsVectorCmd.Flags().StringVar(&settingsAPIKey, "api-key", "", "API key, if the backend needs one")
	settingsVectorCmd.Flags().BoolVar(&settingsSkipValidate, "skip-validate", false, "save without contacting the backend")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsVectorCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsView is the printable form of the settings, with keys masked.
type settingsView struct {
	Embedding struct {
		Provider   string `json:"provider"`
		Model      string `json:"model"`
		BaseURL    string `json:"base_url,omitempty"`
		APIKey     string `json:"api_key,omitempty"`
		Dimensions int    `json:"dimensions,omitempty"`
	} `json:"embedding"`
	LLM struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
		BaseURL  string `json:"base_url,omitempty"`
		APIKey   string `json:"api_key,omitempty"`
	} `json:"llm"`
	VectorStore struct {
		Backend string `json:"backend"`
		URL     string `json:"url,omitempty"`
		APIKey  string `json:"api_key,omitempty"`
	} `json:"vector_store"`
	Chunking struct {
		Size    int     `json:"size"`
		Overlap float64 `json:"overlap"`
	} `json:"chunking"`
	Server struct {
		Addr        string  `json:"addr"`
		APIKey      string  `json:"api_key,omitempty"`
		MaxUploadMB int     `json:"max_upload_mb"`
		RateLimit   float64 `json:"rate_limit"`
	} `json:"server"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func newSettingsView(s *domain.AppSettings, validateErr error) settingsView {
	var v settingsView
	v.Embedding.Provider = s.Embedding.Provider.String()
	v.Embedding.Model = s.Embedding.Model
	v.Embedding.BaseURL = s.Embedding.BaseURL
	v.Embedding.APIKey = maskIfSet(s.Embedding.APIKey)
	v.Embedding.Dimensions = s.Embedding.Dimensions
	v.LLM.Provider = s.LLM.Provider.String()
	v.LLM.Model = s.LLM.Model
	v.LLM.BaseURL = s.LLM.BaseURL
	v.LLM.APIKey = maskIfSet(s.LLM.APIKey)
	v.VectorStore.Backend = s.VectorStore.Backend.String()
	v.VectorStore.URL = s.VectorStore.URL
	v.VectorStore.APIKey = maskIfSet(s.VectorStore.APIKey)
	v.Chunking.Size = s.Chunking.Size
	v.Chunking.Overlap = s.Chunking.Overlap
	v.Server.Addr = s.Server.Addr
	v.Server.APIKey = maskIfSet(s.Server.APIKey)
	v.Server.MaxUploadMB = s.Server.MaxUploadMB
	v.Server.RateLimit = s.Server.RateLimit
	v.Valid = validateErr == nil
	if validateErr != nil {
		v.Error = validateErr.Error()
	}
	return v
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	validateErr := settingsService.Validate()

	return render(cmd, newSettingsView(settings, validateErr), func() {
		printSettings(cmd, settings, validateErr)
	})
}

func printSettings(cmd *cobra.Command, settings *domain.AppSettings, validateErr error) {
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	printAPIKey(cmd, settings.Embedding.Provider.RequiresAPIKey(), settings.Embedding.APIKey)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	printAPIKey(cmd, settings.LLM.Provider.RequiresAPIKey(), settings.LLM.APIKey)
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", settings.VectorStore.Backend.Description())
	if settings.VectorStore.URL != "" {
		cmd.Printf("  URL: %s\n", settings.VectorStore.URL)
	}
	if settings.VectorStore.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.VectorStore.APIKey))
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d tokens\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %.0f%%\n", settings.Chunking.Overlap*100)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Max upload: %d MB\n", settings.Server.MaxUploadMB)
	if settings.Server.RateLimit > 0 {
		cmd.Printf("  Rate limit: %.1f req/s per client\n", settings.Server.RateLimit)
	}
	if settings.Server.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Server.APIKey))
	}
	cmd.Println()

	if validateErr != nil {
		cmd.Printf("Warning: %v\n", validateErr)
		cmd.Println("Run 'sercha-kb settings embedding|llm|vector' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
}

func printAPIKey(cmd *cobra.Command, required bool, key string) {
	if !required {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(settingsInput)

	provider, err := chooseProvider(cmd, reader, "Embedding", settingsProvider, domain.AllEmbeddingProviders())
	if err != nil {
		return err
	}
	model := chooseModel(cmd, reader, settingsModel, domain.DefaultEmbeddingModels()[provider])
	apiKey, err := chooseAPIKey(cmd, reader, provider.RequiresAPIKey())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}
	if err := validateSaved(cmd, func(s *domain.AppSettings) error {
		return configValidator.ValidateEmbedding(&s.Embedding)
	}); err != nil {
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(settingsInput)

	provider, err := chooseProvider(cmd, reader, "LLM", settingsProvider, domain.AllLLMProviders())
	if err != nil {
		return err
	}
	model := chooseModel(cmd, reader, settingsModel, domain.DefaultLLMModels()[provider])
	apiKey, err := chooseAPIKey(cmd, reader, provider.RequiresAPIKey())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	if err := validateSaved(cmd, func(s *domain.AppSettings) error {
		return configValidator.ValidateLLM(&s.LLM)
	}); err != nil {
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsVector(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(settingsInput)

	backend := domain.VectorBackend(settingsProvider)
	if settingsProvider == "" {
		cmd.Println("Select Vector Store Backend")
		backends := domain.AllVectorBackends()
		for i, b := range backends {
			cmd.Printf("  %d. %s\n", i+1, b.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		backend = backends[parseChoice(readLine(reader), len(backends), 1)-1]
	}
	if !backend.IsValid() {
		return fmt.Errorf("unknown vector backend %q", backend)
	}

	url := settingsURL
	if url == "" && backend.IsRemote() {
		cmd.Print("Enter URL: ")
		url = readLine(reader)
	}
	apiKey := settingsAPIKey
	if apiKey == "" && backend == domain.VectorBackendPinecone {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := settingsService.SetVectorBackend(backend, url, apiKey); err != nil {
		return fmt.Errorf("failed to configure vector store: %w", err)
	}
	if err := validateSaved(cmd, func(s *domain.AppSettings) error {
		return configValidator.ValidateVectorStore(&s.VectorStore)
	}); err != nil {
		return fmt.Errorf("vector store validation failed: %w", err)
	}

	cmd.Printf("Vector store configured: %s\n", backend.Description())
	return nil
}

// chooseProvider returns the --provider flag value or asks for one.
func chooseProvider(
	cmd *cobra.Command, reader *bufio.Reader, kind, flag string, providers []domain.AIProvider,
) (domain.AIProvider, error) {
	if flag != "" {
		p := domain.AIProvider(flag)
		for _, allowed := range providers {
			if p == allowed {
				return p, nil
			}
		}
		return "", fmt.Errorf("provider %q cannot be used for %s", flag, strings.ToLower(kind))
	}

	cmd.Printf("Select %s Provider\n", kind)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	return providers[parseChoice(readLine(reader), len(providers), 1)-1], nil
}

func chooseModel(cmd *cobra.Command, reader *bufio.Reader, flag, defaultModel string) string {
	if flag != "" {
		return flag
	}
	if settingsProvider != "" {
		return defaultModel
	}
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	if model := readLine(reader); model != "" {
		return model
	}
	return defaultModel
}

func chooseAPIKey(cmd *cobra.Command, reader *bufio.Reader, required bool) (string, error) {
	if !required || settingsAPIKey != "" {
		return settingsAPIKey, nil
	}
	cmd.Print("Enter API key: ")
	apiKey := readPassword(reader)
	cmd.Println()
	if apiKey == "" {
		return "", errors.New("API key is required for this provider")
	}
	return apiKey, nil
}

// validateSaved re-reads the saved settings and runs check against them.
func validateSaved(cmd *cobra.Command, check func(*domain.AppSettings) error) error {
	if settingsSkipValidate || configValidator == nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	cmd.Print("Validating configuration... ")
	if err := check(settings); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return err
	}
	cmd.Println("OK")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to reader.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskIfSet(key string) string {
	if key == "" {
		return ""
	}
	return maskAPIKey(key)
}
