package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to askdocs! Let's configure your knowledge base.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Knowledge base preset.
	presetItems := []string{"custom"}
	for _, p := range Presets {
		presetItems = append(presetItems, p.Name)
	}
	presetPrompt := promptui.Select{
		Label: "Select knowledge base preset",
		Items: presetItems,
	}
	presetIdx, _, err := presetPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("preset selection: %w", err)
	}
	if presetIdx > 0 {
		Presets[presetIdx-1].Apply(cfg)
	}

	// 2. Documents directory.
	docsPrompt := promptui.Prompt{
		Label:   "Documents directory",
		Default: cfg.DocsDir,
		Validate: func(s string) error {
			if s == "" {
				return fmt.Errorf("directory is required")
			}
			return nil
		},
	}
	docsDir, err := docsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("docs directory: %w", err)
	}
	cfg.DocsDir = docsDir

	// 3. Embedding backend.
	embPrompt := promptui.Select{
		Label: "Select embedding backend",
		Items: []string{"ollama", "openai"},
	}
	_, embStr, err := embPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding backend selection: %w", err)
	}
	cfg.Embedding.Backend = BackendType(embStr)
	if cfg.Embedding.Backend == BackendOpenAI {
		cfg.Embedding.Model = "text-embedding-3-small"
		cfg.Embedding.Dimensions = 0 // resolved by the model
	}

	// 4. LLM backend.
	llmPrompt := promptui.Select{
		Label: "Select LLM backend",
		Items: []string{"ollama", "openai"},
	}
	_, llmStr, err := llmPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("llm backend selection: %w", err)
	}
	cfg.LLM.Backend = BackendType(llmStr)
	if cfg.LLM.Backend == BackendOpenAI {
		cfg.LLM.Model = "gpt-4o-mini"
	}

	// 5. Retrieval top-k.
	topKPrompt := promptui.Prompt{
		Label:   "Chunks retrieved per question (top-k)",
		Default: strconv.Itoa(cfg.TopK),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	topKStr, err := topKPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("top-k: %w", err)
	}
	cfg.TopK, _ = strconv.Atoi(topKStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Warn about missing API keys rather than failing: the user may export
	// them before the first run.
	for _, backend := range []BackendType{cfg.Embedding.Backend, cfg.LLM.Backend, cfg.STT.Backend, cfg.TTS.Backend} {
		if envVar := APIKeyEnvVar(backend); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("Note: %s is not set; the %s backend will not work until it is.\n", envVar, backend)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	fmt.Printf("\nConfiguration written to %s\n", path)
	return cfg, nil
}
