package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads answer-generation prompts from a user-editable
// prompts.toml. Keys missing from the file fall back to embedded defaults.
//
// The file is written lazily on first Load, not in the constructor.
type PromptStore struct {
	mu       sync.RWMutex
	path     string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

// defaultPrompts are written to a fresh prompts.toml and used for any
// key the file omits.
var defaultPrompts = map[string]string{
	driven.PromptRAGSystem: domain.DefaultRAGSystemPrompt,
	driven.PromptRAGUser:   domain.DefaultRAGUserTemplate,
}

// placeholders is the number of %s verbs each template must carry.
var placeholders = map[string]int{
	driven.PromptRAGSystem: 0,
	driven.PromptRAGUser:   2,
}

// NewPromptStore creates a prompt store reading promptDir/prompts.toml.
// If promptDir is empty, defaults to ~/.sercha-kb/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".sercha-kb")
	}

	return &PromptStore{
		path: filepath.Join(promptDir, "prompts.toml"),
	}, nil
}

// Load returns the prompt template for the given name. A user prompt with
// the wrong number of %s placeholders is ignored in favour of the default.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("%w: unknown prompt %q", domain.ErrNotFound, name)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return def, nil
	}

	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache == nil {
		loaded, err := s.loadFile()
		if err != nil {
			return def, nil
		}
		s.mu.Lock()
		if s.cache == nil {
			s.cache = loaded
		}
		cache = s.cache
		s.mu.Unlock()
	}

	prompt, ok := cache[name]
	if !ok || strings.TrimSpace(prompt) == "" {
		return def, nil
	}
	if strings.Count(prompt, "%s") != placeholders[name] {
		return def, nil
	}
	return strings.TrimSpace(prompt), nil
}

// Reload clears the prompt cache, forcing a fresh read of the file.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Path returns the prompts file path.
func (s *PromptStore) Path() string {
	return s.path
}

// initialise writes the default prompts file if none exists.
func (s *PromptStore) initialise() {
	if _, err := os.Stat(s.path); err == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	data, err := toml.Marshal(defaultPrompts)
	if err != nil {
		s.initErr = fmt.Errorf("encode default prompts: %w", err)
		return
	}
	header := "# Prompts used when answering questions.\n" +
		"# rag_user takes two %s placeholders: the context block, then the question.\n\n"
	if err := os.WriteFile(s.path, append([]byte(header), data...), 0600); err != nil {
		s.initErr = fmt.Errorf("write default prompts: %w", err)
	}
}

func (s *PromptStore) loadFile() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	prompts := make(map[string]string)
	if err := toml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return prompts, nil
}
