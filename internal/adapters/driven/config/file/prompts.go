package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads verifier prompts from user-editable files on disk,
// falling back to embedded defaults.
//
// Initialisation is lazy: the directory and default files are created on the
// first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written to disk on first use and used whenever a file
// is missing or malformed.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptVerifySystem: `You are a careful academic integrity reviewer. You judge one unit of text at a time against the prior material you are shown.

Respond with a single JSON object and nothing else:
{"classification": "<one of the allowed classes>", "confidence": <number between 0 and 1>, "rationale": "<one or two sentences>", "references": [{"id": "<candidate id>", "source": "<candidate source>", "similarity": <number between 0 and 1>}]}

Only cite candidate ids that appear in the prompt. Use an empty references list when no candidate supports your decision.`,

	driven.PromptVerifyPlagiarism: `Decide whether the SEGMENT below was copied or paraphrased from any of the CANDIDATES.

Allowed classes:
- copied: the segment reproduces a candidate verbatim or nearly verbatim
- paraphrased: the segment restates a candidate's content in different words
- original: the segment is not derived from any candidate

SEGMENT:
%s

Local similarity score: %.2f

CANDIDATES:
%s`,

	driven.PromptVerifyAI: `Decide whether the SENTENCE below was written by a language model.

Allowed classes:
- ai: the sentence reads as machine-generated
- human: the sentence reads as written by a person
- uncertain: there is not enough signal to decide

SENTENCE:
%s

Local style score: %.2f

PRIOR MATERIAL (may be empty):
%s`,

	driven.PromptVerifyNovelty: `Decide whether the CLAIM below is already stated in any of the CANDIDATES.

Allowed classes:
- matched: a candidate states the same claim
- unmatched: no candidate states the claim
- uncertain: a candidate is related but the match is unclear

CLAIM:
%s

Local similarity score: %.2f

CANDIDATES:
%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.veritas/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name. A user file whose
// placeholders do not match the default's is ignored with a warning, so a
// bad edit never reaches the verifier.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	defaultPrompt, hasDefault := defaultPrompts[name]
	if s.initErr != nil {
		if hasDefault {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	switch {
	case err != nil && hasDefault:
		prompt = defaultPrompt
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case hasDefault && !samePlaceholders(prompt, defaultPrompt):
		logger.Warn("prompt placeholders changed, using built-in prompt", "prompt", name)
		prompt = defaultPrompt
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// samePlaceholders reports whether two templates use the same fmt verbs in
// the same order.
func samePlaceholders(a, b string) bool {
	va, vb := verbs(a), verbs(b)
	if len(va) != len(vb) {
		return false
	}
	for i := range va {
		if va[i] != vb[i] {
			return false
		}
	}
	return true
}

// verbs lists the fmt verbs of a template, ignoring "%%".
func verbs(tmpl string) []string {
	var out []string
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		j := i + 1
		for j < len(tmpl) && strings.IndexByte("+-# 0123456789.", tmpl[j]) >= 0 {
			j++
		}
		if j >= len(tmpl) {
			break
		}
		if tmpl[j] != '%' {
			out = append(out, tmpl[i:j+1])
		}
		i = j
	}
	return out
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Veritas Prompts

Prompts sent to the external verifier for escalated units.

## Files

- ` + "`verify_system.txt`" + ` - Fixes the JSON verdict shape for every call
- ` + "`verify_plagiarism.txt`" + ` - Judges one segment against candidate previews
- ` + "`verify_ai.txt`" + ` - Judges whether one sentence is machine-written
- ` + "`verify_novelty.txt`" + ` - Judges whether one claim appears in prior material

## Format Placeholders

The three verify_<kind> prompts take, in order:
- ` + "`%s`" + ` - the unit text
- ` + "`%.2f`" + ` - the local score
- ` + "`%s`" + ` - the candidate list

A prompt whose placeholders differ from these is ignored and the built-in
prompt is used instead.
`
	return os.WriteFile(path, []byte(content), 0600)
}
