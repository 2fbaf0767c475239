// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the veritas data directory (~/.veritas).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (config.toml)
//   - PromptStore: user-editable verifier prompts (prompts/*.txt)
package file
