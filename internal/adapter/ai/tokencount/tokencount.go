// Package tokencount estimates prompt token usage for model calls.
//
// Gemini does not share a public tokenizer; cl100k_base is a close enough
// approximation for budgeting and logging purposes.
package tokencount

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoding() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding("cl100k_base")
	})
	return enc, encErr
}

// CountTokens counts the tokens in a single text.
func CountTokens(text string) (int, error) {
	e, err := encoding()
	if err != nil {
		return 0, err
	}
	return len(e.Encode(text, nil, nil)), nil
}

// CountPromptTokens counts the combined system and user prompt tokens.
func CountPromptTokens(systemPrompt, userPrompt string) (int, error) {
	e, err := encoding()
	if err != nil {
		return 0, err
	}
	return len(e.Encode(systemPrompt, nil, nil)) + len(e.Encode(userPrompt, nil, nil)), nil
}
