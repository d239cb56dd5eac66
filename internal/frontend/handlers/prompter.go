package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
)

// TerminalPrompter implements Prompter on a Terminal.
type TerminalPrompter struct {
	term Terminal
}

// NewTerminalPrompter creates a Prompter that reads answers from term.
//
// Precondition: term must be non-nil.
func NewTerminalPrompter(term Terminal) *TerminalPrompter {
	return &TerminalPrompter{term: term}
}

// Prompt shows title and returns the trimmed answer.
//
// Postcondition: Returns "" when the user enters nothing or presses ESC.
func (p *TerminalPrompter) Prompt(title string) (string, error) {
	if err := p.term.WritePrompt(telnet.Colorize(telnet.Bold, title+" ")); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}
	in, err := p.term.ReadInput()
	if err != nil {
		return "", fmt.Errorf("reading prompt answer: %w", err)
	}
	if in.Cancel {
		return "", nil
	}
	return in.Text, nil
}

// Select lists candidates and returns the one the user picks by number or by
// case-insensitive name prefix.
//
// Postcondition: Returns one of candidates, or "" when the user cancels or the
// answer matches nothing.
func (p *TerminalPrompter) Select(title string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	for i, c := range candidates {
		if err := p.term.WriteLine(fmt.Sprintf("  %s%2d%s  %s", telnet.Cyan, i+1, telnet.Reset, c)); err != nil {
			return "", fmt.Errorf("writing candidates: %w", err)
		}
	}
	answer, err := p.Prompt(title)
	if err != nil || answer == "" {
		return "", err
	}
	return MatchCandidate(answer, candidates), nil
}

// MatchCandidate resolves answer against candidates: a 1-based number, an
// exact case-insensitive name, or the first case-insensitive prefix match.
//
// Postcondition: Returns "" when nothing matches.
func MatchCandidate(answer string, candidates []string) string {
	answer = strings.TrimSpace(answer)
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1]
		}
		return ""
	}
	lower := strings.ToLower(answer)
	if lower == "" {
		return ""
	}
	for _, c := range candidates {
		if strings.ToLower(c) == lower {
			return c
		}
	}
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			return c
		}
	}
	return ""
}
