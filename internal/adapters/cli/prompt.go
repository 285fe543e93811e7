package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"

	"github.com/okian/psychometrician/internal/domain/model"
)

// Prompter asks the respondent for answers.
type Prompter interface {
	// Likert asks for one of the five Likert levels.
	Likert(question string) (model.Response, error)
	// Confirm asks a yes/no question.
	Confirm(question string) (bool, error)
}

// terminalPrompter asks through interactive promptui widgets.
type terminalPrompter struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

// NewTerminalPrompter creates a prompter on the given streams. Nil streams
// use the process terminal.
func NewTerminalPrompter(stdin io.ReadCloser, stdout io.WriteCloser) Prompter {
	return &terminalPrompter{stdin: stdin, stdout: stdout}
}

func likertChoices() []string {
	levels := model.LikertLevels()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = fmt.Sprintf("%s  %s", l, l.Label())
	}
	return out
}

func (p *terminalPrompter) Likert(question string) (model.Response, error) {
	sel := promptui.Select{
		Label:  question,
		Items:  likertChoices(),
		Size:   len(model.LikertLevels()),
		Stdin:  p.stdin,
		Stdout: p.stdout,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . | bold }}",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✔ {{ . | faint }}",
		},
	}
	idx, _, err := sel.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return model.LikertLevels()[idx], nil
}

func (p *terminalPrompter) Confirm(question string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
		Stdin:     p.stdin,
		Stdout:    p.stdout,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, ErrAborted
	default:
		return false, fmt.Errorf("read confirmation: %w", err)
	}
}
