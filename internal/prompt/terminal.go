package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// Terminal prompts through promptui line editing.
type Terminal struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

// NewTerminal creates a terminal prompter.
func NewTerminal(stdin io.ReadCloser, stdout io.WriteCloser) *Terminal {
	return &Terminal{
		stdin:  stdin,
		stdout: stdout,
	}
}

// Ask implements Prompter. The default is pre-filled and editable.
func (p *Terminal) Ask(ctx context.Context, question, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt := promptui.Prompt{
		Label:     question,
		Default:   def,
		AllowEdit: true,
		Stdin:     p.stdin,
		Stdout:    p.stdout,
	}

	answer, err := prompt.Run()
	if err != nil {
		return "", translatePromptError(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm implements Prompter.
func (p *Terminal) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	label := fmt.Sprintf("%s %s", question, yesNoHint(defaultYes))
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		prompt := promptui.Prompt{
			Label:  label,
			Stdin:  p.stdin,
			Stdout: p.stdout,
			Validate: func(input string) error {
				if _, ok := parseYesNo(input, defaultYes); !ok {
					return errors.New("answer y or n")
				}
				return nil
			},
		}

		answer, err := prompt.Run()
		if err != nil {
			return false, translatePromptError(err)
		}

		if value, ok := parseYesNo(answer, defaultYes); ok {
			return value, nil
		}
	}
}

// Acknowledge implements Prompter.
func (p *Terminal) Acknowledge(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(p.stdout, message)

	prompt := promptui.Prompt{
		Label:       "Press Enter to continue",
		HideEntered: true,
		Stdin:       p.stdin,
		Stdout:      p.stdout,
	}

	if _, err := prompt.Run(); err != nil {
		return translatePromptError(err)
	}
	return nil
}

// translatePromptError maps Ctrl-C to cancellation; the terminal is in raw
// mode while promptui runs, so no SIGINT reaches the process.
func translatePromptError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return context.Canceled
	case errors.Is(err, promptui.ErrEOF):
		return ErrNoInput
	default:
		return fmt.Errorf("prompt: %w", err)
	}
}
