package params

import (
	"errors"
	"io"

	"github.com/charmbracelet/huh"

	oerrors "github.com/xymatic/modinit/internal/errors"
)

// Prompter asks the user for module metadata, starting from defaults.
type Prompter interface {
	Prompt(defaults Answers) (Answers, error)
}

// FormPrompter prompts with an interactive terminal form.
type FormPrompter struct {
	Input  io.Reader
	Output io.Writer
}

// Prompt runs the form and returns the edited answers.
func (p *FormPrompter) Prompt(defaults Answers) (Answers, error) {
	answers := defaults
	if answers.Stability == "" {
		answers.Stability = DefaultStability
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Module name").
				Value(&answers.Name),
			huh.NewInput().
				Title("Module description").
				Value(&answers.Description),
			huh.NewInput().
				Title("Module tags").
				Description("Separate tags with spaces.").
				Value(&answers.Tags),
			huh.NewSelect[string]().
				Title("Module stability").
				Options(huh.NewOptions(Stabilities...)...).
				Value(&answers.Stability),
		),
	)
	if p.Input != nil {
		form = form.WithInput(p.Input)
	}
	if p.Output != nil {
		form = form.WithOutput(p.Output)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Answers{}, oerrors.NewValidationError("prompt aborted", "")
		}
		return Answers{}, err
	}

	return answers, nil
}
