package ui

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrPromptInterrupted is returned when the user aborts a prompt with
// Ctrl-C.
var ErrPromptInterrupted = errors.New("prompt interrupted")

// Prompter asks the user questions.
type Prompter interface {
	// Ask prompts for a string, re-asking until validate accepts it.
	Ask(ctx context.Context, name, message string, validate func(string) error) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string, def bool) (bool, error)
}

// SurveyPrompter implements Prompter with github.com/AlecAivazis/survey.
type SurveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter returns a prompter on the process's terminal.
func NewSurveyPrompter(opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{opts: opts}
}

func (p *SurveyPrompter) Ask(ctx context.Context, name, message string, validate func(string) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	qs := []*survey.Question{{
		Name:   name,
		Prompt: &survey.Input{Message: message},
	}}
	if validate != nil {
		qs[0].Validate = func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}
	}

	answers := map[string]interface{}{}
	if err := survey.Ask(qs, &answers, p.opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	out, _ := answers[name].(string)
	return out, nil
}

func (p *SurveyPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{Message: message, Default: def}
	if err := survey.AskOne(prompt, &out, p.opts...); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrPromptInterrupted
	}
	return err
}
