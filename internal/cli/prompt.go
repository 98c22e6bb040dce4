package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/elasticnow/elasticnow/internal/cli/formatter"
	"github.com/elasticnow/elasticnow/internal/service"
)

// elasticnowHuhTheme returns a huh theme using the Gruvbox palette.
func elasticnowHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// HuhPrompter asks questions on the terminal.
type HuhPrompter struct {
	interactive func() bool
}

var _ service.Prompter = (*HuhPrompter)(nil)

// NewHuhPrompter returns a prompter that refuses to run when interactive
// reports false.
func NewHuhPrompter(interactive func() bool) *HuhPrompter {
	return &HuhPrompter{interactive: interactive}
}

func (p *HuhPrompter) run(field huh.Field) error {
	if p.interactive != nil && !p.interactive() {
		return ErrNotInteractive
	}
	err := huh.NewForm(huh.NewGroup(field)).
		WithTheme(elasticnowHuhTheme()).
		WithShowHelp(false).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return service.ErrPromptAborted
	}
	return err
}

func (p *HuhPrompter) Select(title string, labels []string) (string, error) {
	var choice string
	sel := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(labels...)...).
		Value(&choice)
	if err := p.run(sel); err != nil {
		return "", err
	}
	return choice, nil
}

func (p *HuhPrompter) Choose(title string, options []service.Option) (string, error) {
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Label, o.Value))
	}
	var choice string
	sel := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&choice)
	if err := p.run(sel); err != nil {
		return "", err
	}
	return choice, nil
}

func (p *HuhPrompter) Input(title string) (string, error) {
	var text string
	in := huh.NewInput().
		Title(title).
		Value(&text).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("cannot be empty")
			}
			return nil
		})
	if err := p.run(in); err != nil {
		return "", err
	}
	return text, nil
}
