package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by Pick when the user leaves without choosing.
var ErrCancelled = errors.New("selection cancelled")

// PickerModel is a bubbletea model listing the publishers and reading an
// ordinal into a text input.
type PickerModel struct {
	publishers []string
	input      textinput.Model
	message    string
	ordinal    int
	cancelled  bool
}

// NewPickerModel returns a focused picker over publishers.
func NewPickerModel(publishers []string) PickerModel {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("1-%d", len(publishers))
	ti.Prompt = "Input publisher ID: "
	ti.CharLimit = 10
	ti.Width = 10
	ti.Focus()

	return PickerModel{publishers: publishers, input: ti}
}

// Init starts the cursor blink.
func (m PickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			n, err := ParseOrdinal(m.input.Value(), len(m.publishers))
			if err != nil {
				m.message = Message(err, len(m.publishers))
				m.input.SetValue("")
				return m, nil
			}
			m.ordinal = n
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the publisher list, the input and the last error.
func (m PickerModel) View() string {
	if m.ordinal > 0 || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Publishers"))
	b.WriteString("\n")
	for i, name := range m.publishers {
		b.WriteString(itemNumberStyle.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(formatKey("enter", "select") + " • " + formatKey("esc", "cancel")))

	return boxStyle.Render(b.String())
}

// Ordinal returns the chosen 1-based ordinal, or 0 when nothing was chosen.
func (m PickerModel) Ordinal() int {
	return m.ordinal
}

// Pick runs the picker on the terminal and returns the chosen ordinal.
func Pick(ctx context.Context, publishers []string, opts ...tea.ProgramOption) (int, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(NewPickerModel(publishers), opts...).Run()
	if err != nil {
		return 0, fmt.Errorf("publisher picker: %w", err)
	}

	m, ok := final.(PickerModel)
	if !ok || m.ordinal == 0 {
		return 0, ErrCancelled
	}
	return m.ordinal, nil
}
