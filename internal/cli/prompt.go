package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/curlgen/internal/generate"
	"github.com/studiowebux/curlgen/internal/types"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	methodStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

// ErrSelectionCancelled is returned when the picker is closed without a choice
var ErrSelectionCancelled = errors.New("selection cancelled")

type requestItem struct {
	name   string
	method string
	url    string
	kind   string
	index  int
}

func (i requestItem) FilterValue() string {
	return i.name + " " + i.url
}

func (i requestItem) Title() string {
	return fmt.Sprintf("%s %s", methodStyle.Render(fmt.Sprintf("%-7s", i.method)), i.name)
}

func (i requestItem) Description() string { return i.url }

type pickerModel struct {
	list     list.Model
	choice   int
	quitting bool
}

func newPickerModel(defs []types.RequestDefinition) pickerModel {
	items := make([]list.Item, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		name := def.Name
		if name == "" {
			name = def.URL
		}
		items = append(items, requestItem{
			name:   name,
			method: strings.ToUpper(def.Method),
			url:    def.URL,
			kind:   string(generate.PayloadKind(def)),
			index:  i,
		})
	}

	const defaultWidth = 80
	const listHeight = 14

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = "Select a request"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return pickerModel{list: l, choice: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.choice = -1
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(requestItem); ok {
				m.choice = i.index
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: generate • q/ctrl+c: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// pickRequest shows an interactive list and returns the chosen index
func pickRequest(defs []types.RequestDefinition) (int, error) {
	p := tea.NewProgram(newPickerModel(defs))
	finalModel, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(pickerModel)
	if result.choice < 0 {
		return 0, ErrSelectionCancelled
	}
	return result.choice, nil
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(requestItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	if i.kind != "NONE" {
		str += fmt.Sprintf(" [%s]", i.kind)
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}
