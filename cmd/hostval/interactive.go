package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostserde/host"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// header and footer lines around the viewport
const chromeHeight = 4

type browserModel struct {
	root      *node
	nodes     []*node
	name      string
	status    string
	search    textinput.Model
	viewport  viewport.Model
	cursor    int
	ready     bool
	searching bool
}

func newBrowserModel(name string, v host.Value) *browserModel {
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "path or text"
	search.Width = 40

	m := &browserModel{
		root:   buildTree(v),
		name:   name,
		search: search,
	}
	m.nodes = visible(m.root)
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
		case "pgup":
			m.cursor = max(m.cursor-m.viewport.Height, 0)
		case "pgdown":
			m.cursor = min(m.cursor+m.viewport.Height, len(m.nodes)-1)
		case "enter", " ":
			n := m.nodes[m.cursor]
			if n.kind == nodeContainer {
				n.expanded = !n.expanded
			}
		case "right", "l":
			if n := m.nodes[m.cursor]; n.kind == nodeContainer {
				n.expanded = true
			}
		case "left", "h":
			n := m.nodes[m.cursor]
			if n.kind == nodeContainer && n.expanded {
				n.expanded = false
			} else if n.parent != nil {
				m.moveTo(n.parent)
			}
		case "e":
			setExpanded(m.root, true)
		case "c":
			setExpanded(m.root, false)
			m.root.expanded = true
			m.cursor = 0
		case "/":
			m.searching = true
			m.status = ""
			m.search.SetValue("")
			return m, m.search.Focus()
		}
		m.refresh()
		return m, nil
	}
	return m, nil
}

func (m *browserModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		if n := find(m.root, m.search.Value()); n != nil {
			for p := n.parent; p != nil; p = p.parent {
				p.expanded = true
			}
			m.nodes = visible(m.root)
			m.moveTo(n)
		} else {
			m.status = "no match for " + m.search.Value()
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *browserModel) moveTo(target *node) {
	for i, n := range m.nodes {
		if n == target {
			m.cursor = i
			return
		}
	}
}

// find returns the first node in document order whose path or value
// contains query, ignoring case.
func find(root *node, query string) *node {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var found *node
	var walk func(n *node) bool
	walk = func(n *node) bool {
		if n != root && (strings.Contains(strings.ToLower(n.path()), query) ||
			strings.Contains(strings.ToLower(n.summary), query)) {
			found = n
			return true
		}
		for _, c := range n.children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

func (m *browserModel) refresh() {
	m.nodes = visible(m.root)
	m.cursor = min(m.cursor, len(m.nodes)-1)
	if !m.ready {
		return
	}

	lines := make([]string, len(m.nodes))
	for i, n := range m.nodes {
		if i == m.cursor {
			lines[i] = selectedStyle.Render(plain.line(n))
		} else {
			lines[i] = colors.line(n)
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m *browserModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("hostval"))
	b.WriteString(" ")
	b.WriteString(m.name)
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(m.nodes[m.cursor].path()))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(m.search.View())
	case m.status != "":
		b.WriteString(helpStyle.Render(m.status))
	default:
		b.WriteString(helpStyle.Render("↑/↓ move • enter toggle • ←/→ collapse/expand • e/c all • / search • q quit"))
	}
	return b.String()
}

func runInteractive(name string, v host.Value) error {
	p := tea.NewProgram(newBrowserModel(name, v), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
