// Package browser is the interactive task overview: groups and tasks in a
// sidebar, the help of the selected task in the content pane.
package browser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	keyhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/term"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/help"
	"github.com/footprint-tools/cmdtree/internal/tasks"
	"github.com/footprint-tools/cmdtree/internal/ui/splitpanel"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

// ErrNotTerminal is returned by Run when stdin or stdout is not a terminal.
var ErrNotTerminal = errors.New("interactive overview requires an interactive terminal")

// Run shows the browser and returns the command path of the task chosen
// with Enter, or nil when the user quit without choosing.
func Run(tree *commands.Tree) ([]string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, ErrNotTerminal
	}

	p := tea.NewProgram(
		newModel(tree),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(model)
	if m.chosen == nil {
		return nil, nil
	}
	return m.chosen.Path, nil
}

type item struct {
	label    string
	summary  string
	isHeader bool
	depth    int
	node     *commands.Node
}

type model struct {
	tree          *commands.Tree
	allItems      []item
	items         []item
	cursor        int
	sidebarScroll int
	contentScroll int
	width         int
	height        int
	focusSidebar  bool
	searchMode    bool
	searchQuery   string
	chosen        *commands.Node
	colors        style.ColorConfig
}

func newModel(tree *commands.Tree) model {
	items := buildItems(tree)
	m := model{
		tree:         tree,
		allItems:     items,
		items:        items,
		focusSidebar: true,
		colors:       style.GetColors(),
	}
	m.jumpToFirst()
	return m
}

// buildItems lays out the overview groups. Outside task mode the stock
// grouping is used with paths written as words.
func buildItems(tree *commands.Tree) []item {
	cfg, ok := tree.Tasks()
	if !ok {
		cfg = commands.DefaultTaskConfig()
		cfg.Separator = " "
	}

	var items []item
	for _, g := range tasks.Overview(tree.Root, cfg) {
		label := g.Label
		if g.Depth == 0 {
			label = "tasks"
		}
		items = append(items, item{label: label, isHeader: true, depth: g.Depth})
		for _, e := range g.Entries {
			items = append(items, item{label: e.Path, summary: e.Summary, depth: g.Depth, node: e.Node})
		}
	}
	return items
}

// filterItems keeps the entries matching the search query, with the header
// of every group that still has entries.
func (m *model) filterItems() {
	if m.searchQuery == "" {
		m.items = m.allItems
		m.jumpToFirst()
		return
	}

	var filtered []item
	var header *item
	for i := range m.allItems {
		it := m.allItems[i]
		if it.isHeader {
			header = &m.allItems[i]
			continue
		}
		if !fuzzy.MatchFold(m.searchQuery, it.label) && !strings.Contains(strings.ToLower(it.summary), strings.ToLower(m.searchQuery)) {
			continue
		}
		if header != nil {
			filtered = append(filtered, *header)
			header = nil
		}
		filtered = append(filtered, it)
	}
	m.items = filtered
	m.sidebarScroll = 0
	m.jumpToFirst()
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg)
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.filterItems()
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyEnter:
			if sel, ok := m.selected(); ok {
				m.chosen = sel.node
				return m, tea.Quit
			}

		case tea.KeyTab:
			m.focusSidebar = !m.focusSidebar

		case tea.KeyUp:
			m.move(-1)
		case tea.KeyDown:
			m.move(1)
		case tea.KeyPgUp:
			m.contentScroll = max(m.contentScroll-5, 0)
		case tea.KeyPgDown:
			m.contentScroll += 5
		case tea.KeyHome:
			m.jumpToFirst()
		case tea.KeyEnd:
			m.jumpToLast()

		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "q":
				return m, tea.Quit
			case "/":
				m.searchMode = true
			case "j":
				m.move(1)
			case "k":
				m.move(-1)
			case "g":
				m.jumpToFirst()
			case "G":
				m.jumpToLast()
			case "h":
				m.focusSidebar = true
			case "l":
				m.focusSidebar = false
			}
		}
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchMode = false
		m.searchQuery = ""
		m.filterItems()
	case tea.KeyEnter:
		m.searchMode = false
	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			r := []rune(m.searchQuery)
			m.searchQuery = string(r[:len(r)-1])
			m.filterItems()
		}
	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)
		m.filterItems()
	}
	return m, nil
}

// move steps the sidebar cursor over headers, or scrolls the content pane
// when it has focus.
func (m *model) move(delta int) {
	if !m.focusSidebar {
		m.contentScroll = max(m.contentScroll+delta, 0)
		return
	}
	m.seek(m.cursor+delta, delta)
}

// seek puts the cursor on the first entry from index from on, walking in
// the direction of delta. The cursor stays put when there is none.
func (m *model) seek(from, delta int) {
	for i := from; i >= 0 && i < len(m.items); i += delta {
		if !m.items[i].isHeader {
			m.cursor = i
			m.contentScroll = 0
			return
		}
	}
}

func (m *model) jumpToFirst() {
	m.cursor = 0
	m.seek(0, 1)
}

func (m *model) jumpToLast() {
	m.seek(len(m.items)-1, -1)
}

func (m model) selected() (item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) || m.items[m.cursor].isHeader {
		return item{}, false
	}
	return m.items[m.cursor], true
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	headerHeight := 1
	footerHeight := 1
	mainHeight := max(m.height-headerHeight-footerHeight, 3)

	layout := splitpanel.NewLayout(m.width, splitpanel.Config{
		SidebarWidthPercent: 0.3,
		SidebarMinWidth:     24,
		SidebarMaxWidth:     40,
	}, m.colors)
	layout.SetFocus(m.focusSidebar)
	layout.Height = mainHeight

	main := layout.Render(m.sidebarPanel(layout), m.contentPanel(layout), mainHeight)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), main, m.renderFooter())
}

func (m model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.colors.Info)).Render(m.tree.Name())
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Muted))

	line := title + muted.Render(fmt.Sprintf(" | %d tasks", m.countTasks()))
	switch {
	case m.searchMode:
		line += muted.Render(" | /") + m.searchQuery + "_"
	case m.searchQuery != "":
		line += muted.Render(" | filter: " + m.searchQuery)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(line)
}

func (m model) countTasks() int {
	n := 0
	for _, it := range m.items {
		if !it.isHeader {
			n++
		}
	}
	return n
}

func (m *model) sidebarPanel(layout *splitpanel.Layout) splitpanel.Panel {
	visible := max(layout.VisibleHeight(), 1)
	width := layout.SidebarContentWidth()

	if m.cursor < m.sidebarScroll {
		m.sidebarScroll = m.cursor
	} else if m.cursor >= m.sidebarScroll+visible {
		m.sidebarScroll = m.cursor - visible + 1
	}

	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.colors.UIActive))
	var lines []string
	for i := m.sidebarScroll; i < len(m.items) && len(lines) < visible; i++ {
		it := m.items[i]
		switch {
		case it.isHeader:
			lines = append(lines, style.Depth(it.depth, it.label))
		case i == m.cursor:
			lines = append(lines, active.Render(fitWidth("> "+it.label, width)))
		default:
			lines = append(lines, fitWidth("  "+it.label, width))
		}
	}
	if len(m.items) == 0 {
		lines = append(lines, style.Muted("no matching tasks"))
	}

	return splitpanel.Panel{Lines: lines, ScrollPos: m.cursor, TotalItems: len(m.items)}
}

func (m *model) contentPanel(layout *splitpanel.Layout) splitpanel.Panel {
	sel, ok := m.selected()
	if !ok {
		return splitpanel.Panel{}
	}

	lines := strings.Split(strings.TrimRight(help.Node(m.tree, sel.node), "\n"), "\n")
	visible := max(layout.VisibleHeight(), 1)
	m.contentScroll = min(m.contentScroll, max(len(lines)-visible, 0))

	end := min(m.contentScroll+visible, len(lines))
	return splitpanel.Panel{
		Lines:      lines[m.contentScroll:end],
		ScrollPos:  m.contentScroll,
		TotalItems: len(lines),
	}
}

func (m model) renderFooter() string {
	h := keyhelp.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Info))
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Muted))

	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "focus")),
		key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("jk", "nav")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "run")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(h.ShortHelpView(bindings))
}

func fitWidth(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}
