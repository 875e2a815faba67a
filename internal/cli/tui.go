package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mindtree/pkg/editor"
	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// Tree styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Reverse(true)
	treeRootStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorRoot)
	treeNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	treeTypeStyle     = lipgloss.NewStyle().Foreground(colorGray)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	treeErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	markCollapsed = "[+]"
	markLeft      = "◀"
	markRight     = "▶"
	newNodeTopic  = "New node"
)

// =============================================================================
// MapModel - Interactive map browser
// =============================================================================

// MapModel is the bubbletea model for browsing and editing a map.
type MapModel struct {
	ed     *editor.Editor
	path   string
	format format.Format

	Height  int
	Offset  int
	Dirty   bool
	status  string
	isError bool

	// renaming holds the topic being typed; nil outside rename mode.
	renaming []rune

	// save writes the map back. Nil makes the map read-only on disk.
	save func(*mind.Mind) error
}

// NewMapModel creates a browser over ed with the root selected.
func NewMapModel(ed *editor.Editor, path string, f format.Format, save func(*mind.Mind) error) MapModel {
	if root := ed.Mind().Root(); root != nil {
		ed.SelectNode(root.ID())
	}
	return MapModel{ed: ed, path: path, format: f, Height: 20, save: save}
}

func (m MapModel) Init() tea.Cmd {
	return nil
}

func (m MapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.renaming != nil {
			return m.updateRename(msg), nil
		}
		return m.updateKey(msg)
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 5
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m MapModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.ed
	sel := ed.SelectedNode()
	m.status, m.isError = "", false

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		ed.SelectUp()
	case "down", "j":
		ed.SelectDown()
	case "left", "h":
		ed.SelectLeft()
	case "right", "l":
		ed.SelectRight()
	case " ", "enter":
		if sel != nil {
			m.report(ed.Toggle(sel.ID()), "")
		}
	case "E":
		ed.ExpandAll()
	case "C":
		ed.CollapseAll()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		ed.ExpandToDepth(int(msg.String()[0] - '0'))
	case "tab", "a":
		if sel != nil {
			n, err := ed.AddNode(sel.ID(), "", newNodeTopic, nil, mind.Right)
			m.edited(err, "Added child")
			if err == nil {
				ed.SelectNode(n.ID())
			}
		}
	case "o", "O":
		if sel != nil {
			insert := ed.InsertNodeAfter
			if msg.String() == "O" {
				insert = ed.InsertNodeBefore
			}
			n, err := insert(sel.ID(), "", newNodeTopic, nil)
			m.edited(err, "Added sibling")
			if err == nil {
				ed.SelectNode(n.ID())
			}
		}
	case "x", "delete":
		if sel != nil {
			m.edited(ed.RemoveNode(sel.ID()), "Removed "+sel.Topic)
		}
	case "r", "f2":
		if sel != nil {
			if ed.NodeEditable(sel) {
				m.renaming = []rune(sel.Topic)
			} else {
				m.report(fmt.Errorf("node is not editable"), "")
			}
		}
	case "s", "ctrl+s":
		m.writeBack()
	}
	m.scroll()
	return m, nil
}

func (m MapModel) updateRename(msg tea.KeyMsg) MapModel {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.renaming = nil
	case tea.KeyEnter:
		sel := m.ed.SelectedNode()
		topic := string(m.renaming)
		m.renaming = nil
		if sel != nil {
			m.edited(m.ed.UpdateNode(sel.ID(), topic, ""), "Renamed")
		}
	case tea.KeyBackspace:
		if len(m.renaming) > 0 {
			m.renaming = m.renaming[:len(m.renaming)-1]
		}
	case tea.KeySpace:
		m.renaming = append(m.renaming, ' ')
	case tea.KeyRunes:
		m.renaming = append(m.renaming, msg.Runes...)
	}
	return m
}

// edited reports the result of a structural edit and marks the map dirty
// on success.
func (m *MapModel) edited(err error, ok string) {
	if err == nil {
		m.Dirty = true
	}
	m.report(err, ok)
}

func (m *MapModel) report(err error, ok string) {
	if err != nil {
		m.status, m.isError = err.Error(), true
		return
	}
	m.status = ok
}

func (m *MapModel) writeBack() {
	if m.save == nil {
		m.report(fmt.Errorf("cannot save a map read from stdin"), "")
		return
	}
	if err := m.save(m.ed.Mind()); err != nil {
		m.report(err, "")
		return
	}
	m.Dirty = false
	m.report(nil, "Saved "+m.path)
}

// scroll keeps the selected line inside the window.
func (m *MapModel) scroll() {
	lines := visibleNodes(m.ed.Mind())
	sel := m.ed.SelectedNode()
	for i, n := range lines {
		if n != sel {
			continue
		}
		if i < m.Offset {
			m.Offset = i
		}
		if i >= m.Offset+m.Height {
			m.Offset = i - m.Height + 1
		}
		return
	}
}

func (m MapModel) View() string {
	var b strings.Builder

	title := m.ed.Mind().Name
	if m.Dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("%s · %s", m.path, m.format)))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("←↑↓→ move  ␣ toggle  a child  o sibling  r rename  x delete  s save  q quit"))
	b.WriteString("\n\n")

	lines := visibleNodes(m.ed.Mind())
	end := min(m.Offset+m.Height, len(lines))
	sel := m.ed.SelectedNode()
	for _, n := range lines[m.Offset:end] {
		b.WriteString(m.renderLine(n, n == sel))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.renaming != nil:
		b.WriteString(StyleValue.Render("Rename: " + string(m.renaming) + "▏"))
	case m.isError:
		b.WriteString(treeErrorStyle.Render(m.status))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(m.status))
	default:
		b.WriteString(treeDimStyle.Render(fmt.Sprintf("  [%d nodes, depth %d]", m.ed.Mind().Len(), m.ed.Depth())))
	}
	return b.String()
}

func (m MapModel) renderLine(n *mind.Node, selected bool) string {
	indent := strings.Repeat("  ", n.Level()-1)
	side := ""
	if p := n.Parent(); p != nil && p.IsRoot() {
		side = markRight + " "
		if n.Direction() == mind.Left {
			side = markLeft + " "
		}
	}

	topic := n.Topic
	style := treeNormalStyle
	switch {
	case selected:
		style = treeSelectedStyle
	case n.IsRoot():
		style = treeRootStyle
	}
	line := indent + treeDimStyle.Render(side) + style.Render(topic)
	if n.SelectedType != "" {
		line += " " + treeTypeStyle.Render("("+n.SelectedType+")")
	}
	if !n.Expanded && !n.IsLeaf() {
		line += " " + treeDimStyle.Render(markCollapsed)
	}
	return line
}

// visibleNodes lists the nodes shown in the browser in pre-order. Children
// of collapsed nodes are skipped.
func visibleNodes(m *mind.Mind) []*mind.Node {
	var out []*mind.Node
	m.Walk(func(n *mind.Node) bool {
		out = append(out, n)
		return n.Expanded || n.IsRoot()
	})
	return out
}
