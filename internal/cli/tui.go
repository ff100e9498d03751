package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/render"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// Detail panel styles
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorTeal).
			Padding(0, 1).
			Width(panelWidth)
	panelNameStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	panelBadgeStyle  = lipgloss.NewStyle().Foreground(colorGold).Bold(true)
	panelLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	panelSpouseStyle = lipgloss.NewStyle().Foreground(colorRose)
)

const panelWidth = 52

// =============================================================================
// PersonBrowserModel - interactive family browser
// =============================================================================

// PersonBrowserModel is the bubbletea model of `kintree show`. It lists the
// people of a snapshot by generation and opens a detail panel for the person
// under the cursor. Selection changes are reported to Handler.
type PersonBrowserModel struct {
	People    []family.Person
	Symmetric bool // resolve spouses in both directions
	Handler   render.SelectionHandler

	Cursor   int
	Offset   int
	Height   int
	Selected string // id shown in the detail panel, empty when closed
}

// NewPersonBrowserModel creates a browser over data. People are listed by
// generation, keeping input order within a generation.
func NewPersonBrowserModel(data *family.FamilyData, symmetric bool, h render.SelectionHandler) PersonBrowserModel {
	people := slices.Clone(data.People)
	slices.SortStableFunc(people, func(a, b family.Person) int { return a.Generation - b.Generation })
	if h == nil {
		h = render.SelectionFuncs{}
	}
	m := PersonBrowserModel{
		People:    people,
		Symmetric: symmetric,
		Handler:   h,
		Height:    15,
	}
	if data.RootPersonID != "" {
		if i := slices.IndexFunc(people, func(p family.Person) bool { return p.ID == data.RootPersonID }); i >= 0 {
			m.Cursor = i
			m.scroll()
		}
	}
	return m
}

func (m PersonBrowserModel) Init() tea.Cmd {
	return nil
}

func (m PersonBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			if m.Selected == "" {
				return m, tea.Quit
			}
			m.clear()
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.scroll()
				m.follow()
			}
		case "down", "j":
			if m.Cursor < len(m.People)-1 {
				m.Cursor++
				m.scroll()
				m.follow()
			}
		case "enter", " ":
			if len(m.People) == 0 {
				return m, nil
			}
			if m.Selected == m.People[m.Cursor].ID {
				m.clear()
			} else {
				m.selectPerson(m.People[m.Cursor].ID)
			}
		case "s":
			if rel, ok := m.relations(); ok && rel.Spouse != nil {
				m.jump(rel.Spouse.ID)
			}
		case "p":
			if rel, ok := m.relations(); ok && len(rel.Parents) > 0 {
				m.jump(rel.Parents[0].ID)
			}
		case "c":
			if rel, ok := m.relations(); ok && len(rel.Children) > 0 {
				m.jump(rel.Children[0].ID)
			}
		case "t":
			m.Symmetric = !m.Symmetric
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.scroll()
	}
	return m, nil
}

func (m *PersonBrowserModel) selectPerson(id string) {
	m.Selected = id
	m.Handler.PersonSelected(id)
}

func (m *PersonBrowserModel) clear() {
	m.Selected = ""
	m.Handler.SelectionCleared()
}

// follow keeps an open detail panel on the person under the cursor.
func (m *PersonBrowserModel) follow() {
	if m.Selected != "" {
		m.selectPerson(m.People[m.Cursor].ID)
	}
}

// jump moves the cursor to id and selects it.
func (m *PersonBrowserModel) jump(id string) {
	i := slices.IndexFunc(m.People, func(p family.Person) bool { return p.ID == id })
	if i < 0 {
		return
	}
	m.Cursor = i
	m.scroll()
	m.selectPerson(id)
}

func (m *PersonBrowserModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// relations resolves the selected person.
func (m PersonBrowserModel) relations() (family.Relations, bool) {
	if m.Selected == "" {
		return family.Relations{}, false
	}
	i := slices.IndexFunc(m.People, func(p family.Person) bool { return p.ID == m.Selected })
	if i < 0 {
		return family.Relations{}, false
	}
	return resolveRelations(m.People[i], m.People, m.Symmetric), true
}

func (m PersonBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family"))
	b.WriteString("\n")
	help := "↑/↓ navigate  ⏎ details  esc close  q quit"
	if m.Selected != "" {
		help = "↑/↓ navigate  s spouse  p parent  c child  t symmetric  esc close"
	}
	b.WriteString(listDimStyle.Render(help))
	b.WriteString("\n\n")

	list := m.listView()
	if m.Selected != "" {
		i := slices.IndexFunc(m.People, func(p family.Person) bool { return p.ID == m.Selected })
		if i >= 0 {
			rel, _ := m.relations()
			list = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detailPanel(m.People[i], rel))
		}
	}
	b.WriteString(list)
	b.WriteString("\n\n")
	if len(m.People) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.People))))
	}
	return b.String()
}

func (m PersonBrowserModel) listView() string {
	end := min(m.Offset+m.Height, len(m.People))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.People[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, render.Truncate(render.DisplayName(p), 24), render.GenerationLabel(p.Generation), render.Lifespan(p)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Gen", "Life").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.People) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorGray)
			}
			switch {
			case idx == m.Cursor:
				return base.Foreground(colorTeal).Bold(true)
			case m.People[idx].ID == m.Selected:
				return base.Foreground(colorTeal)
			}
			return base
		})
	return t.Render()
}

// =============================================================================
// Detail panel
// =============================================================================

func resolveRelations(p family.Person, people []family.Person, symmetric bool) family.Relations {
	if symmetric {
		return family.ResolveSymmetric(p, people)
	}
	return family.Resolve(p, people)
}

// detailPanel renders one person with their relatives. Empty fields are left
// out.
func detailPanel(p family.Person, rel family.Relations) string {
	var b strings.Builder
	b.WriteString(panelNameStyle.Render(render.DisplayName(p)))
	b.WriteString("  ")
	b.WriteString(panelBadgeStyle.Render(render.GenerationLabel(p.Generation)))
	b.WriteString("\n")

	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString("\n")
		b.WriteString(panelLabelStyle.Render(label))
		b.WriteString(value)
	}
	line("Occupation", p.Occupation)
	line("Location", p.Location)
	line("Born", p.BirthDate)
	line("Passed", p.DeathDate)
	line("Parents", names(rel.Parents))
	if rel.Spouse != nil {
		line("Spouse", panelSpouseStyle.Render(render.DisplayName(*rel.Spouse)))
	}
	line("Children", names(rel.Children))

	if p.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(StyleDim.Render("About"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(panelWidth - 2).Render(p.Description))
	}
	if rel.Empty() {
		b.WriteString("\n\n")
		b.WriteString(StyleDim.Render("No relatives recorded"))
	}
	return panelStyle.Render(b.String())
}

func names(people []family.Person) string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = render.DisplayName(p)
	}
	return strings.Join(out, ", ")
}
