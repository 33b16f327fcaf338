// Package browse implements the interactive job browser TUI.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jaume/remotejobs/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	noPhoneBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42"))

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type browseModel struct {
	jobs     []model.Job
	filtered []model.Job

	listViewport   viewport.Model
	detailViewport viewport.Model

	cursor int
	width  int
	height int
	ready  bool

	view      viewState
	detailJob model.Job

	// Category filter cycles through nothing, then each fixed category.
	categoryIdx int
	noPhoneOnly bool
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "c":
		m.categoryIdx = (m.categoryIdx + 1) % (len(model.Categories()) + 1)
		m.applyFilters()
		return m, nil
	case "C":
		m.categoryIdx = 0
		m.applyFilters()
		return m, nil
	case "p":
		m.noPhoneOnly = !m.noPhoneOnly
		m.applyFilters()
		return m, nil
	case "o":
		if len(m.filtered) > 0 {
			openURL(m.filtered[m.cursor].URL)
		}
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		url := m.detailJob.URL
		if m.detailJob.ApplyURL != "" {
			url = m.detailJob.ApplyURL
		}
		openURL(url)
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.filtered) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detailJob = m.filtered[m.cursor]
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.filtered)-1, 0))
}

func (m *browseModel) ensureCursorVisible() {
	cursorTop := m.cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m browseModel) currentCategory() model.Category {
	if m.categoryIdx == 0 {
		return ""
	}
	return model.Categories()[m.categoryIdx-1]
}

func (m *browseModel) applyFilters() {
	category := m.currentCategory()
	m.filtered = m.filtered[:0]
	for _, job := range m.jobs {
		if category != "" && job.Category != category {
			continue
		}
		if m.noPhoneOnly && !job.IsNoPhone {
			continue
		}
		m.filtered = append(m.filtered, job)
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.filtered)-1, 0))
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *browseModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1).
	width := max(m.width-2, 20)
	height := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.listViewport.Width = width
		m.listViewport.Height = height
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderJobs(m.filtered, m.cursor, m.listViewport.Width))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	header := fmt.Sprintf(" Remote Jobs (%d/%d)", len(m.filtered), len(m.jobs))
	if category := m.currentCategory(); category != "" {
		header += fmt.Sprintf("  category=%s", category)
	}
	if m.noPhoneOnly {
		header += "  no-phone only"
	}

	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := " ↑/↓ cursor  Enter detail  c category  p no-phone  o open  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerStyle.Render(header) + "\n" + pane + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	j := m.detailJob
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	title := j.Title
	if j.IsNoPhone {
		title += "  " + noPhoneBadgeStyle.Render("[no phone]")
	}
	b.WriteString(detailTitleStyle.Render(title))
	b.WriteByte('\n')

	addField("Company", j.Company)
	addField("Location", j.Location)
	addField("Category", string(j.Category))
	addField("Source", j.Source)
	addField("Salary", formatSalary(j))
	if j.PostedAt != nil {
		addField("Posted", j.PostedAt.Format("2006-01-02"))
	}
	addField("Scraped", j.ScrapedAt.Format("2006-01-02 15:04"))
	if len(j.Tags) > 0 {
		addField("Tags", strings.Join(j.Tags, ", "))
	}
	addField("URL", j.URL)

	if j.Description != "" {
		b.WriteByte('\n')
		width := max(m.width-8, 40)
		b.WriteString(descBodyStyle.Render(wordWrap(j.Description, width)))
		b.WriteByte('\n')
	}

	return b.String()
}

func renderJobs(jobs []model.Job, cursor, width int) string {
	if len(jobs) == 0 {
		return "\n  No jobs match the current filters."
	}

	var b strings.Builder
	for i, job := range jobs {
		title := job.Title
		if job.IsNoPhone {
			title += " ☎✗"
		}

		subtitle := fmt.Sprintf("%s · %s · %s", job.Company, job.Category, job.Source)
		if salary := formatSalary(job); salary != "" {
			subtitle += " · " + salary
		}

		if i == cursor {
			b.WriteString(selectedJobTitleStyle.Width(width).Render(" "+title) + "\n")
			b.WriteString(selectedJobSubtitleStyle.Width(width).Render("   "+subtitle) + "\n")
		} else {
			b.WriteString(jobTitleStyle.Render(" "+title) + "\n")
			b.WriteString(jobSubtitleStyle.Render("   "+subtitle) + "\n")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatSalary(job model.Job) string {
	switch {
	case job.SalaryMin == nil:
		return ""
	case job.SalaryMax != nil && *job.SalaryMax != *job.SalaryMin:
		return fmt.Sprintf("$%s-$%s", formatThousands(*job.SalaryMin), formatThousands(*job.SalaryMax))
	default:
		return "$" + formatThousands(*job.SalaryMin)
	}
}

func formatThousands(n int) string {
	if n >= 1000 && n%1000 == 0 {
		return fmt.Sprintf("%dk", n/1000)
	}
	return fmt.Sprintf("%d", n)
}

func wordWrap(text string, width int) string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				lines = append(lines, line)
				line = w
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive job browser over the given jobs.
func Run(jobs []model.Job) error {
	m := browseModel{jobs: jobs}
	m.filtered = append(m.filtered, jobs...)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
