package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// View renders the current view (Bubble Tea interface).
func (m RemindersModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return m.renderErrorView()
	case ViewStateLoading:
		return m.renderLoadingView()
	case ViewStateDetail:
		return m.renderDetailView()
	case ViewStateCompose:
		return m.renderComposeView()
	case ViewStateList, ViewStateConfirmDelete, ViewStateConfirmDeleteAll:
		return m.renderListView()
	default:
		return ""
	}
}

func (m RemindersModel) renderTitle() string {
	title := HeaderStyle.Render("Reminders")
	if m.sync.Stale() {
		title += " " + StaleStyle.Render("(stale)")
	}
	return title
}

func (m RemindersModel) renderLoadingView() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), "", RenderLoading(m.loading))
}

func (m RemindersModel) renderErrorView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		"",
		CriticalStyle.Render("Could not load reminders: ")+ErrorText(m.err),
		"",
		SubtleStyle.Render("r retry • q quit"),
	)
}

// renderListView renders search box, rows, pagination footer and status bar.
func (m RemindersModel) renderListView() string {
	sections := []string{m.renderTitle(), m.renderSearch()}
	sections = append(sections, RenderHeader(m.sync.Projection().Glyphs, m.width))
	sections = append(sections, m.rows.View())
	sections = append(sections, m.renderPaginationFooter())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RemindersModel) renderSearch() string {
	if m.searching || m.search.Value() != "" {
		return m.search.View()
	}
	return SubtleStyle.Render("/ to search")
}

// renderPaginationFooter shows the summary, page number and page controls.
func (m RemindersModel) renderPaginationFooter() string {
	proj := m.sync.Projection()

	prev := SubtleStyle.Render("‹ prev")
	if proj.PrevEnabled {
		prev = ValueStyle.Render("‹ prev")
	}
	next := SubtleStyle.Render("next ›")
	if proj.NextEnabled {
		next = ValueStyle.Render("next ›")
	}

	parts := []string{
		LabelStyle.Render(proj.Summary),
		prev,
		LabelStyle.Render(fmt.Sprintf("page %d", proj.Page)),
		next,
		LabelStyle.Render(fmt.Sprintf("%d per page", m.sync.State().PageSize)),
	}
	if proj.Loading {
		parts = append(parts, m.loading.View())
	}
	return strings.Join(parts, "  ")
}

// renderStatusBar shows a pending confirmation, else the current toast.
func (m RemindersModel) renderStatusBar() string {
	switch m.state {
	case ViewStateConfirmDelete:
		return WarningStyle.Render(
			fmt.Sprintf("Delete %q? (y/n)", truncateText(SingleLine(m.pending.Message), 40)))
	case ViewStateConfirmDeleteAll:
		return CriticalStyle.Render("Delete ALL reminders? This cannot be undone. (y/n)")
	default:
		return m.toaster.View()
	}
}

func (m RemindersModel) renderComposeView() string {
	sections := []string{m.renderTitle(), m.form.View(m.rowCtx.now(), m.width)}
	if m.saving {
		sections = append(sections, m.loading.View()+" Saving...")
	}
	sections = append(sections, m.toaster.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDetailView shows one reminder in full.
func (m RemindersModel) renderDetailView() string {
	item := m.rows.SelectedItem()
	if item == nil {
		return m.renderListView()
	}
	r := *item
	now := m.rowCtx.now()
	width := max(minMessageWidth, m.width-borderPadding)

	var content strings.Builder
	content.WriteString(HeaderStyle.Render("REMINDER"))
	content.WriteString("\n\n")
	content.WriteString(lipgloss.NewStyle().Width(width - 2).Render(FormatInline(r.Message)))
	content.WriteString("\n\n")

	field := func(label, value string) {
		content.WriteString(LabelStyle.Render(fmt.Sprintf("%-12s", label)))
		content.WriteString(ValueStyle.Render(value))
		content.WriteString("\n")
	}
	status := StatusText(r, now)
	field("To:", TargetLabels(r, m.rowCtx.labels))
	field("Next run:", ScheduleText(r, now))
	field("Repeats:", RecurrenceText(r))
	field("Status:", statusStyle(status).Render(status))
	if !r.CreatedAt.IsZero() {
		field("Created:", humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
	}
	field("ID:", r.ID)

	sections := []string{
		BoxStyle.Width(width).Render(strings.TrimRight(content.String(), "\n")),
		m.renderStatusBar(),
		SubtleStyle.Render("esc back • e edit • t pause/resume • d delete • x dismiss"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
