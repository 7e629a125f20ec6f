package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/myasin/meetnotes/internal/model"
	"github.com/myasin/meetnotes/internal/transcript"
	"github.com/myasin/meetnotes/internal/ui"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch {
	case m.confirm != deleteNone:
		sections = append(sections, m.renderConfirm())
	case m.form != formNone:
		sections = append(sections, m.renderForm())
	case m.picking:
		sections = append(sections, m.renderFolderPicker())
	case m.page == PageDetail:
		sections = append(sections, m.renderDetail())
	case m.page == PageFolders:
		sections = append(sections, m.renderFoldersPage())
	default:
		sections = append(sections, m.renderEventList())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	if m.errorMessage != "" {
		sections = append(sections, ui.ErrorStyle.Render("Error: ")+ui.ErrorTextStyle.Render(m.errorMessage))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("MEETNOTES")

	tab := func(label string, active bool) string {
		if active {
			return ui.PanelTitleActiveStyle.Render(label)
		}
		return ui.DimStyle.Render(label)
	}

	tabs := strings.Join([]string{
		tab("[1] Home", m.page == PageHome),
		tab("[2] Events", m.page == PageEvents || m.page == PageDetail),
		tab("[3] Folders", m.page == PageFolders),
	}, "  ")

	return title + "  " + tabs
}

func (m Model) renderStatusBar() string {
	var dot string
	if sess := m.controller.Active(); sess != nil {
		if sess.Paused {
			dot = ui.PausedBadgeStyle.Render("● PAUSED")
		} else {
			dot = ui.RecordingDotStyle.Render("● REC")
		}
	} else {
		dot = ui.IdleDotStyle.Render("○ IDLE")
	}

	var busy string
	if m.summarizing {
		busy = "  " + ui.SpinnerStyle.Render("⟳ AI")
	}

	return dot + busy + "  " + ui.StatusStyle.Render(m.statusText)
}

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	// header(1) + status(1) + dividers(2) + error(1) + footer(1)
	return max(5, m.height-6)
}

func (m Model) renderEventList() string {
	var lines []string

	if m.page == PageEvents {
		viewTab := func(v model.View, label string) string {
			if m.view == v {
				return ui.SelectedStyle.Render(label)
			}
			return ui.DimStyle.Render(label)
		}
		lines = append(lines, strings.Join([]string{
			viewTab(model.ViewToday, "[t] Today"),
			viewTab(model.ViewWeek, "[w] Week"),
			viewTab(model.ViewMonth, "[m] Month"),
		}, "  "))
		lines = append(lines, "")
	}

	if len(m.events) == 0 {
		if m.page == PageHome {
			lines = append(lines, ui.DimStyle.Render("  No meetings scheduled for today"))
			lines = append(lines, ui.DimStyle.Render("  Press 2 for Events to set up a meeting"))
		} else {
			lines = append(lines, ui.DimStyle.Render("  No events scheduled"))
		}
	}

	for i, ev := range m.events {
		lines = append(lines, m.renderEventLine(i, ev))
	}

	return m.fitContent(lines)
}

func (m Model) renderEventLine(i int, ev model.Event) string {
	date := ui.TimestampStyle.Render(ev.Date.Format("Jan _2 15:04"))

	var badges string
	if m.controller.Recording(ev.ID) {
		badges += " " + ui.RecordingDotStyle.Render("●")
	}
	if ev.Summary != "" {
		badges += " " + ui.AccentStyle.Render("✨")
	}
	for _, f := range m.repo.FoldersOf(ev) {
		badges += " " + f.Icon
	}

	line := fmt.Sprintf("%s  %s — %s%s", date, ev.Title, ev.Location, badges)
	if i == m.selected {
		return ui.SelectedStyle.Render("> ") + ui.SelectedStyle.Render(line)
	}
	return "  " + line
}

func (m Model) renderFoldersPage() string {
	var lines []string

	all := "📋 All"
	if m.selectedFolder == 0 {
		all = ui.SelectedStyle.Render("> " + all)
	} else {
		all = "  " + all
	}
	if m.folderFilter == nil {
		all += ui.AccentStyle.Render("  (active)")
	}
	lines = append(lines, all)

	for i, f := range m.folders {
		line := f.Icon + " " + f.Name
		if m.selectedFolder == i+1 {
			line = ui.SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if m.folderFilter != nil && *m.folderFilter == f.ID {
			line += ui.AccentStyle.Render("  (active)")
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	lines = append(lines, ui.PanelTitleStyle.Render(fmt.Sprintf("EVENTS (%d)", len(m.events))))
	if len(m.events) == 0 {
		lines = append(lines, ui.DimStyle.Render("  No events in this folder"))
	}
	for i, ev := range m.events {
		lines = append(lines, m.renderEventLine(i, ev))
	}

	return m.fitContent(lines)
}

func (m Model) renderDetail() string {
	ev, ok := m.detailEvent()
	if !ok {
		return m.fitContent([]string{ui.DimStyle.Render("  Event not found")})
	}

	var lines []string
	lines = append(lines, ui.PanelTitleActiveStyle.Render(ev.Title))
	lines = append(lines, ui.DimStyle.Render("📍 "+ev.Location+"   📅 "+ev.Date.Format("Jan _2 2006 15:04")))
	lines = append(lines, "")

	if ev.Summary != "" {
		lines = append(lines, ui.PanelTitleStyle.Render("SUMMARY"))
		lines = append(lines, wrapIndent(ev.Summary, m.width-4)...)
		lines = append(lines, "")
	}

	if len(ev.KeyPoints) > 0 {
		lines = append(lines, ui.PanelTitleStyle.Render("KEY POINTS"))
		for _, p := range ev.KeyPoints {
			lines = append(lines, wrapIndent("• "+p, m.width-4)...)
		}
		lines = append(lines, "")
	}

	lines = append(lines, ui.PanelTitleStyle.Render("NOTES"))

	live := m.controller.Recording(ev.ID) && m.liveText != ""
	segs := transcript.Segments(ev.Transcription)
	if live {
		segs = transcript.Segments(m.liveText)
	}

	if len(segs) == 0 {
		lines = append(lines, ui.DimStyle.Render("  No transcription available"))
	}
	for i, seg := range segs {
		marker := "  "
		if i == m.segIndex && !live {
			marker = ui.SelectedStyle.Render("> ")
		}
		for j, l := range strings.Split(strings.TrimSpace(seg), "\n") {
			prefix := "  "
			if j == 0 {
				prefix = marker
			}
			if live && i == len(segs)-1 {
				lines = append(lines, prefix+ui.PartialTextStyle.Render(truncateToWidth(l, m.width-4)))
			} else {
				lines = append(lines, prefix+truncateToWidth(l, m.width-4))
			}
		}
		if i < len(segs)-1 {
			lines = append(lines, "")
		}
	}

	return m.fitContent(lines)
}

func (m Model) renderFolderPicker() string {
	ev, _ := m.detailEvent()

	var lines []string
	lines = append(lines, ui.PanelTitleActiveStyle.Render("ADD TO FOLDER"))
	lines = append(lines, "")
	for i, f := range m.folders {
		line := f.Icon + " " + f.Name
		if ev.InFolder(f.ID) {
			line += ui.AccentStyle.Render(" ✓")
		}
		if i == m.pickIdx {
			line = ui.SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return m.fitContent(lines)
}

func (m Model) renderForm() string {
	var lines []string

	switch m.form {
	case formEvent:
		title := "NEW EVENT"
		if m.editID != 0 {
			title = "EDIT EVENT"
		}
		lines = append(lines, ui.PanelTitleActiveStyle.Render(title))
		labels := []string{"Title", "Location", "Date (2025-01-31 14:00)"}
		for i, label := range labels {
			cursor := ""
			if i == m.fieldIdx {
				cursor = ui.PartialTextStyle.Render("▌")
			}
			lines = append(lines, fmt.Sprintf("  %s: %s%s", ui.HeaderStyle.Render(label), m.fields[i], cursor))
		}

	case formFolder:
		lines = append(lines, ui.PanelTitleActiveStyle.Render("NEW FOLDER"))
		cursor := ui.PartialTextStyle.Render("▌")
		lines = append(lines, fmt.Sprintf("  %s: %s%s", ui.HeaderStyle.Render("Name"), m.fields[0], cursor))

		var picker string
		for i, e := range model.FolderEmojis {
			if i == m.emojiIdx {
				picker += ui.SelectedStyle.Render("["+e+"]")
			} else {
				picker += " " + e + " "
			}
		}
		lines = append(lines, "")
		lines = append(lines, "  "+picker)
		lines = append(lines, ui.DimStyle.Render("  Tab cycles the icon"))
	}

	lines = append(lines, "")
	lines = append(lines, ui.DimStyle.Render("  Enter to submit, Esc to cancel"))
	return m.fitContent(lines)
}

func (m Model) renderConfirm() string {
	var what string
	switch m.confirm {
	case deleteEvent:
		what = "this event"
	case deleteFolder:
		what = "this folder"
	case deleteSegment:
		what = "this recording section"
	case deleteTranscription:
		what = "ALL transcription notes"
	case deleteSummary:
		what = "the summary"
	case deleteKeyPoints:
		what = "the key points"
	}

	lines := []string{
		"",
		"  " + ui.ErrorStyle.Render("Delete "+what+"?"),
		"",
		"  " + ui.FooterKeyStyle.Render("y") + ui.FooterDescStyle.Render(" confirm") +
			"   " + ui.FooterKeyStyle.Render("n") + ui.FooterDescStyle.Render(" cancel"),
	}
	return m.fitContent(lines)
}

func (m Model) renderFooter() string {
	var parts []string
	key := func(k, desc string) string {
		return ui.FooterKeyStyle.Render(k) + ui.FooterDescStyle.Render(" "+desc)
	}

	switch m.page {
	case PageHome, PageEvents:
		parts = append(parts, key("j/k", "Nav"), key("Enter", "Open"), key("a", "Add"), key("e", "Edit"), key("x", "Del"))
		parts = append(parts, key("r", "Rec"), key("p", "Pause"), key("s", "Summarize"))
	case PageFolders:
		parts = append(parts, key("j/k", "Nav"), key("Enter", "Filter"), key("a", "Add"), key("x", "Del"))
	case PageDetail:
		parts = append(parts, key("j/k", "Section"), key("x", "Del section"), key("e", "Edit"), key("f", "Folders"))
		parts = append(parts, key("r", "Rec"), key("s", "Summarize"), key("Esc", "Back"))
	}
	parts = append(parts, key("q", "Quit"))

	return strings.Join(parts, "  ")
}

// fitContent pads or trims lines to the content height.
func (m Model) fitContent(lines []string) string {
	h := m.contentHeight()
	for len(lines) < h {
		lines = append(lines, "")
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

// Helpers

func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapIndent(text string, width int) []string {
	var out []string
	for _, l := range wrapText(text, max(10, width)) {
		out = append(out, "  "+l)
	}
	return out
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
