// Package app is the bubbletea presentation layer. It renders the
// repository's collections and drives the recording controller and the
// summarization gateway; it never mutates domain state except through
// them.
package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/myasin/meetnotes/internal/model"
	"github.com/myasin/meetnotes/internal/record"
	"github.com/myasin/meetnotes/internal/storage"
	"github.com/myasin/meetnotes/internal/summarize"
	"github.com/myasin/meetnotes/internal/transcript"
)

// Page identifies the active screen.
type Page int

const (
	PageHome Page = iota
	PageEvents
	PageFolders
	PageDetail
)

// formKind identifies the open input form, if any.
type formKind int

const (
	formNone formKind = iota
	formEvent
	formFolder
)

// deleteKind identifies what a pending confirmation would delete.
type deleteKind int

const (
	deleteNone deleteKind = iota
	deleteEvent
	deleteFolder
	deleteSegment
	deleteTranscription
	deleteSummary
	deleteKeyPoints
)

const eventDateLayout = "2006-01-02 15:04"

// Model is the root bubbletea model.
type Model struct {
	repo       *storage.Repository
	controller *record.Controller
	summarizer *summarize.Client

	// Navigation
	page         Page
	view         model.View
	folderFilter *int64

	// Listings
	events         []model.Event
	selected       int
	folders        []model.Folder
	selectedFolder int

	// Detail screen
	detailID int64
	segIndex int

	// Folder picker for assigning the detail event to folders
	picking bool
	pickIdx int

	// Live recording display
	liveEventID int64
	liveText    string
	summarizing bool

	// Input form. editID is the event being edited, zero when adding.
	form     formKind
	fields   []string
	fieldIdx int
	emojiIdx int
	editID   int64

	// Pending delete confirmation
	confirm    deleteKind
	confirmID  int64
	confirmSeg int

	// Errors and status
	errorMessage   string
	errorTransient bool
	statusText     string

	width  int
	height int
}

// New creates the root model over the given collaborators.
func New(repo *storage.Repository, ctrl *record.Controller, sum *summarize.Client) Model {
	m := Model{
		repo:       repo,
		controller: ctrl,
		summarizer: sum,
		page:       PageHome,
		view:       model.ViewToday,
		statusText: "Ready",
	}
	m.reload()
	return m
}

// Init has nothing to do; all state is loaded synchronously.
func (m Model) Init() tea.Cmd {
	return nil
}

// reload refreshes the listings from the repository for the active page.
func (m *Model) reload() {
	m.folders = m.repo.Folders()

	switch m.page {
	case PageHome:
		m.events = m.repo.Events(model.ViewToday, nil)
	case PageEvents:
		m.events = m.repo.Events(m.view, nil)
	case PageFolders:
		m.events = m.repo.Events(model.ViewAll, m.folderFilter)
	case PageDetail:
		m.events = m.repo.Events(model.ViewAll, nil)
	}

	if m.selected >= len(m.events) {
		m.selected = max(0, len(m.events)-1)
	}
	if m.selectedFolder > len(m.folders) {
		m.selectedFolder = max(0, len(m.folders))
	}
}

func (m Model) selectedEvent() (model.Event, bool) {
	if m.selected < 0 || m.selected >= len(m.events) {
		return model.Event{}, false
	}
	return m.events[m.selected], true
}

func (m Model) detailEvent() (model.Event, bool) {
	ev, err := m.repo.GetEvent(m.detailID)
	if err != nil {
		return model.Event{}, false
	}
	return ev, true
}

// fail records an error for the error bar. Transient errors clear after a
// few seconds.
func (m *Model) fail(err error, transient bool) tea.Cmd {
	m.errorMessage = err.Error()
	m.errorTransient = transient
	if transient {
		return clearTransientErrorCmd()
	}
	return nil
}

// Commands

func startRecordCmd(ctrl *record.Controller, eventID int64) tea.Cmd {
	return func() tea.Msg {
		sess, err := ctrl.Start(eventID)
		return RecordStartedMsg{Session: sess, Err: err}
	}
}

func stopRecordCmd(ctrl *record.Controller, eventID int64) tea.Cmd {
	return func() tea.Msg {
		return RecordStoppedMsg{EventID: eventID, Err: ctrl.Stop()}
	}
}

func summarizeCmd(sum *summarize.Client, repo *storage.Repository, eventID int64) tea.Cmd {
	return func() tea.Msg {
		err := sum.SummarizeEvent(context.Background(), repo, eventID)
		return SummaryDoneMsg{EventID: eventID, Err: err}
	}
}

func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case LiveTextMsg:
		m.liveEventID = msg.EventID
		m.liveText = msg.Text
		return m, nil

	case RecordStartedMsg:
		if msg.Err != nil {
			m.statusText = "Idle"
			return m, m.fail(msg.Err, true)
		}
		m.statusText = "Recording"
		m.liveEventID = msg.Session.EventID
		m.liveText = ""
		return m, nil

	case RecordStoppedMsg:
		m.statusText = "Idle"
		m.liveText = ""
		m.liveEventID = 0
		m.reload()
		if msg.Err != nil {
			return m, m.fail(msg.Err, false)
		}
		return m, nil

	case SummaryDoneMsg:
		m.summarizing = false
		if msg.Err != nil {
			return m, m.fail(msg.Err, true)
		}
		m.statusText = "Summary generated"
		m.reload()
		return m, nil

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != deleteNone {
		return m.handleConfirmKey(msg)
	}
	if m.form != formNone {
		return m.handleFormKey(msg)
	}
	if m.picking {
		return m.handlePickKey(msg)
	}

	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		m.controller.Stop()
		return m, tea.Quit

	case KeyHome:
		m.page = PageHome
		m.folderFilter = nil
		m.reload()
		return m, nil

	case KeyEvents:
		m.page = PageEvents
		m.folderFilter = nil
		m.reload()
		return m, nil

	case KeyFolders:
		m.page = PageFolders
		m.reload()
		return m, nil
	}

	switch m.page {
	case PageHome, PageEvents:
		return m.handleEventListKey(msg)
	case PageFolders:
		return m.handleFoldersKey(msg)
	case PageDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

func (m Model) handleEventListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyDown:
		if m.selected < len(m.events)-1 {
			m.selected++
		}
	case KeyUp:
		if m.selected > 0 {
			m.selected--
		}

	case KeyToday:
		if m.page == PageEvents {
			m.view = model.ViewToday
			m.reload()
		}
	case KeyWeek:
		if m.page == PageEvents {
			m.view = model.ViewWeek
			m.reload()
		}
	case KeyMonth:
		if m.page == PageEvents {
			m.view = model.ViewMonth
			m.reload()
		}

	case KeyAdd:
		m.form = formEvent
		m.fields = []string{"", "", ""}
		m.fieldIdx = 0
		m.editID = 0

	case KeyEdit:
		if ev, ok := m.selectedEvent(); ok {
			m = m.startEditEvent(ev)
		}

	case KeyDelete:
		if ev, ok := m.selectedEvent(); ok {
			m.confirm = deleteEvent
			m.confirmID = ev.ID
		}

	case KeyEnter:
		if ev, ok := m.selectedEvent(); ok {
			m.page = PageDetail
			m.detailID = ev.ID
			m.segIndex = 0
		}

	case KeyRecord:
		if ev, ok := m.selectedEvent(); ok {
			return m.toggleRecording(ev.ID)
		}

	case KeyPause:
		return m.togglePause()

	case KeySummarize:
		if ev, ok := m.selectedEvent(); ok {
			return m.startSummarize(ev.ID)
		}
	}
	return m, nil
}

func (m Model) handleFoldersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Folder index 0 is the synthetic "All" entry.
	switch msg.String() {
	case KeyDown:
		if m.selectedFolder < len(m.folders) {
			m.selectedFolder++
		}
	case KeyUp:
		if m.selectedFolder > 0 {
			m.selectedFolder--
		}

	case KeyEnter:
		if m.selectedFolder == 0 {
			m.folderFilter = nil
		} else {
			id := m.folders[m.selectedFolder-1].ID
			m.folderFilter = &id
		}
		m.reload()

	case KeyAdd:
		m.form = formFolder
		m.fields = []string{""}
		m.fieldIdx = 0
		m.emojiIdx = 0

	case KeyDelete:
		if m.selectedFolder > 0 {
			m.confirm = deleteFolder
			m.confirmID = m.folders[m.selectedFolder-1].ID
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, ok := m.detailEvent()
	if !ok {
		m.page = PageEvents
		m.reload()
		return m, nil
	}
	segs := transcript.Segments(ev.Transcription)

	switch msg.String() {
	case KeyEscape, KeyBack:
		m.page = PageEvents
		m.reload()

	case KeyDown:
		if m.segIndex < len(segs)-1 {
			m.segIndex++
		}
	case KeyUp:
		if m.segIndex > 0 {
			m.segIndex--
		}

	case KeyDelete:
		if len(segs) > 0 {
			m.confirm = deleteSegment
			m.confirmID = ev.ID
			m.confirmSeg = m.segIndex
		}
	case "X":
		if ev.Transcription != "" {
			m.confirm = deleteTranscription
			m.confirmID = ev.ID
		}
	case "u":
		if ev.Summary != "" {
			m.confirm = deleteSummary
			m.confirmID = ev.ID
		}
	case "U":
		if len(ev.KeyPoints) > 0 {
			m.confirm = deleteKeyPoints
			m.confirmID = ev.ID
		}

	case "f":
		if len(m.folders) == 0 {
			return m, m.fail(errors.New("create a folder first"), true)
		}
		m.picking = true
		m.pickIdx = 0

	case KeyEdit:
		m = m.startEditEvent(ev)

	case KeyRecord:
		return m.toggleRecording(ev.ID)
	case KeyPause:
		return m.togglePause()
	case KeySummarize:
		return m.startSummarize(ev.ID)
	}
	return m, nil
}

// startEditEvent opens the event form prefilled with the event's fields.
func (m Model) startEditEvent(ev model.Event) Model {
	m.form = formEvent
	m.fields = []string{ev.Title, ev.Location, ev.Date.Format(eventDateLayout)}
	m.fieldIdx = 0
	m.editID = ev.ID
	return m
}

// handlePickKey toggles folder membership for the detail event.
func (m Model) handlePickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEscape, "f":
		m.picking = false

	case KeyDown:
		if m.pickIdx < len(m.folders)-1 {
			m.pickIdx++
		}
	case KeyUp:
		if m.pickIdx > 0 {
			m.pickIdx--
		}

	case KeyEnter:
		if m.pickIdx < len(m.folders) {
			if err := m.repo.ToggleEventFolder(m.detailID, m.folders[m.pickIdx].ID); err != nil {
				return m, m.fail(err, true)
			}
			m.reload()
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyConfirm:
		kind, id, seg := m.confirm, m.confirmID, m.confirmSeg
		m.confirm = deleteNone
		return m.performDelete(kind, id, seg)
	case KeyDeny, KeyEscape:
		m.confirm = deleteNone
	}
	return m, nil
}

func (m Model) performDelete(kind deleteKind, id int64, seg int) (tea.Model, tea.Cmd) {
	var err error
	switch kind {
	case deleteEvent:
		err = m.repo.DeleteEvent(id)
	case deleteFolder:
		err = m.repo.DeleteFolder(id)
		m.folderFilter = nil
	case deleteSegment:
		var ev model.Event
		ev, err = m.repo.GetEvent(id)
		if err == nil {
			err = m.repo.SetTranscription(id, transcript.DeleteSegment(ev.Transcription, seg))
		}
		if m.segIndex > 0 {
			m.segIndex--
		}
	case deleteTranscription:
		err = m.repo.ClearTranscription(id)
		m.segIndex = 0
	case deleteSummary:
		err = m.repo.ClearSummary(id)
	case deleteKeyPoints:
		err = m.repo.ClearKeyPoints(id)
	}

	m.reload()
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return m, m.fail(err, false)
	}
	return m, nil
}

func (m Model) toggleRecording(eventID int64) (tea.Model, tea.Cmd) {
	if m.controller.Recording(eventID) {
		m.statusText = "Stopping..."
		return m, stopRecordCmd(m.controller, eventID)
	}
	m.statusText = "Starting..."
	return m, startRecordCmd(m.controller, eventID)
}

func (m Model) togglePause() (tea.Model, tea.Cmd) {
	sess := m.controller.Active()
	if sess == nil {
		return m, nil
	}
	var err error
	if sess.Paused {
		err = m.controller.Resume()
		m.statusText = "Recording"
	} else {
		err = m.controller.Pause()
		m.statusText = "Paused"
	}
	if err != nil {
		return m, m.fail(err, true)
	}
	return m, nil
}

func (m Model) startSummarize(eventID int64) (tea.Model, tea.Cmd) {
	if m.summarizing {
		return m, nil
	}
	m.summarizing = true
	m.statusText = "Summarizing..."
	return m, summarizeCmd(m.summarizer, m.repo, eventID)
}

// Form handling

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEscape:
		m.form = formNone
		m.editID = 0
		return m, nil

	case KeyCtrlC:
		m.controller.Stop()
		return m, tea.Quit

	case KeyTab:
		if m.form == formFolder {
			m.emojiIdx = (m.emojiIdx + 1) % len(model.FolderEmojis)
		} else {
			m.fieldIdx = (m.fieldIdx + 1) % len(m.fields)
		}
		return m, nil

	case KeyEnter:
		if m.fieldIdx < len(m.fields)-1 {
			m.fieldIdx++
			return m, nil
		}
		return m.submitForm()

	case KeyBack:
		f := m.fields[m.fieldIdx]
		if f != "" {
			r := []rune(f)
			m.fields[m.fieldIdx] = string(r[:len(r)-1])
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.fields[m.fieldIdx] += msg.String()
	}
	return m, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	switch m.form {
	case formEvent:
		date, err := time.ParseInLocation(eventDateLayout, m.fields[2], time.Local)
		if err != nil {
			return m, m.fail(errors.New("date must look like 2025-01-31 14:00"), true)
		}
		if m.editID != 0 {
			if err := m.repo.UpdateEvent(m.editID, m.fields[0], m.fields[1], date); err != nil {
				return m, m.fail(err, true)
			}
		} else if _, err := m.repo.AddEvent(m.fields[0], m.fields[1], date); err != nil {
			return m, m.fail(err, true)
		}

	case formFolder:
		icon := model.FolderEmojis[m.emojiIdx]
		if _, err := m.repo.AddFolder(m.fields[0], icon); err != nil {
			return m, m.fail(err, true)
		}
	}

	m.form = formNone
	m.editID = 0
	m.reload()
	return m, nil
}
