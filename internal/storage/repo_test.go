package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/myasin/meetnotes/internal/clock"
	"github.com/myasin/meetnotes/internal/model"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

// newTestRepo opens a repository over a throwaway database file with a
// fixed clock.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	kv, err := OpenKV(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	repo, err := NewRepository(kv, clock.Fixed{T: testNow})
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

func TestAddEventAssignsDistinctIDs(t *testing.T) {
	repo := newTestRepo(t)

	a, err := repo.AddEvent("Standup", "Room 1", testNow)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := repo.AddEvent("Retro", "Room 2", testNow)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if a.ID == b.ID {
		t.Errorf("both events got id %d", a.ID)
	}
	if a.ID != testNow.UnixMilli() {
		t.Errorf("first id = %d, want %d", a.ID, testNow.UnixMilli())
	}
}

func TestAddEventValidation(t *testing.T) {
	repo := newTestRepo(t)

	cases := []struct {
		name     string
		title    string
		location string
		date     time.Time
	}{
		{"empty title", "", "Room", testNow},
		{"whitespace title", "   ", "Room", testNow},
		{"empty location", "Standup", "", testNow},
		{"zero date", "Standup", "Room", time.Time{}},
		{"title too long", strings.Repeat("x", 101), "Room", testNow},
		{"multibyte title too long", strings.Repeat("会", 101), "Room", testNow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.AddEvent(tc.title, tc.location, tc.date)
			if !errors.Is(err, model.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAddEventCountsCharactersNotBytes(t *testing.T) {
	repo := newTestRepo(t)

	// 100 three-byte runes: at the limit in characters, far over in bytes.
	title := strings.Repeat("会", 100)
	ev, err := repo.AddEvent(title, "Room 1", testNow)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if ev.Title != title {
		t.Errorf("title = %q, want stored unchanged", ev.Title)
	}
}

func TestAddFolderCountsCharactersNotBytes(t *testing.T) {
	repo := newTestRepo(t)

	name := strings.Repeat("📚", 50)
	if _, err := repo.AddFolder(name, "💼"); err != nil {
		t.Fatalf("add folder: %v", err)
	}

	if _, err := repo.AddFolder(strings.Repeat("📚", 51), "💼"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("51-char name err = %v, want ErrValidation", err)
	}
}

func TestUpdateEventKeepsRecordings(t *testing.T) {
	repo := newTestRepo(t)

	ev, _ := repo.AddEvent("Standup", "Room 1", testNow)
	repo.SetTranscription(ev.ID, "notes")
	f, _ := repo.AddFolder("Work", "💼")
	repo.ToggleEventFolder(ev.ID, f.ID)

	later := testNow.Add(2 * time.Hour)
	if err := repo.UpdateEvent(ev.ID, "Retro", "Room 9", later); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := repo.GetEvent(ev.ID)
	if got.Title != "Retro" || got.Location != "Room 9" {
		t.Errorf("event = %q at %q, want Retro at Room 9", got.Title, got.Location)
	}
	if !got.Date.Equal(later) {
		t.Errorf("date = %v, want %v", got.Date, later)
	}
	if got.Transcription != "notes" {
		t.Errorf("transcription = %q, want preserved", got.Transcription)
	}
	if !got.InFolder(f.ID) {
		t.Error("folder membership lost on update")
	}
}

func TestUpdateEventValidation(t *testing.T) {
	repo := newTestRepo(t)
	ev, _ := repo.AddEvent("Standup", "Room 1", testNow)

	if err := repo.UpdateEvent(ev.ID, "", "Room 1", testNow); !errors.Is(err, model.ErrValidation) {
		t.Errorf("empty title err = %v, want ErrValidation", err)
	}
	if err := repo.UpdateEvent(999, "Retro", "Room 1", testNow); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("missing event err = %v, want ErrNotFound", err)
	}

	got, _ := repo.GetEvent(ev.ID)
	if got.Title != "Standup" {
		t.Errorf("title = %q, want unchanged", got.Title)
	}
}

func TestGetEventNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetEvent(42)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEventsPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sqlite")

	kv, err := OpenKV(path)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	repo, err := NewRepository(kv, clock.Fixed{T: testNow})
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}

	ev, err := repo.AddEvent("Standup", "Room 1", testNow)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.SetTranscription(ev.ID, "notes here"); err != nil {
		t.Fatalf("set transcription: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	repo2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo2.Close()

	got, err := repo2.GetEvent(ev.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Title != "Standup" {
		t.Errorf("title = %q, want %q", got.Title, "Standup")
	}
	if got.Transcription != "notes here" {
		t.Errorf("transcription = %q, want %q", got.Transcription, "notes here")
	}
	if !got.Date.Equal(testNow) {
		t.Errorf("date = %v, want %v", got.Date, testNow)
	}
}

func TestSetSummaryWritesBothFields(t *testing.T) {
	repo := newTestRepo(t)

	ev, _ := repo.AddEvent("Standup", "Room 1", testNow)
	if err := repo.SetSummary(ev.ID, "the summary", []string{"point one is long enough."}); err != nil {
		t.Fatalf("set summary: %v", err)
	}

	got, _ := repo.GetEvent(ev.ID)
	if got.Summary != "the summary" {
		t.Errorf("summary = %q", got.Summary)
	}
	if len(got.KeyPoints) != 1 || got.KeyPoints[0] != "point one is long enough." {
		t.Errorf("keyPoints = %v", got.KeyPoints)
	}
}

func TestClearSummaryKeepsKeyPoints(t *testing.T) {
	repo := newTestRepo(t)

	ev, _ := repo.AddEvent("Standup", "Room 1", testNow)
	repo.SetSummary(ev.ID, "summary", []string{"a key point"})

	if err := repo.ClearSummary(ev.ID); err != nil {
		t.Fatalf("clear summary: %v", err)
	}

	got, _ := repo.GetEvent(ev.ID)
	if got.Summary != "" {
		t.Errorf("summary = %q, want empty", got.Summary)
	}
	if len(got.KeyPoints) != 1 {
		t.Errorf("keyPoints = %v, want preserved", got.KeyPoints)
	}

	if err := repo.ClearKeyPoints(ev.ID); err != nil {
		t.Fatalf("clear key points: %v", err)
	}
	got, _ = repo.GetEvent(ev.ID)
	if len(got.KeyPoints) != 0 {
		t.Errorf("keyPoints = %v, want empty", got.KeyPoints)
	}
}

func TestDeleteFolderCascadesToEvents(t *testing.T) {
	repo := newTestRepo(t)

	ev, _ := repo.AddEvent("Standup", "Room 1", testNow)
	work, _ := repo.AddFolder("Work", "💼")
	personal, _ := repo.AddFolder("Personal", "🏠")

	repo.ToggleEventFolder(ev.ID, work.ID)
	repo.ToggleEventFolder(ev.ID, personal.ID)
	repo.SetTranscription(ev.ID, "notes")

	if err := repo.DeleteFolder(work.ID); err != nil {
		t.Fatalf("delete folder: %v", err)
	}

	got, _ := repo.GetEvent(ev.ID)
	if len(got.FolderIDs) != 1 || got.FolderIDs[0] != personal.ID {
		t.Errorf("folderIds = %v, want [%d]", got.FolderIDs, personal.ID)
	}
	if got.Transcription != "notes" {
		t.Errorf("transcription lost in cascade: %q", got.Transcription)
	}
	if len(repo.Folders()) != 1 {
		t.Errorf("folders = %v, want one left", repo.Folders())
	}
}

func TestToggleEventFolder(t *testing.T) {
	repo := newTestRepo(t)

	ev, _ := repo.AddEvent("Standup", "Room 1", testNow)
	f, _ := repo.AddFolder("Work", "💼")

	repo.ToggleEventFolder(ev.ID, f.ID)
	got, _ := repo.GetEvent(ev.ID)
	if !got.InFolder(f.ID) {
		t.Error("event not in folder after first toggle")
	}

	repo.ToggleEventFolder(ev.ID, f.ID)
	got, _ = repo.GetEvent(ev.ID)
	if got.InFolder(f.ID) {
		t.Error("event still in folder after second toggle")
	}
}

func TestAddFolderDefaultsIcon(t *testing.T) {
	repo := newTestRepo(t)

	f, err := repo.AddFolder("Misc", "")
	if err != nil {
		t.Fatalf("add folder: %v", err)
	}
	if f.Icon != model.DefaultFolderIcon {
		t.Errorf("icon = %q, want %q", f.Icon, model.DefaultFolderIcon)
	}

	if _, err := repo.AddFolder("", "💼"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("empty name err = %v, want ErrValidation", err)
	}
}

func TestFoldersOfSkipsDanglingIDs(t *testing.T) {
	repo := newTestRepo(t)

	ev, _ := repo.AddEvent("Standup", "Room 1", testNow)
	f, _ := repo.AddFolder("Work", "💼")
	repo.ToggleEventFolder(ev.ID, f.ID)

	got, _ := repo.GetEvent(ev.ID)
	got.FolderIDs = append(got.FolderIDs, 999999)

	resolved := repo.FoldersOf(got)
	if len(resolved) != 1 || resolved[0].ID != f.ID {
		t.Errorf("resolved = %v, want just %d", resolved, f.ID)
	}
}

func TestEventsTodayMatchesCalendarDay(t *testing.T) {
	repo := newTestRepo(t)

	// Earlier today still counts; tomorrow does not.
	early := time.Date(2025, 6, 15, 0, 30, 0, 0, time.Local)
	late := time.Date(2025, 6, 15, 23, 30, 0, 0, time.Local)
	tomorrow := time.Date(2025, 6, 16, 9, 0, 0, 0, time.Local)

	repo.AddEvent("Early", "A", early)
	repo.AddEvent("Late", "B", late)
	repo.AddEvent("Tomorrow", "C", tomorrow)

	got := repo.Events(model.ViewToday, nil)
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Title != "Early" || got[1].Title != "Late" {
		t.Errorf("order = %q, %q; want Early, Late", got[0].Title, got[1].Title)
	}
}

func TestEventsWeekWindow(t *testing.T) {
	repo := newTestRepo(t)

	repo.AddEvent("Yesterday", "A", testNow.AddDate(0, 0, -1))
	repo.AddEvent("InSix", "B", testNow.AddDate(0, 0, 6))
	repo.AddEvent("InEight", "C", testNow.AddDate(0, 0, 8))

	got := repo.Events(model.ViewWeek, nil)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Title != "InSix" {
		t.Errorf("title = %q, want InSix", got[0].Title)
	}
}

func TestEventsMonthIncludesWholeCalendarMonth(t *testing.T) {
	repo := newTestRepo(t)

	first := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	lastMidnight := time.Date(2025, 6, 30, 0, 0, 0, 0, time.Local)
	lastEvening := time.Date(2025, 6, 30, 18, 0, 0, 0, time.Local)
	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local)

	repo.AddEvent("First", "A", first)
	repo.AddEvent("LastMidnight", "B", lastMidnight)
	repo.AddEvent("LastEvening", "C", lastEvening)
	repo.AddEvent("July", "D", july)

	got := repo.Events(model.ViewMonth, nil)
	// The month window closes at midnight on the last day, so an evening
	// event on the 30th falls outside it.
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Title != "First" || got[1].Title != "LastMidnight" {
		t.Errorf("got %q, %q", got[0].Title, got[1].Title)
	}
}

func TestEventsFolderFilter(t *testing.T) {
	repo := newTestRepo(t)

	a, _ := repo.AddEvent("In", "A", testNow)
	repo.AddEvent("Out", "B", testNow)
	f, _ := repo.AddFolder("Work", "💼")
	repo.ToggleEventFolder(a.ID, f.ID)

	got := repo.Events(model.ViewAll, &f.ID)
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("filtered = %v, want only event %d", got, a.ID)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	tok, err := repo.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "" {
		t.Errorf("token = %q, want empty before set", tok)
	}

	if err := repo.SetToken("hf_secret"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	tok, err = repo.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "hf_secret" {
		t.Errorf("token = %q, want %q", tok, "hf_secret")
	}
}
