package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/myasin/meetnotes/internal/clock"
	"github.com/myasin/meetnotes/internal/model"
)

// Repository owns the event and folder collections. Both are loaded whole
// into memory at open and mirrored to the KV store after every mutation.
type Repository struct {
	mu    sync.Mutex
	kv    *KV
	clock clock.Clock

	events  []model.Event
	folders []model.Folder
}

// Open opens the KV store at path and loads both collections.
func Open(path string) (*Repository, error) {
	kv, err := OpenKV(path)
	if err != nil {
		return nil, err
	}
	return NewRepository(kv, clock.System{})
}

// NewRepository loads the collections from an already-open store.
func NewRepository(kv *KV, clk clock.Clock) (*Repository, error) {
	r := &Repository{kv: kv, clock: clk}
	if _, err := kv.Get(KeyEvents, &r.events); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if _, err := kv.Get(KeyFolders, &r.folders); err != nil {
		return nil, fmt.Errorf("load folders: %w", err)
	}
	return r, nil
}

// Close closes the backing store.
func (r *Repository) Close() error {
	return r.kv.Close()
}

func (r *Repository) persistEvents() error {
	return r.kv.Put(KeyEvents, r.events)
}

func (r *Repository) persistFolders() error {
	return r.kv.Put(KeyFolders, r.folders)
}

// nextID derives a unique id from the current time in milliseconds,
// bumping past collisions so two records created in the same millisecond
// stay distinct.
func (r *Repository) nextID() int64 {
	id := r.clock.Now().UnixMilli()
	for r.idTaken(id) {
		id++
	}
	return id
}

func (r *Repository) idTaken(id int64) bool {
	for i := range r.events {
		if r.events[i].ID == id {
			return true
		}
	}
	for i := range r.folders {
		if r.folders[i].ID == id {
			return true
		}
	}
	return false
}

// AddEvent validates and stores a new event, returning it with its
// assigned id.
func (r *Repository) AddEvent(title, location string, date time.Time) (model.Event, error) {
	title = strings.TrimSpace(title)
	location = strings.TrimSpace(location)

	if title == "" || location == "" || date.IsZero() {
		return model.Event{}, fmt.Errorf("%w: title, location and date are required", model.ErrValidation)
	}
	if n := utf8.RuneCountInString(title); n < model.MinEventTitleLength || n > model.MaxEventTitleLength {
		return model.Event{}, fmt.Errorf("%w: title must be between %d and %d characters",
			model.ErrValidation, model.MinEventTitleLength, model.MaxEventTitleLength)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev := model.Event{
		ID:        r.nextID(),
		Title:     title,
		Location:  location,
		Date:      date,
		KeyPoints: []string{},
		FolderIDs: []int64{},
	}
	r.events = append(r.events, ev)
	if err := r.persistEvents(); err != nil {
		r.events = r.events[:len(r.events)-1]
		return model.Event{}, err
	}
	return ev, nil
}

// UpdateEvent replaces the event's title, location and date after the
// same validation as AddEvent. Transcription, summary and folder
// membership are untouched.
func (r *Repository) UpdateEvent(id int64, title, location string, date time.Time) error {
	title = strings.TrimSpace(title)
	location = strings.TrimSpace(location)

	if title == "" || location == "" || date.IsZero() {
		return fmt.Errorf("%w: title, location and date are required", model.ErrValidation)
	}
	if n := utf8.RuneCountInString(title); n < model.MinEventTitleLength || n > model.MaxEventTitleLength {
		return fmt.Errorf("%w: title must be between %d and %d characters",
			model.ErrValidation, model.MinEventTitleLength, model.MaxEventTitleLength)
	}

	return r.updateEvent(id, func(ev *model.Event) {
		ev.Title = title
		ev.Location = location
		ev.Date = date
	})
}

// GetEvent returns the event with the given id.
func (r *Repository) GetEvent(id int64) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOfEvent(id)
	if i < 0 {
		return model.Event{}, fmt.Errorf("event %d: %w", id, model.ErrNotFound)
	}
	return r.events[i], nil
}

// DeleteEvent removes the event outright. Folders do not reference
// events, so no cascade is needed.
func (r *Repository) DeleteEvent(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOfEvent(id)
	if i < 0 {
		return fmt.Errorf("event %d: %w", id, model.ErrNotFound)
	}
	r.events = append(r.events[:i], r.events[i+1:]...)
	return r.persistEvents()
}

func (r *Repository) indexOfEvent(id int64) int {
	for i := range r.events {
		if r.events[i].ID == id {
			return i
		}
	}
	return -1
}

// SetTranscription replaces the event's transcript text.
func (r *Repository) SetTranscription(id int64, text string) error {
	return r.updateEvent(id, func(ev *model.Event) {
		ev.Transcription = text
	})
}

// SetSummary writes summary and key points together so a failed remote
// call can never leave the record half updated.
func (r *Repository) SetSummary(id int64, summary string, keyPoints []string) error {
	return r.updateEvent(id, func(ev *model.Event) {
		ev.Summary = summary
		ev.KeyPoints = keyPoints
	})
}

// ClearTranscription deletes all transcript text.
func (r *Repository) ClearTranscription(id int64) error {
	return r.updateEvent(id, func(ev *model.Event) {
		ev.Transcription = ""
	})
}

// ClearSummary deletes the summary only.
func (r *Repository) ClearSummary(id int64) error {
	return r.updateEvent(id, func(ev *model.Event) {
		ev.Summary = ""
	})
}

// ClearKeyPoints deletes the key points only.
func (r *Repository) ClearKeyPoints(id int64) error {
	return r.updateEvent(id, func(ev *model.Event) {
		ev.KeyPoints = []string{}
	})
}

func (r *Repository) updateEvent(id int64, fn func(*model.Event)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOfEvent(id)
	if i < 0 {
		return fmt.Errorf("event %d: %w", id, model.ErrNotFound)
	}
	prev := r.events[i]
	fn(&r.events[i])
	if err := r.persistEvents(); err != nil {
		r.events[i] = prev
		return err
	}
	return nil
}

// AddFolder validates and stores a new folder.
func (r *Repository) AddFolder(name, icon string) (model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Folder{}, fmt.Errorf("%w: folder name is required", model.ErrValidation)
	}
	if utf8.RuneCountInString(name) > model.MaxFolderNameLength {
		return model.Folder{}, fmt.Errorf("%w: folder name must be at most %d characters",
			model.ErrValidation, model.MaxFolderNameLength)
	}
	if icon == "" {
		icon = model.DefaultFolderIcon
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f := model.Folder{ID: r.nextID(), Name: name, Icon: icon}
	r.folders = append(r.folders, f)
	if err := r.persistFolders(); err != nil {
		r.folders = r.folders[:len(r.folders)-1]
		return model.Folder{}, err
	}
	return f, nil
}

// GetFolder returns the folder with the given id.
func (r *Repository) GetFolder(id int64) (model.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.folders {
		if r.folders[i].ID == id {
			return r.folders[i], nil
		}
	}
	return model.Folder{}, fmt.Errorf("folder %d: %w", id, model.ErrNotFound)
}

// DeleteFolder removes the folder and strips its id from every event.
// Events themselves are never deleted.
func (r *Repository) DeleteFolder(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.folders {
		if r.folders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("folder %d: %w", id, model.ErrNotFound)
	}

	r.folders = append(r.folders[:idx], r.folders[idx+1:]...)
	for i := range r.events {
		ids := r.events[i].FolderIDs[:0]
		for _, fid := range r.events[i].FolderIDs {
			if fid != id {
				ids = append(ids, fid)
			}
		}
		r.events[i].FolderIDs = ids
	}

	if err := r.persistFolders(); err != nil {
		return err
	}
	return r.persistEvents()
}

// ToggleEventFolder adds the folder id to the event's set, or removes it
// when already present.
func (r *Repository) ToggleEventFolder(eventID, folderID int64) error {
	return r.updateEvent(eventID, func(ev *model.Event) {
		for i, fid := range ev.FolderIDs {
			if fid == folderID {
				ev.FolderIDs = append(ev.FolderIDs[:i], ev.FolderIDs[i+1:]...)
				return
			}
		}
		ev.FolderIDs = append(ev.FolderIDs, folderID)
	})
}

// Folders returns a copy of the folder list.
func (r *Repository) Folders() []model.Folder {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Folder, len(r.folders))
	copy(out, r.folders)
	return out
}

// FoldersOf resolves an event's folder ids to folders, silently skipping
// dangling references.
func (r *Repository) FoldersOf(ev model.Event) []model.Folder {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Folder
	for _, fid := range ev.FolderIDs {
		for i := range r.folders {
			if r.folders[i].ID == fid {
				out = append(out, r.folders[i])
				break
			}
		}
	}
	return out
}

// Events returns the events in the given time window, optionally
// restricted to one folder, sorted ascending by date-time.
//
// "today" matches on the calendar day; "week" and "month" compare the
// raw date-time values. The asymmetry is deliberate.
func (r *Repository) Events(view model.View, folderID *int64) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var out []model.Event
	for i := range r.events {
		ev := r.events[i]
		if folderID != nil && !ev.InFolder(*folderID) {
			continue
		}

		switch view {
		case model.ViewToday:
			d := ev.Date
			day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
			if !day.Equal(todayStart) {
				continue
			}
		case model.ViewWeek:
			weekEnd := todayStart.AddDate(0, 0, 7)
			if ev.Date.Before(todayStart) || !ev.Date.Before(weekEnd) {
				continue
			}
		case model.ViewMonth:
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
			monthEnd := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
			if ev.Date.Before(monthStart) || ev.Date.After(monthEnd) {
				continue
			}
		}

		out = append(out, ev)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Token returns the stored summarization API credential, if any.
func (r *Repository) Token() (string, error) {
	var tok string
	ok, err := r.kv.Get(KeyToken, &tok)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return tok, nil
}

// SetToken stores the summarization API credential.
func (r *Repository) SetToken(tok string) error {
	return r.kv.Put(KeyToken, tok)
}
