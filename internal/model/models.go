// Package model holds the domain types shared across the application.
package model

import "time"

// Event represents a meeting with its transcript and derived notes.
type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	Date          time.Time `json:"date"`
	Transcription string    `json:"transcription"`
	Summary       string    `json:"summary"`
	KeyPoints     []string  `json:"keyPoints"`
	FolderIDs     []int64   `json:"folderIds"`
}

// InFolder reports whether the event is assigned to the given folder.
func (e *Event) InFolder(folderID int64) bool {
	for _, id := range e.FolderIDs {
		if id == folderID {
			return true
		}
	}
	return false
}

// Folder groups events under a named, emoji-tagged label.
type Folder struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Input validation limits.
const (
	MinEventTitleLength = 1
	MaxEventTitleLength = 100
	MinFolderNameLength = 1
	MaxFolderNameLength = 50
	MinKeyPointLength   = 20
	MaxKeyPoints        = 5
)

// DefaultFolderIcon is used when no emoji is picked.
const DefaultFolderIcon = "📁"

// FolderEmojis is the emoji palette offered for folders.
var FolderEmojis = []string{
	"📁", "💼", "🏠", "🎓", "💡", "🎯", "📊", "🔥",
	"⭐", "🎨", "🏆", "📱", "💻", "🚀", "🎉",
}

// View selects the time window for event listings.
type View string

const (
	ViewToday View = "today"
	ViewWeek  View = "week"
	ViewMonth View = "month"
	ViewAll   View = "all"
)
