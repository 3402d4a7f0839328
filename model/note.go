package model

import (
	"time"
)

// Note is a single note document. Every query against it carries the
// (note id, user id) compound filter so a foreign-owned note behaves
// exactly like a missing one.
type Note struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Title      string    `bson:"title" json:"title"`
	Body       string    `bson:"body" json:"body"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
	Tags       []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	IsPinned   bool      `bson:"is_pinned" json:"is_pinned"`
	IsFavorite bool      `bson:"is_favorite" json:"is_favorite"`
	Reminder   *Reminder `bson:"reminder,omitempty" json:"reminder,omitempty"`
	Versions   []Version `bson:"versions,omitempty" json:"versions,omitempty"`
}

// Version is an immutable snapshot of a note's title and body. The
// versions list is append-only; entries are never edited or pruned.
type Version struct {
	VersionID string    `bson:"version_id" json:"version_id"`
	Title     string    `bson:"title" json:"title"`
	Body      string    `bson:"body" json:"body"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Reminder is the at-most-one reminder embedded in a note. The date is
// only validated against the clock when the reminder is set, so a
// scheduled reminder becomes due without any background work.
type Reminder struct {
	Date        time.Time `bson:"date" json:"date"`
	Text        string    `bson:"text" json:"text"`
	IsCompleted bool      `bson:"is_completed" json:"is_completed"`
}

// TagCount is one row of the per-user tag aggregation.
type TagCount struct {
	Name  string `bson:"name" json:"name"`
	Count int    `bson:"count" json:"count"`
}

// UpcomingReminder is the projection returned by the reminders listing.
type UpcomingReminder struct {
	NoteID       string    `json:"note_id"`
	NoteTitle    string    `json:"note_title"`
	ReminderDate time.Time `json:"reminder_date"`
	ReminderText string    `json:"reminder_text"`
}
