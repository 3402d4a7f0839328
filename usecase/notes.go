package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"notevault/model"

	"github.com/google/uuid"
)

// NoteStore is the persistence contract the note service needs. Every
// per-note method takes the (noteID, userID) pair; implementations must
// apply both in a single filter.
type NoteStore interface {
	InsertNote(ctx context.Context, note *model.Note) error
	FindNote(ctx context.Context, noteID, userID string) (*model.Note, error)
	FindNotesPage(ctx context.Context, userID, search string, page, limit int) ([]*model.Note, int64, error)
	UpdateTitleBody(ctx context.Context, noteID, userID, title, body string) (bool, error)
	DeleteNote(ctx context.Context, noteID, userID string) (bool, error)
	DeleteNotes(ctx context.Context, userID string, noteIDs []string) (int64, error)

	AddTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error)
	RemoveTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error)
	FindNotesByTag(ctx context.Context, userID, tag string, page, limit int) ([]*model.Note, int64, error)
	CountNotesByTag(ctx context.Context, userID string) ([]model.TagCount, error)

	SetPinned(ctx context.Context, noteID, userID string, pinned bool) (bool, error)
	SetFavorite(ctx context.Context, noteID, userID string, favorite bool) (bool, error)
	FindPinnedNotes(ctx context.Context, userID string) ([]*model.Note, error)
	FindFavoriteNotes(ctx context.Context, userID string) ([]*model.Note, error)

	SetReminder(ctx context.Context, noteID, userID string, reminder *model.Reminder) (bool, error)
	FindUpcomingReminders(ctx context.Context, userID string, after time.Time, limit int) ([]*model.Note, error)

	AppendVersion(ctx context.Context, noteID, userID string, version model.Version) (bool, error)
}

// NoteService orchestrates the note lifecycle. All methods are scoped to
// the authenticated owner; a note belonging to someone else is reported
// as missing.
type NoteService struct {
	Notes NoteStore
	Users UserStore
}

// VersionEntry is one row of a version listing; the body is held back
// until the version is restored.
type VersionEntry struct {
	VersionID string    `json:"version_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// normalizeTags lowercases, trims and deduplicates, preserving first
// occurrence order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		normalized = append(normalized, t)
	}
	return normalized
}

// CreateNote persists a fresh note and registers it on the owner record.
func (svc *NoteService) CreateNote(ctx context.Context, userID, title, body string) (*model.Note, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil, invalid("Title and body are required")
	}

	now := time.Now()
	note := &model.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      []string{},
	}

	if err := svc.Notes.InsertNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	if err := svc.Users.AddNoteRef(ctx, userID, note.ID); err != nil {
		return nil, fmt.Errorf("failed to register note on user: %w", err)
	}

	return note, nil
}

// ListNotes returns a page of the owner's notes, newest first, together
// with the total match count. A search term narrows the set to notes
// whose title or body contains it, case-insensitively.
func (svc *NoteService) ListNotes(ctx context.Context, userID, search string, page, limit int) ([]*model.Note, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return svc.Notes.FindNotesPage(ctx, userID, search, page, limit)
}

// GetNote resolves a single note under the ownership rule.
func (svc *NoteService) GetNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	note, err := svc.Notes.FindNote(ctx, noteID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch note: %w", err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// UpdateNote overwrites whichever of title/body are provided and
// refreshes the update timestamp.
func (svc *NoteService) UpdateNote(ctx context.Context, noteID, userID, title, body string) (*model.Note, error) {
	if title == "" && body == "" {
		return nil, invalid("Provide title or body to update")
	}

	matched, err := svc.Notes.UpdateTitleBody(ctx, noteID, userID, title, body)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if !matched {
		return nil, ErrNoteNotFound
	}

	return svc.GetNote(ctx, noteID, userID)
}

// DeleteNote removes a note and its reference on the owner record.
func (svc *NoteService) DeleteNote(ctx context.Context, noteID, userID string) error {
	deleted, err := svc.Notes.DeleteNote(ctx, noteID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if !deleted {
		return ErrNoteNotFound
	}

	return svc.Users.RemoveNoteRefs(ctx, userID, []string{noteID})
}

// DeleteNotes deletes every listed note the caller owns and reports the
// count actually removed. Foreign or unknown ids are skipped silently.
func (svc *NoteService) DeleteNotes(ctx context.Context, userID string, noteIDs []string) (int64, error) {
	if len(noteIDs) == 0 {
		return 0, invalid("Please provide an array of note IDs")
	}

	deleted, err := svc.Notes.DeleteNotes(ctx, userID, noteIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}

	// Pulling an id the user never owned is a no-op on the refs array
	if err := svc.Users.RemoveNoteRefs(ctx, userID, noteIDs); err != nil {
		return deleted, err
	}

	return deleted, nil
}

// AddTags unions the normalized tags into the note's tag set.
func (svc *NoteService) AddTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error) {
	if tags == nil {
		return nil, invalid("Tags must be provided as an array")
	}

	note, err := svc.Notes.AddTags(ctx, noteID, userID, normalizeTags(tags))
	if err != nil {
		return nil, fmt.Errorf("failed to add tags: %w", err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// RemoveTags drops every matching normalized tag from the note.
func (svc *NoteService) RemoveTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error) {
	if tags == nil {
		return nil, invalid("Tags must be provided as an array")
	}

	note, err := svc.Notes.RemoveTags(ctx, noteID, userID, normalizeTags(tags))
	if err != nil {
		return nil, fmt.Errorf("failed to remove tags: %w", err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// ListNotesByTag pages through the owner's notes carrying the tag.
func (svc *NoteService) ListNotesByTag(ctx context.Context, userID, tag string, page, limit int) ([]*model.Note, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	normalized := strings.ToLower(strings.TrimSpace(tag))
	return svc.Notes.FindNotesByTag(ctx, userID, normalized, page, limit)
}

// ListTags returns the owner's distinct tags with occurrence counts,
// most used first. Order among equal counts is not defined.
func (svc *NoteService) ListTags(ctx context.Context, userID string) ([]model.TagCount, error) {
	return svc.Notes.CountNotesByTag(ctx, userID)
}

// TogglePin flips the pinned flag and returns the updated note.
func (svc *NoteService) TogglePin(ctx context.Context, noteID, userID string) (*model.Note, error) {
	note, err := svc.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := svc.Notes.SetPinned(ctx, noteID, userID, !note.IsPinned); err != nil {
		return nil, fmt.Errorf("failed to toggle pin: %w", err)
	}

	note.IsPinned = !note.IsPinned
	return note, nil
}

// ToggleFavorite flips the favorite flag and returns the updated note.
func (svc *NoteService) ToggleFavorite(ctx context.Context, noteID, userID string) (*model.Note, error) {
	note, err := svc.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := svc.Notes.SetFavorite(ctx, noteID, userID, !note.IsFavorite); err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	note.IsFavorite = !note.IsFavorite
	return note, nil
}

// ListPinnedNotes returns the owner's pinned notes.
func (svc *NoteService) ListPinnedNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return svc.Notes.FindPinnedNotes(ctx, userID)
}

// ListFavoriteNotes returns the owner's favorite notes.
func (svc *NoteService) ListFavoriteNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return svc.Notes.FindFavoriteNotes(ctx, userID)
}

// SetReminder schedules a reminder on the note, replacing any previous
// one, completed or not. The date must be strictly in the future at the
// time of the call; it is never re-validated afterwards.
func (svc *NoteService) SetReminder(ctx context.Context, noteID, userID string, date time.Time, text string) (*model.Reminder, error) {
	if date.IsZero() {
		return nil, invalid("Reminder date is required")
	}
	if !date.After(time.Now()) {
		return nil, invalid("Reminder date must be in the future")
	}

	note, err := svc.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	if text == "" {
		text = fmt.Sprintf("Reminder for: %s", note.Title)
	}

	reminder := &model.Reminder{Date: date, Text: text}
	if _, err := svc.Notes.SetReminder(ctx, noteID, userID, reminder); err != nil {
		return nil, fmt.Errorf("failed to set reminder: %w", err)
	}

	return reminder, nil
}

// CompleteReminder marks the note's reminder done. Completion is
// terminal; only a fresh SetReminder brings the note back into the
// upcoming listing.
func (svc *NoteService) CompleteReminder(ctx context.Context, noteID, userID string) error {
	note, err := svc.GetNote(ctx, noteID, userID)
	if err != nil {
		return err
	}
	if note.Reminder == nil {
		return ErrReminderNotFound
	}

	completed := *note.Reminder
	completed.IsCompleted = true
	if _, err := svc.Notes.SetReminder(ctx, noteID, userID, &completed); err != nil {
		return fmt.Errorf("failed to complete reminder: %w", err)
	}
	return nil
}

// ListUpcomingReminders returns the owner's uncompleted reminders due at
// or after now, soonest first. Due status is computed here at query
// time; nothing schedules or pushes reminders.
func (svc *NoteService) ListUpcomingReminders(ctx context.Context, userID string, limit int) ([]model.UpcomingReminder, error) {
	if limit < 1 {
		limit = 10
	}

	notes, err := svc.Notes.FindUpcomingReminders(ctx, userID, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}

	reminders := make([]model.UpcomingReminder, 0, len(notes))
	for _, note := range notes {
		if note.Reminder == nil {
			continue
		}
		reminders = append(reminders, model.UpcomingReminder{
			NoteID:       note.ID,
			NoteTitle:    note.Title,
			ReminderDate: note.Reminder.Date,
			ReminderText: note.Reminder.Text,
		})
	}
	return reminders, nil
}

// SaveVersion appends a snapshot of the note's current title and body
// and returns the new snapshot's id.
func (svc *NoteService) SaveVersion(ctx context.Context, noteID, userID string) (string, error) {
	note, err := svc.GetNote(ctx, noteID, userID)
	if err != nil {
		return "", err
	}

	version := model.Version{
		VersionID: uuid.New().String(),
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: time.Now(),
	}

	if _, err := svc.Notes.AppendVersion(ctx, noteID, userID, version); err != nil {
		return "", fmt.Errorf("failed to save version: %w", err)
	}

	return version.VersionID, nil
}

// ListVersions returns the note's title and its version history without
// bodies.
func (svc *NoteService) ListVersions(ctx context.Context, noteID, userID string) (string, []VersionEntry, error) {
	note, err := svc.GetNote(ctx, noteID, userID)
	if err != nil {
		return "", nil, err
	}

	entries := make([]VersionEntry, 0, len(note.Versions))
	for _, v := range note.Versions {
		entries = append(entries, VersionEntry{
			VersionID: v.VersionID,
			Title:     v.Title,
			CreatedAt: v.CreatedAt,
		})
	}
	return note.Title, entries, nil
}

// RestoreVersion rolls the note back to a historical snapshot. The
// pre-restore state is snapshotted first, so restoring never loses
// history.
func (svc *NoteService) RestoreVersion(ctx context.Context, noteID, userID, versionID string) (*model.Note, error) {
	note, err := svc.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	var target *model.Version
	for i := range note.Versions {
		if note.Versions[i].VersionID == versionID {
			target = &note.Versions[i]
			break
		}
	}
	if target == nil {
		return nil, ErrVersionNotFound
	}

	current := model.Version{
		VersionID: uuid.New().String(),
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: time.Now(),
	}
	if _, err := svc.Notes.AppendVersion(ctx, noteID, userID, current); err != nil {
		return nil, fmt.Errorf("failed to snapshot current state: %w", err)
	}

	if _, err := svc.Notes.UpdateTitleBody(ctx, noteID, userID, target.Title, target.Body); err != nil {
		return nil, fmt.Errorf("failed to restore version: %w", err)
	}

	return svc.GetNote(ctx, noteID, userID)
}
