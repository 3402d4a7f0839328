// Package testutil provides in-memory store implementations backing the
// service-level tests. They mirror the MongoDB repositories' observable
// behavior, including returning decoded copies rather than aliases.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"notevault/model"
)

type MemStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	notes map[string]*model.Note
}

func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]*model.User),
		notes: make(map[string]*model.Note),
	}
}

func copyNote(n *model.Note) *model.Note {
	c := *n
	c.Tags = append([]string(nil), n.Tags...)
	c.Versions = append([]model.Version(nil), n.Versions...)
	if n.Reminder != nil {
		r := *n.Reminder
		c.Reminder = &r
	}
	return &c
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Notes = append([]string(nil), u.Notes...)
	return &c
}

// user store

func (s *MemStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = copyUser(user)
	return nil
}

func (s *MemStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemStore) FindUserByID(ctx context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (s *MemStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Password = passwordHash
	}
	return nil
}

func (s *MemStore) SetTwoFactor(ctx context.Context, userID, secret string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.TwoFactorSecret = secret
		u.TwoFactorEnabled = enabled
	}
	return nil
}

func (s *MemStore) AddNoteRef(ctx context.Context, userID, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Notes = append(u.Notes, noteID)
	}
	return nil
}

func (s *MemStore) RemoveNoteRefs(ctx context.Context, userID string, noteIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	drop := make(map[string]struct{}, len(noteIDs))
	for _, id := range noteIDs {
		drop[id] = struct{}{}
	}
	kept := u.Notes[:0]
	for _, id := range u.Notes {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	u.Notes = kept
	return nil
}

// note store

func (s *MemStore) InsertNote(ctx context.Context, note *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.ID] = copyNote(note)
	return nil
}

func (s *MemStore) owned(noteID, userID string) *model.Note {
	n, ok := s.notes[noteID]
	if !ok || n.UserID != userID {
		return nil
	}
	return n
}

func (s *MemStore) FindNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.owned(noteID, userID); n != nil {
		return copyNote(n), nil
	}
	return nil, nil
}

func (s *MemStore) FindNotesPage(ctx context.Context, userID, search string, page, limit int) ([]*model.Note, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Note
	needle := strings.ToLower(search)
	for _, n := range s.notes {
		if n.UserID != userID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), needle) &&
			!strings.Contains(strings.ToLower(n.Body), needle) {
			continue
		}
		matched = append(matched, n)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []*model.Note{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	pageNotes := make([]*model.Note, 0, end-start)
	for _, n := range matched[start:end] {
		pageNotes = append(pageNotes, copyNote(n))
	}
	return pageNotes, total, nil
}

func (s *MemStore) UpdateTitleBody(ctx context.Context, noteID, userID, title, body string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.owned(noteID, userID)
	if n == nil {
		return false, nil
	}
	if title != "" {
		n.Title = title
	}
	if body != "" {
		n.Body = body
	}
	n.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) DeleteNote(ctx context.Context, noteID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owned(noteID, userID) == nil {
		return false, nil
	}
	delete(s.notes, noteID)
	return true, nil
}

func (s *MemStore) DeleteNotes(ctx context.Context, userID string, noteIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for _, id := range noteIDs {
		if s.owned(id, userID) != nil {
			delete(s.notes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemStore) AddTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.owned(noteID, userID)
	if n == nil {
		return nil, nil
	}
	existing := make(map[string]struct{}, len(n.Tags))
	for _, t := range n.Tags {
		existing[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := existing[t]; !ok {
			n.Tags = append(n.Tags, t)
			existing[t] = struct{}{}
		}
	}
	return copyNote(n), nil
}

func (s *MemStore) RemoveTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.owned(noteID, userID)
	if n == nil {
		return nil, nil
	}
	drop := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		drop[t] = struct{}{}
	}
	kept := n.Tags[:0]
	for _, t := range n.Tags {
		if _, gone := drop[t]; !gone {
			kept = append(kept, t)
		}
	}
	n.Tags = kept
	return copyNote(n), nil
}

func (s *MemStore) FindNotesByTag(ctx context.Context, userID, tag string, page, limit int) ([]*model.Note, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Note
	for _, n := range s.notes {
		if n.UserID != userID {
			continue
		}
		for _, t := range n.Tags {
			if t == tag {
				matched = append(matched, n)
				break
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []*model.Note{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	pageNotes := make([]*model.Note, 0, end-start)
	for _, n := range matched[start:end] {
		pageNotes = append(pageNotes, copyNote(n))
	}
	return pageNotes, total, nil
}

func (s *MemStore) CountNotesByTag(ctx context.Context, userID string) ([]model.TagCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, n := range s.notes {
		if n.UserID != userID {
			continue
		}
		for _, t := range n.Tags {
			counts[t]++
		}
	}

	result := make([]model.TagCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, model.TagCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result, nil
}

func (s *MemStore) SetPinned(ctx context.Context, noteID, userID string, pinned bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.owned(noteID, userID)
	if n == nil {
		return false, nil
	}
	n.IsPinned = pinned
	n.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) SetFavorite(ctx context.Context, noteID, userID string, favorite bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.owned(noteID, userID)
	if n == nil {
		return false, nil
	}
	n.IsFavorite = favorite
	n.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) FindPinnedNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return s.findByFlag(userID, func(n *model.Note) bool { return n.IsPinned })
}

func (s *MemStore) FindFavoriteNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return s.findByFlag(userID, func(n *model.Note) bool { return n.IsFavorite })
}

func (s *MemStore) findByFlag(userID string, match func(*model.Note) bool) ([]*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Note
	for _, n := range s.notes {
		if n.UserID == userID && match(n) {
			matched = append(matched, copyNote(n))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	return matched, nil
}

func (s *MemStore) SetReminder(ctx context.Context, noteID, userID string, reminder *model.Reminder) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.owned(noteID, userID)
	if n == nil {
		return false, nil
	}
	r := *reminder
	n.Reminder = &r
	return true, nil
}

func (s *MemStore) FindUpcomingReminders(ctx context.Context, userID string, after time.Time, limit int) ([]*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Note
	for _, n := range s.notes {
		if n.UserID != userID || n.Reminder == nil {
			continue
		}
		if n.Reminder.IsCompleted || n.Reminder.Date.Before(after) {
			continue
		}
		matched = append(matched, copyNote(n))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Reminder.Date.Before(matched[j].Reminder.Date)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemStore) AppendVersion(ctx context.Context, noteID, userID string, version model.Version) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.owned(noteID, userID)
	if n == nil {
		return false, nil
	}
	n.Versions = append(n.Versions, version)
	return true, nil
}
