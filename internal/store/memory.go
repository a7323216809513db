package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"egov-portal/internal/models"
)

// MemoryStore тримає всі дані в пам'яті процесу. Повертає копії, тому
// викликач не може змінити стан в обхід операцій сховища.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	documents     map[string]models.Document
	notifications map[string]models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]models.User),
		documents:     make(map[string]models.Document),
		notifications: make(map[string]models.Notification),
	}
}

// Користувачі

func (s *MemoryStore) SaveUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	for id, existing := range s.users {
		if id != user.ID && existing.Email == user.Email {
			return models.ErrDuplicateEntry
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) FindUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return models.User{}, models.ErrUserNotFound
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = models.NormalizeEmail(email)
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, models.ErrUserNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context, role models.UserRole) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		if role == "" || user.Role == role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// Документи

func (s *MemoryStore) InsertDocument(_ context.Context, doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return models.ErrDuplicateEntry
	}
	s.documents[doc.ID] = doc.Clone()
	return nil
}

func (s *MemoryStore) FindDocument(_ context.Context, id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, ok := s.documents[id]; ok {
		return doc.Clone(), nil
	}
	return models.Document{}, models.ErrDocumentNotFound
}

func (s *MemoryStore) FindDocumentByCode(_ context.Context, code string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.QRCode != "" && doc.QRCode == code {
			return doc.Clone(), nil
		}
	}
	return models.Document{}, models.ErrDocumentNotFound
}

func (s *MemoryStore) UpdateDocument(_ context.Context, id string, fn UpdateFunc) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.documents[id]
	if !ok {
		return models.Document{}, models.ErrDocumentNotFound
	}

	updated := current.Clone()
	if err := fn(&updated); err != nil {
		return models.Document{}, err
	}
	updated.ID = id
	updated.Version = current.Version + 1

	s.documents[id] = updated.Clone()
	return updated, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, id)
	return nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	s.mu.RLock()
	matched := make([]models.Document, 0)
	for _, doc := range s.documents {
		if matchesFilter(doc, filter) {
			matched = append(matched, doc.Clone())
		}
	}
	s.mu.RUnlock()

	sortBySubmitted(matched)

	page, limit := NormalizePage(filter.Page, filter.Limit)
	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []models.Document{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) AllDocuments(_ context.Context) ([]models.Document, error) {
	s.mu.RLock()
	docs := make([]models.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc.Clone())
	}
	s.mu.RUnlock()

	sortBySubmitted(docs)
	return docs, nil
}

func matchesFilter(doc models.Document, filter models.DocumentFilter) bool {
	if filter.UserID != "" && doc.UserID != filter.UserID {
		return false
	}
	if filter.VerifiedBy != "" && doc.VerifiedBy != filter.VerifiedBy {
		return false
	}
	if filter.Type != "" && doc.Type != filter.Type {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if doc.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Новіші першими; однаковий час впорядковується за id
func sortBySubmitted(docs []models.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].SubmittedAt.Equal(docs[j].SubmittedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].SubmittedAt.After(docs[j].SubmittedAt)
	})
}

// Сповіщення

func (s *MemoryStore) InsertNotification(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notifications[n.ID]; exists {
		return models.ErrDuplicateEntry
	}
	s.notifications[n.ID] = n
	return nil
}

func (s *MemoryStore) FindNotification(_ context.Context, id string) (models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n, ok := s.notifications[id]; ok {
		return n, nil
	}
	return models.Notification{}, models.ErrNotificationNotFound
}

func (s *MemoryStore) SetNotificationRead(_ context.Context, id string, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return models.ErrNotificationNotFound
	}
	if n.Read {
		return nil
	}

	n.Read = true
	n.ReadAt = &readAt
	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkAllNotificationsRead(_ context.Context, userID string, readAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for id, n := range s.notifications {
		if n.UserID != userID || n.Read {
			continue
		}
		at := readAt
		n.Read = true
		n.ReadAt = &at
		s.notifications[id] = n
		marked++
	}
	return marked, nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	s.mu.RLock()
	out := make([]models.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}
