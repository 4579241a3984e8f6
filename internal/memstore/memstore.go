// Package memstore keeps every collection in process memory. It backs the
// desktop/mock mode and the test suites.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hotspot/internal/models"
	"hotspot/internal/repository"

	"github.com/google/uuid"
)

// New returns empty stores sharing nothing with other instances.
func New() (*repository.Stores, *Handles) {
	h := &Handles{
		Users:         &UserStore{docs: map[string]models.User{}},
		Payments:      &PaymentStore{docs: map[string]models.Payment{}},
		Tickets:       &TicketStore{docs: map[string]models.SupportTicket{}},
		Posts:         &PostStore{docs: map[string]models.BulletinPost{}},
		Referrals:     &ReferralStore{docs: map[string]models.Referral{}},
		Notifications: &NotificationStore{docs: map[string]models.Notification{}},
	}
	return &repository.Stores{
		Users:         h.Users,
		Payments:      h.Payments,
		Tickets:       h.Tickets,
		Posts:         h.Posts,
		Referrals:     h.Referrals,
		Notifications: h.Notifications,
	}, h
}

// Handles exposes the concrete stores so tests can inspect or inject failures.
type Handles struct {
	Users         *UserStore
	Payments      *PaymentStore
	Tickets       *TicketStore
	Posts         *PostStore
	Referrals     *ReferralStore
	Notifications *NotificationStore
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func window[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

type UserStore struct {
	mu   sync.RWMutex
	docs map[string]models.User
	// FailGet makes GetByID / GetByUsername return the mapped error for the key.
	FailGet map[string]error
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&u.ID)
	if _, ok := s.docs[u.ID]; ok {
		return fmt.Errorf("user %s already exists", u.ID)
	}
	stamp(&u.CreatedAt)
	s.docs[u.ID] = *u
	return nil
}

func (s *UserStore) Save(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&u.ID)
	stamp(&u.CreatedAt)
	s.docs[u.ID] = *u
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.FailGet[id]; err != nil {
		return nil, err
	}
	u, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.FailGet[username]; err != nil {
		return nil, err
	}
	var found *models.User
	for _, u := range s.docs {
		if u.Username != username {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) {
			u := u
			found = &u
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.User, 0, len(s.docs))
	for _, u := range s.docs {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type PaymentStore struct {
	mu   sync.RWMutex
	docs map[string]models.Payment
}

func (s *PaymentStore) Create(ctx context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&p.ID)
	stamp(&p.CreatedAt)
	stamp(&p.UpdatedAt)
	s.docs[p.ID] = *p
	return nil
}

func (s *PaymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *PaymentStore) Update(ctx context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.docs[p.ID] = *p
	return nil
}

func (s *PaymentStore) List(ctx context.Context, f repository.PaymentFilter) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Payment
	for _, p := range s.docs {
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return window(list, f.Limit, f.Offset), nil
}

type TicketStore struct {
	mu   sync.RWMutex
	docs map[string]models.SupportTicket
}

func cloneTicket(t models.SupportTicket) models.SupportTicket {
	if t.AdminReply != nil {
		r := *t.AdminReply
		t.AdminReply = &r
	}
	return t
}

func (s *TicketStore) Create(ctx context.Context, t *models.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&t.ID)
	stamp(&t.CreatedAt)
	stamp(&t.UpdatedAt)
	s.docs[t.ID] = cloneTicket(*t)
	return nil
}

func (s *TicketStore) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t = cloneTicket(t)
	return &t, nil
}

func (s *TicketStore) Update(ctx context.Context, t *models.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[t.ID]; !ok {
		return repository.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	s.docs[t.ID] = cloneTicket(*t)
	return nil
}

func (s *TicketStore) List(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.SupportTicket
	for _, t := range s.docs {
		if userID == "" || t.UserID == userID {
			list = append(list, cloneTicket(t))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return window(list, limit, offset), nil
}

type PostStore struct {
	mu   sync.RWMutex
	docs map[string]models.BulletinPost
}

func (s *PostStore) Create(ctx context.Context, p *models.BulletinPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&p.ID)
	stamp(&p.CreatedAt)
	s.docs[p.ID] = *p
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*models.BulletinPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *PostStore) List(ctx context.Context, limit, offset int) ([]models.BulletinPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.BulletinPost, 0, len(s.docs))
	for _, p := range s.docs {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return window(list, limit, offset), nil
}

type ReferralStore struct {
	mu   sync.RWMutex
	docs map[string]models.Referral
}

func (s *ReferralStore) Create(ctx context.Context, r *models.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&r.ID)
	stamp(&r.CreatedAt)
	s.docs[r.ID] = *r
	return nil
}

func (s *ReferralStore) ListByReferrerID(ctx context.Context, referrerID string, limit, offset int) ([]models.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Referral
	for _, r := range s.docs {
		if r.ReferrerID == referrerID {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return window(list, limit, offset), nil
}

type NotificationStore struct {
	mu   sync.RWMutex
	docs map[string]models.Notification
	// FailBatchAt aborts CreateBatch when it reaches the n-th write (1-based).
	FailBatchAt int
	// FailTypes makes Create fail for notifications of the given types.
	FailTypes map[string]error
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailTypes[n.Type]; err != nil {
		return err
	}
	newID(&n.ID)
	stamp(&n.CreatedAt)
	s.docs[n.ID] = *n
	return nil
}

// CreateBatch stages every write and commits only when all of them succeed.
// The caller's values are left untouched by an aborted batch.
func (s *NotificationStore) CreateBatch(ctx context.Context, list []*models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := make([]models.Notification, 0, len(list))
	for i, n := range list {
		if s.FailBatchAt > 0 && i+1 >= s.FailBatchAt {
			return fmt.Errorf("batch write aborted at %d of %d", i+1, len(list))
		}
		doc := *n
		newID(&doc.ID)
		stamp(&doc.CreatedAt)
		staged = append(staged, doc)
	}
	for i, doc := range staged {
		s.docs[doc.ID] = doc
		list[i].ID = doc.ID
		list[i].CreatedAt = doc.CreatedAt
	}
	return nil
}

func (s *NotificationStore) sorted(keep func(models.Notification) bool) []models.Notification {
	var list []models.Notification
	for _, n := range s.docs {
		if keep(n) {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (s *NotificationStore) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sorted(func(n models.Notification) bool { return !n.IsAdminNotification && n.UserID == userID })
	return window(list, limit, offset), nil
}

func (s *NotificationStore) ListAdmin(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sorted(func(n models.Notification) bool { return n.IsAdminNotification })
	return window(list, limit, offset), nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if (userID == "" && !n.IsAdminNotification) || (userID != "" && n.UserID != userID) {
		return repository.ErrNotFound
	}
	n.IsRead = true
	s.docs[id] = n
	return nil
}

// All returns every stored notification, oldest first.
func (s *NotificationStore) All() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sorted(func(models.Notification) bool { return true })
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}
