// Package docstore keeps the collections in Cloud Firestore, the layout the
// mobile clients read and write directly.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotspot/internal/domain"
	"hotspot/internal/models"
	"hotspot/internal/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// New returns Firestore-backed stores sharing one client.
func New(client *firestore.Client) *repository.Stores {
	return &repository.Stores{
		Users:         &UserStore{coll: client.Collection(domain.CollectionUsers)},
		Payments:      &PaymentStore{coll: client.Collection(domain.CollectionPayments)},
		Tickets:       &TicketStore{coll: client.Collection(domain.CollectionTickets)},
		Posts:         &PostStore{coll: client.Collection(domain.CollectionPosts)},
		Referrals:     &ReferralStore{coll: client.Collection(domain.CollectionReferrals)},
		Notifications: &NotificationStore{client: client, coll: client.Collection(domain.CollectionNotifications)},
	}
}

func translate(err error) error {
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	return err
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// ref picks the document for id, allocating a new id when it is empty.
func ref(coll *firestore.CollectionRef, id *string) *firestore.DocumentRef {
	if *id == "" {
		doc := coll.NewDoc()
		*id = doc.ID
		return doc
	}
	return coll.Doc(*id)
}

// decode reads one snapshot into T and stamps the document id.
func decode[T any](snap *firestore.DocumentSnapshot, setID func(*T, string)) (*T, error) {
	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
	}
	setID(&v, snap.Ref.ID)
	return &v, nil
}

func get[T any](ctx context.Context, coll *firestore.CollectionRef, id string, setID func(*T, string)) (*T, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	snap, err := coll.Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return decode(snap, setID)
}

func all[T any](it *firestore.DocumentIterator, setID func(*T, string)) ([]T, error) {
	defer it.Stop()
	var out []T
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap, setID)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
}

func paginate(q firestore.Query, limit, offset int) firestore.Query {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func setUserID(u *models.User, id string)            { u.ID = id }
func setPaymentID(p *models.Payment, id string)      { p.ID = id }
func setTicketID(t *models.SupportTicket, id string) { t.ID = id }
func setPostID(p *models.BulletinPost, id string)    { p.ID = id }
func setReferralID(r *models.Referral, id string)    { r.ID = id }

type UserStore struct {
	coll *firestore.CollectionRef
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	stamp(&u.CreatedAt)
	_, err := ref(s.coll, &u.ID).Create(ctx, u)
	return err
}

func (s *UserStore) Save(ctx context.Context, u *models.User) error {
	stamp(&u.CreatedAt)
	_, err := ref(s.coll, &u.ID).Set(ctx, u)
	return err
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return get(ctx, s.coll, id, setUserID)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	list, err := all(s.coll.Where("username", "==", username).
		OrderBy("createdAt", firestore.Asc).Limit(1).Documents(ctx), setUserID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	return all(s.coll.Documents(ctx), setUserID)
}

type PaymentStore struct {
	coll *firestore.CollectionRef
}

func (s *PaymentStore) Create(ctx context.Context, p *models.Payment) error {
	stamp(&p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	_, err := ref(s.coll, &p.ID).Create(ctx, p)
	return err
}

func (s *PaymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return get(ctx, s.coll, id, setPaymentID)
}

func (s *PaymentStore) Update(ctx context.Context, p *models.Payment) error {
	p.UpdatedAt = time.Now()
	_, err := s.coll.Doc(p.ID).Set(ctx, p)
	return translate(err)
}

func (s *PaymentStore) List(ctx context.Context, f repository.PaymentFilter) ([]models.Payment, error) {
	q := s.coll.Query
	if f.UserID != "" {
		q = q.Where("userId", "==", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status", "==", f.Status)
	}
	q = paginate(q.OrderBy("createdAt", firestore.Desc), f.Limit, f.Offset)
	return all(q.Documents(ctx), setPaymentID)
}

type TicketStore struct {
	coll *firestore.CollectionRef
}

func (s *TicketStore) Create(ctx context.Context, t *models.SupportTicket) error {
	stamp(&t.CreatedAt)
	t.UpdatedAt = t.CreatedAt
	_, err := ref(s.coll, &t.ID).Create(ctx, t)
	return err
}

func (s *TicketStore) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	return get(ctx, s.coll, id, setTicketID)
}

func (s *TicketStore) Update(ctx context.Context, t *models.SupportTicket) error {
	t.UpdatedAt = time.Now()
	_, err := s.coll.Doc(t.ID).Set(ctx, t)
	return translate(err)
}

func (s *TicketStore) List(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error) {
	q := s.coll.Query
	if userID != "" {
		q = q.Where("userId", "==", userID)
	}
	q = paginate(q.OrderBy("createdAt", firestore.Desc), limit, offset)
	return all(q.Documents(ctx), setTicketID)
}

type PostStore struct {
	coll *firestore.CollectionRef
}

func (s *PostStore) Create(ctx context.Context, p *models.BulletinPost) error {
	stamp(&p.CreatedAt)
	_, err := ref(s.coll, &p.ID).Create(ctx, p)
	return err
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*models.BulletinPost, error) {
	return get(ctx, s.coll, id, setPostID)
}

func (s *PostStore) List(ctx context.Context, limit, offset int) ([]models.BulletinPost, error) {
	q := paginate(s.coll.OrderBy("createdAt", firestore.Desc), limit, offset)
	return all(q.Documents(ctx), setPostID)
}

type ReferralStore struct {
	coll *firestore.CollectionRef
}

func (s *ReferralStore) Create(ctx context.Context, r *models.Referral) error {
	stamp(&r.CreatedAt)
	_, err := ref(s.coll, &r.ID).Create(ctx, r)
	return err
}

func (s *ReferralStore) ListByReferrerID(ctx context.Context, referrerID string, limit, offset int) ([]models.Referral, error) {
	q := s.coll.Where("referrerId", "==", referrerID).OrderBy("createdAt", firestore.Desc)
	return all(paginate(q, limit, offset).Documents(ctx), setReferralID)
}

// NotificationStore writes notifications in their flat document form so that
// type-specific fields sit next to the core ones.
type NotificationStore struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	stamp(&n.CreatedAt)
	_, err := ref(s.coll, &n.ID).Create(ctx, n.Document())
	return err
}

// CreateBatch commits every document in one transaction. Ids are only
// assigned to the caller's values once the commit succeeds.
func (s *NotificationStore) CreateBatch(ctx context.Context, list []*models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	for i, n := range list {
		ids[i] = n.ID
		stamp(&n.CreatedAt)
	}
	refs := make([]*firestore.DocumentRef, len(list))
	for i := range list {
		refs[i] = ref(s.coll, &ids[i])
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i, n := range list {
			if err := tx.Create(refs[i], n.Document()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i, n := range list {
		n.ID = ids[i]
	}
	return nil
}

func (s *NotificationStore) list(ctx context.Context, q firestore.Query, limit, offset int) ([]models.Notification, error) {
	it := paginate(q.OrderBy("createdAt", firestore.Desc), limit, offset).Documents(ctx)
	defer it.Stop()
	var out []models.Notification
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *models.NotificationFromDocument(snap.Ref.ID, snap.Data()))
	}
}

func (s *NotificationStore) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	q := s.coll.Where("userId", "==", userID).Where("isAdminNotification", "==", false)
	return s.list(ctx, q, limit, offset)
}

func (s *NotificationStore) ListAdmin(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	return s.list(ctx, s.coll.Where("isAdminNotification", "==", true), limit, offset)
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, userID string) error {
	if id == "" {
		return repository.ErrNotFound
	}
	doc := s.coll.Doc(id)
	snap, err := doc.Get(ctx)
	if err != nil {
		return translate(err)
	}
	n := models.NotificationFromDocument(id, snap.Data())
	if !owns(n, userID) {
		return repository.ErrNotFound
	}
	_, err = doc.Update(ctx, []firestore.Update{{Path: "isRead", Value: true}})
	return translate(err)
}

// owns reports whether userID may mark n read. An empty userID stands for the admins.
func owns(n *models.Notification, userID string) bool {
	if userID == "" {
		return n.IsAdminNotification
	}
	return !n.IsAdminNotification && n.UserID == userID
}
