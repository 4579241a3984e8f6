package service

import (
	"context"
	"errors"
	"fmt"

	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/models"
	"hotspot/internal/repository"

	"go.uber.org/zap"
)

// TriggerService turns document events into notifications. Every trigger
// logs its own failure and never returns it, so one failing trigger does not
// affect its siblings or later events.
type TriggerService struct {
	notify *NotificationService
	users  repository.UserStore
	hub    Broadcaster
	dedup  Deduper
	log    *zap.Logger
}

type TriggerOption func(*TriggerService)

// WithDeduper skips events whose key was already handled.
func WithDeduper(d Deduper) TriggerOption {
	return func(s *TriggerService) { s.dedup = d }
}

// WithPaymentFeed pushes payment changes to the owner's realtime connections.
func WithPaymentFeed(b Broadcaster) TriggerOption {
	return func(s *TriggerService) { s.hub = b }
}

func NewTriggerService(notify *NotificationService, users repository.UserStore, log *zap.Logger, opts ...TriggerOption) *TriggerService {
	s := &TriggerService{notify: notify, users: users, log: log.Named("trigger")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handle dispatches one event. It is an events.Handler.
func (s *TriggerService) Handle(ctx context.Context, e events.Event) {
	if s.dedup != nil && e.Version != "" {
		first, err := s.dedup.FirstDelivery(ctx, e.Key())
		if err != nil {
			s.log.Warn("dedup check failed, handling anyway", zap.String("key", e.Key()), zap.Error(err))
		} else if !first {
			s.log.Debug("duplicate event skipped", zap.String("key", e.Key()))
			return
		}
	}

	switch e.Collection {
	case domain.CollectionPayments:
		after, ok := e.After.(*models.Payment)
		if !ok {
			break
		}
		if e.Kind == events.Created {
			s.onPaymentCreated(ctx, after)
			return
		}
		before, _ := e.Before.(*models.Payment)
		s.onPaymentUpdated(ctx, before, after)
		return
	case domain.CollectionTickets:
		after, ok := e.After.(*models.SupportTicket)
		if !ok {
			break
		}
		if e.Kind == events.Created {
			s.onTicketCreated(ctx, after)
			return
		}
		before, _ := e.Before.(*models.SupportTicket)
		s.onTicketUpdated(ctx, before, after)
		return
	case domain.CollectionPosts:
		if p, ok := e.After.(*models.BulletinPost); ok && e.Kind == events.Created {
			s.onPostCreated(ctx, p)
		}
		return
	case domain.CollectionReferrals:
		if r, ok := e.After.(*models.Referral); ok && e.Kind == events.Created {
			s.onReferralCreated(ctx, r)
		}
		return
	default:
		return
	}
	s.log.Warn("unexpected document type", zap.String("collection", e.Collection), zap.String("doc_id", e.DocID))
}

// lookupUser degrades to nil (shown as unknown) when the user can't be read.
func (s *TriggerService) lookupUser(ctx context.Context, id string) *models.User {
	if id == "" {
		return nil
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("user lookup failed", zap.String("user_id", id), zap.Error(fmt.Errorf("%w: %v", ErrLookup, err)))
		}
		return nil
	}
	return u
}

func (s *TriggerService) failed(trigger, docID string, err error) {
	s.log.Error("trigger failed", zap.String("trigger", trigger), zap.String("doc_id", docID), zap.Error(err))
}

func (s *TriggerService) onPaymentCreated(ctx context.Context, p *models.Payment) {
	if p.Status != domain.PaymentStatusPending {
		return
	}
	u := s.lookupUser(ctx, p.UserID)
	_, err := s.notify.NotifyAdmin(ctx, domain.NotificationPaymentSubmission,
		"Nuevo pago recibido",
		fmt.Sprintf("%s envió un pago de ₡%.0f por %s", u.DisplayName(), p.Price, p.PackageName),
		u,
		map[string]interface{}{
			"paymentId":   p.ID,
			"amount":      p.Price,
			"packageName": p.PackageName,
			"sinpeId":     p.SinpeID,
		})
	if err != nil {
		s.failed("payment_submission", p.ID, err)
	}
}

func (s *TriggerService) onTicketCreated(ctx context.Context, t *models.SupportTicket) {
	u := s.lookupUser(ctx, t.UserID)
	_, err := s.notify.NotifyAdmin(ctx, domain.NotificationSupportTicket,
		"Nuevo ticket de soporte",
		fmt.Sprintf("%s abrió un ticket: %s", u.DisplayName(), t.Subject),
		u,
		map[string]interface{}{
			"ticketId": t.ID,
			"category": t.Category,
			"priority": t.Priority,
			"subject":  t.Subject,
		})
	if err != nil {
		s.failed("support_ticket", t.ID, err)
	}
}

func (s *TriggerService) onReferralCreated(ctx context.Context, r *models.Referral) {
	u := s.lookupUser(ctx, r.ReferrerID)
	_, err := s.notify.NotifyAdmin(ctx, domain.NotificationReferral,
		"Nueva referencia",
		fmt.Sprintf("%s refirió a %s", u.DisplayName(), r.ReferredEmail),
		u,
		map[string]interface{}{
			"referralId":    r.ID,
			"referredEmail": r.ReferredEmail,
			"relationship":  r.Relationship,
		})
	if err != nil {
		s.failed("referral", r.ID, err)
	}
}

func (s *TriggerService) onPostCreated(ctx context.Context, p *models.BulletinPost) {
	author := s.lookupUser(ctx, p.AuthorID)
	_, err := s.notify.NotifyAdmin(ctx, domain.NotificationBulletinPost,
		"Nueva publicación en el boletín",
		fmt.Sprintf("%s publicó: %s", author.DisplayName(), p.Title),
		author,
		map[string]interface{}{
			"postId":   p.ID,
			"title":    p.Title,
			"category": p.Category,
			"priority": p.Priority,
		})
	if err != nil {
		s.failed("bulletin_post", p.ID, err)
	}

	if IsBroadcast(p.Content) {
		n, err := s.notify.NotifyAll(ctx, domain.NotificationBulletinAnnouncement,
			"Anuncio: "+p.Title,
			fmt.Sprintf("%s publicó un anuncio para todos", author.DisplayName()),
			p.AuthorID,
			map[string]interface{}{"postId": p.ID})
		if err != nil {
			s.failed("bulletin_announcement", p.ID, err)
		} else {
			s.log.Info("announcement sent", zap.String("post_id", p.ID), zap.Int("recipients", n))
		}
	}

	for _, name := range ExtractMentions(p.Content) {
		s.notifyMention(ctx, p, author, name)
	}
}

func (s *TriggerService) notifyMention(ctx context.Context, p *models.BulletinPost, author *models.User, username string) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("mentioned user not found", zap.String("username", username))
		} else {
			s.failed("mention", p.ID, fmt.Errorf("%w: %s: %v", ErrLookup, username, err))
		}
		return
	}
	if u.ID == p.AuthorID {
		return
	}
	_, err = s.notify.NotifyUser(ctx, u.ID, domain.NotificationMention,
		"Te mencionaron en una publicación",
		fmt.Sprintf("%s te mencionó en \"%s\"", author.DisplayName(), p.Title),
		map[string]interface{}{
			"postId":     p.ID,
			"fromUserId": p.AuthorID,
		})
	if err != nil {
		s.failed("mention", p.ID, err)
	}
}

// onPaymentUpdated notifies only on a real transition into approved or
// rejected. Without a previous version no transition can be proven.
func (s *TriggerService) onPaymentUpdated(ctx context.Context, before, after *models.Payment) {
	if s.hub != nil {
		s.hub.BroadcastToUser(after.UserID, map[string]interface{}{"type": "payment", "payment": after})
	}
	if before == nil || before.Status == after.Status || !domain.IsTerminalPaymentStatus(after.Status) {
		return
	}
	extra := map[string]interface{}{
		"paymentId": after.ID,
		"status":    after.Status,
	}
	var title, desc string
	if after.Status == domain.PaymentStatusApproved {
		title = "Pago aprobado"
		desc = fmt.Sprintf("Tu pago de %s fue aprobado. ¡Disfruta tu conexión!", after.PackageName)
	} else {
		title = "Pago rechazado"
		desc = fmt.Sprintf("Tu pago de %s fue rechazado.", after.PackageName)
		if after.AdminReply != "" {
			desc += " " + after.AdminReply
			extra["adminReply"] = after.AdminReply
		}
	}
	if _, err := s.notify.NotifyUser(ctx, after.UserID, domain.NotificationPaymentStatus, title, desc, extra); err != nil {
		s.failed("payment_status", after.ID, err)
	}
}

func (s *TriggerService) onTicketUpdated(ctx context.Context, before, after *models.SupportTicket) {
	if before == nil {
		return
	}
	if before.Status != after.Status {
		label := domain.TicketStatusLabel(after.Status)
		_, err := s.notify.NotifyUser(ctx, after.UserID, domain.NotificationSupportStatus,
			"Actualización de tu ticket",
			fmt.Sprintf("Tu ticket \"%s\" está ahora %s", after.Subject, label),
			map[string]interface{}{
				"ticketId":    after.ID,
				"status":      after.Status,
				"statusLabel": label,
			})
		if err != nil {
			s.failed("support_status", after.ID, err)
		}
	}
	if !before.HasReply() && after.HasReply() {
		_, err := s.notify.NotifyUser(ctx, after.UserID, domain.NotificationAdminReply,
			"Respuesta del administrador",
			after.AdminReply.Text,
			map[string]interface{}{
				"ticketId": after.ID,
				"subject":  after.Subject,
			})
		if err != nil {
			s.failed("admin_reply", after.ID, err)
		}
	}
}
