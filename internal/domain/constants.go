package domain

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Collections, shared by every store implementation and the event bus.
const (
	CollectionUsers         = "users"
	CollectionPayments      = "payments"
	CollectionTickets       = "support_tickets"
	CollectionPosts         = "bulletin_posts"
	CollectionReferrals     = "referrals"
	CollectionNotifications = "notifications"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

const (
	NotificationPaymentSubmission    = "payment_submission"
	NotificationSupportTicket        = "support_ticket"
	NotificationBulletinPost         = "bulletin_post"
	NotificationBulletinAnnouncement = "bulletin_announcement"
	NotificationMention              = "mention"
	NotificationReferral             = "referral"
	NotificationPaymentStatus        = "payment_status"
	NotificationSupportStatus        = "support_status"
	NotificationAdminReply           = "admin_reply"
)

// TicketStatusLabels are the user-facing (Spanish) names of ticket states.
var TicketStatusLabels = map[string]string{
	TicketStatusInProgress: "en progreso",
	TicketStatusResolved:   "resuelto",
	TicketStatusClosed:     "cerrado",
}

// TicketStatusLabel falls back to the raw status for states without a label.
func TicketStatusLabel(status string) string {
	if l, ok := TicketStatusLabels[status]; ok {
		return l
	}
	return status
}

func IsTicketStatus(s string) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// IsTerminalPaymentStatus reports whether s is a status an admin decision produces.
func IsTerminalPaymentStatus(s string) bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}
