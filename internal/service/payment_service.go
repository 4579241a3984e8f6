package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/models"
	"hotspot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Publisher receives document events from the write paths.
type Publisher interface {
	Publish(e events.Event)
}

// ReceiptUploader stores a receipt image and returns its public URL.
type ReceiptUploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error)
}

// TokenIssuer produces the hotspot access token for an approved payment.
type TokenIssuer interface {
	IssueAccessToken(userID, paymentID string, minutes int) (string, error)
}

// DiskUploader keeps receipts under dir and serves them from baseURL.
type DiskUploader struct {
	dir     string
	baseURL string
}

func NewDiskUploader(dir, baseURL string) *DiskUploader {
	return &DiskUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *DiskUploader) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, string, error) {
	target := filepath.Join(d.dir, filepath.Clean("/"+folder))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", "", err
	}
	name := filepath.Base(publicID)
	f, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, file); err != nil {
		return "", "", err
	}
	url := d.baseURL + "/receipts/" + strings.Trim(filepath.ToSlash(filepath.Clean("/"+folder)), "/") + "/" + name
	return url, url, nil
}

type PaymentService struct {
	payments repository.PaymentStore
	users    repository.UserStore
	uploader ReceiptUploader
	tokens   TokenIssuer
	bus      Publisher
	folder   string
	log      *zap.Logger
}

func NewPaymentService(payments repository.PaymentStore, users repository.UserStore, uploader ReceiptUploader, tokens TokenIssuer, bus Publisher, log *zap.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		users:    users,
		uploader: uploader,
		tokens:   tokens,
		bus:      bus,
		folder:   "receipts",
		log:      log.Named("payments"),
	}
}

type SubmitPaymentInput struct {
	UserID          string  `validate:"required"`
	Email           string  `validate:"required,email"`
	Username        string  `validate:"omitempty,max=64"`
	SinpeID         string  `validate:"required"`
	PackageName     string  `validate:"required"`
	Price           float64 `validate:"gte=0"`
	DurationMinutes int     `validate:"gt=0"`
	Receipt         io.Reader
	ReceiptName     string
}

func version(kind events.Kind, nanos int64) string {
	return string(kind) + "-" + strconv.FormatInt(nanos, 10)
}

// Submit uploads the receipt, upserts the user and stores a pending payment.
// The returned payment carries the claim key needed by ClaimToken; it is not
// persisted and cannot be recovered later.
func (s *PaymentService) Submit(ctx context.Context, in SubmitPaymentInput) (*models.Payment, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Receipt == nil {
		return nil, fmt.Errorf("%w: receipt is required", ErrInvalidRequest)
	}
	if err := s.ensureUser(ctx, in.UserID, in.Email, in.Username); err != nil {
		return nil, err
	}

	publicID := "receipt_" + uuid.NewString()
	if ext := filepath.Ext(in.ReceiptName); ext != "" {
		publicID += strings.ToLower(ext)
	}
	url, _, err := s.uploader.UploadImage(ctx, in.Receipt, s.folder+"/"+in.UserID, publicID)
	if err != nil {
		return nil, fmt.Errorf("upload receipt: %w", err)
	}
	claimKey := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(claimKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash claim key: %w", err)
	}

	p := &models.Payment{
		UserID:          in.UserID,
		SinpeID:         in.SinpeID,
		ReceiptImageURL: url,
		Status:          domain.PaymentStatusPending,
		PackageName:     in.PackageName,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		ClaimKeyHash:    string(hash),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	after := *p
	s.bus.Publish(events.Event{
		Collection: domain.CollectionPayments,
		Kind:       events.Created,
		DocID:      p.ID,
		Version:    version(events.Created, p.CreatedAt.UnixNano()),
		After:      &after,
	})
	s.log.Info("payment submitted", zap.String("payment_id", p.ID), zap.String("user_id", p.UserID))
	p.ClaimKey = claimKey
	return p, nil
}

func (s *PaymentService) ensureUser(ctx context.Context, id, email, username string) error {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return s.users.Create(ctx, &models.User{ID: id, Email: email, Username: username})
	}
	if err != nil {
		return fmt.Errorf("%w: user %s: %v", ErrLookup, id, err)
	}
	if (u.Username == "" && username != "") || (u.Email == "" && email != "") {
		if u.Username == "" {
			u.Username = username
		}
		if u.Email == "" {
			u.Email = email
		}
		return s.users.Save(ctx, u)
	}
	return nil
}

// Decide moves a pending payment to approved or rejected. Approval issues the
// access token.
func (s *PaymentService) Decide(ctx context.Context, id, status, adminReply string) (*models.Payment, error) {
	if !domain.IsTerminalPaymentStatus(status) {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidRequest)
	}
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentStatusPending {
		return nil, fmt.Errorf("%w: payment is already %s", ErrConflict, p.Status)
	}
	before := *p

	p.Status = status
	p.AdminReply = adminReply
	if status == domain.PaymentStatusApproved && s.tokens != nil {
		tok, err := s.tokens.IssueAccessToken(p.UserID, p.ID, p.DurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("issue access token: %w", err)
		}
		p.Token = tok
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	after := *p
	s.bus.Publish(events.Event{
		Collection: domain.CollectionPayments,
		Kind:       events.Updated,
		DocID:      p.ID,
		Version:    version(events.Updated, p.UpdatedAt.UnixNano()),
		Before:     &before,
		After:      &after,
	})
	s.log.Info("payment decided", zap.String("payment_id", p.ID), zap.String("status", status))
	return p, nil
}

func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *PaymentService) List(ctx context.Context, f repository.PaymentFilter) ([]models.Payment, error) {
	return s.payments.List(ctx, f)
}

// ClaimToken returns the access token of an approved payment to the holder of
// its claim key.
func (s *PaymentService) ClaimToken(ctx context.Context, id, claimKey string) (string, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if claimKey == "" || p.ClaimKeyHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(p.ClaimKeyHash), []byte(claimKey)) != nil {
		return "", ErrForbidden
	}
	if p.Status != domain.PaymentStatusApproved || p.Token == "" {
		return "", fmt.Errorf("%w: payment is %s", ErrConflict, p.Status)
	}
	return p.Token, nil
}
