package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/models"
	"hotspot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentService(f *fixture, up ReceiptUploader, bus Publisher) *PaymentService {
	return NewPaymentService(f.stores.Payments, f.stores.Users, up, fakeIssuer{}, bus, zap.NewNop())
}

func submitInput() SubmitPaymentInput {
	return SubmitPaymentInput{
		UserID:          "u1",
		Email:           "ana@mail.test",
		Username:        "ana",
		SinpeID:         "SINPE-77",
		PackageName:     "Día completo",
		Price:           1500,
		DurationMinutes: 1440,
		Receipt:         receipt(),
		ReceiptName:     "comprobante.PNG",
	}
}

func TestSubmitPayment(t *testing.T) {
	f := newFixture(t)
	up := &fakeUploader{}
	bus := &recordingBus{}
	svc := newPaymentService(f, up, bus)

	p, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	assert.Equal(t, "receipts/u1", up.folder)
	assert.True(t, strings.HasSuffix(up.publicID, ".png"))
	assert.Equal(t, []byte("\x89PNG fake receipt"), up.body)
	assert.Contains(t, p.ReceiptImageURL, "receipts/u1/receipt_")
	assert.NotEmpty(t, p.ClaimKey)

	stored, err := f.stores.Payments.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ClaimKey)
	assert.NotEmpty(t, stored.ClaimKeyHash)
	assert.NotEqual(t, p.ClaimKey, stored.ClaimKeyHash)

	u, err := f.stores.Users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	e := bus.last(t)
	assert.Equal(t, domain.CollectionPayments, e.Collection)
	assert.Equal(t, events.Created, e.Kind)
	assert.Equal(t, p.ID, e.DocID)
	assert.Nil(t, e.Before)
}

func TestSubmitPaymentFillsMissingUsername(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stores.Users.Create(context.Background(), &models.User{ID: "u1", Email: "ana@mail.test"}))
	svc := newPaymentService(f, &fakeUploader{}, &recordingBus{})

	_, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)
	u, err := f.stores.Users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
}

func TestSubmitPaymentValidation(t *testing.T) {
	f := newFixture(t)
	bus := &recordingBus{}
	svc := newPaymentService(f, &fakeUploader{}, bus)

	in := submitInput()
	in.DurationMinutes = 0
	_, err := svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	in = submitInput()
	in.Receipt = nil
	_, err = svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	in = submitInput()
	in.Email = "not-an-email"
	_, err = svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Empty(t, bus.events)
}

func TestSubmitPaymentUploadFailure(t *testing.T) {
	f := newFixture(t)
	bus := &recordingBus{}
	svc := newPaymentService(f, &fakeUploader{err: errors.New("cloud down")}, bus)

	_, err := svc.Submit(context.Background(), submitInput())
	assert.Error(t, err)
	list, err := f.stores.Payments.List(context.Background(), repository.PaymentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, bus.events)
}

func TestDecidePayment(t *testing.T) {
	f := newFixture(t)
	bus := &recordingBus{}
	svc := newPaymentService(f, &fakeUploader{}, bus)
	ctx := context.Background()

	p, err := svc.Submit(ctx, submitInput())
	require.NoError(t, err)

	got, err := svc.Decide(ctx, p.ID, domain.PaymentStatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "tok-u1-"+p.ID, got.Token)

	e := bus.last(t)
	assert.Equal(t, events.Updated, e.Kind)
	assert.Equal(t, domain.PaymentStatusPending, e.Before.(*models.Payment).Status)
	assert.Equal(t, domain.PaymentStatusApproved, e.After.(*models.Payment).Status)

	_, err = svc.Decide(ctx, p.ID, domain.PaymentStatusRejected, "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Decide(ctx, p.ID, domain.PaymentStatusPending, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Decide(ctx, "missing", domain.PaymentStatusApproved, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimToken(t *testing.T) {
	f := newFixture(t)
	svc := newPaymentService(f, &fakeUploader{}, &recordingBus{})
	ctx := context.Background()

	p, err := svc.Submit(ctx, submitInput())
	require.NoError(t, err)

	_, err = svc.ClaimToken(ctx, p.ID, p.ClaimKey)
	assert.ErrorIs(t, err, ErrConflict, "pending payments have no token yet")

	_, err = svc.Decide(ctx, p.ID, domain.PaymentStatusApproved, "")
	require.NoError(t, err)

	tok, err := svc.ClaimToken(ctx, p.ID, p.ClaimKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-u1-"+p.ID, tok)

	_, err = svc.ClaimToken(ctx, p.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ClaimToken(ctx, p.ID, "guessed")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ClaimToken(ctx, "missing", p.ClaimKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPaymentJSONHidesSecrets(t *testing.T) {
	b, err := json.Marshal(models.Payment{ID: "p1", Token: "tok", ClaimKeyHash: "$2a$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "tok")
	assert.NotContains(t, string(b), "$2a$hash")
	assert.NotContains(t, string(b), "claimKey")
}

func TestPaymentLifecycleThroughTriggers(t *testing.T) {
	f := newFixture(t)
	bus := &recordingBus{}
	svc := newPaymentService(f, &fakeUploader{}, bus)
	ctx := context.Background()

	p, err := svc.Submit(ctx, submitInput())
	require.NoError(t, err)
	_, err = svc.Decide(ctx, p.ID, domain.PaymentStatusRejected, "Monto incorrecto")
	require.NoError(t, err)

	for _, e := range bus.events {
		f.trigger.Handle(ctx, e)
	}

	admin := f.adminNotifications(t)
	require.Len(t, admin, 1)
	assert.Equal(t, "ana", admin[0].Extra["userName"])
	assert.NotContains(t, admin[0].Document(), "userId")
	assert.NoError(t, admin[0].Validate())

	user := f.userNotifications(t, "u1")
	require.Len(t, user, 1)
	assert.Equal(t, domain.PaymentStatusRejected, user[0].Extra["status"])
}

func TestDiskUploader(t *testing.T) {
	dir := t.TempDir()
	up := NewDiskUploader(dir, "http://localhost:3001/")

	url, thumb, err := up.UploadImage(context.Background(), receipt(), "receipts/u1", "../r1.png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001/receipts/receipts/u1/r1.png", url)
	assert.Equal(t, url, thumb)

	b, err := os.ReadFile(filepath.Join(dir, "receipts", "u1", "r1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake receipt"), b)
}
