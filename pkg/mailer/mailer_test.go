package mailer

import (
	"errors"
	"testing"

	"hotspot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestSend(t *testing.T) {
	m := New(config.MailConfig{Host: "smtp.test", Username: "bot@wifi.zone"})
	d := &fakeDialer{}
	m.d = d

	require.NoError(t, m.Send("admin@wifi.zone", "Nuevo pago recibido", "ana envió un pago"))
	require.Len(t, d.sent, 1)
	msg := d.sent[0]
	assert.Equal(t, []string{"bot@wifi.zone"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"admin@wifi.zone"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Nuevo pago recibido"}, msg.GetHeader("Subject"))

	assert.Error(t, m.Send("", "s", "b"))
	d.err = errors.New("refused")
	assert.ErrorContains(t, m.Send("admin@wifi.zone", "s", "b"), "refused")
}
