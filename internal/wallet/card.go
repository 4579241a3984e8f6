package wallet

import (
	"encoding/json"
	"fmt"
	"time"

	"hotspot/pkg/credits"
)

const (
	Issuer   = "WiFi Zone"
	CardName = "WiFi Access Card"
)

// Kind selects one of the JSON-described (non-Apple) wallet cards.
type Kind string

const (
	KindGoogle  Kind = "google"
	KindSamsung Kind = "samsung"
	KindGeneric Kind = "generic"
)

type kindSpec struct {
	tag          string
	label        string
	instructions []string
}

// None of these kinds talk to a wallet provider; the card is returned to the
// client together with manual import steps.
var kinds = map[Kind]kindSpec{
	KindGoogle: {
		tag:   "google_pay",
		label: "Google Pay",
		instructions: []string{
			"Abra la aplicación Google Wallet en su teléfono",
			"Toque \"Agregar a Wallet\" y elija \"Tarjeta de lealtad\"",
			"Escanee el código QR de esta tarjeta o ingrese el número de tarjeta",
			"Guarde la tarjeta para consultar su saldo de WiFi",
		},
	},
	KindSamsung: {
		tag:   "samsung_pay",
		label: "Samsung Pay",
		instructions: []string{
			"Abra la aplicación Samsung Wallet",
			"Seleccione \"Agregar\" y luego \"Tarjetas de membresía\"",
			"Escanee el código QR de esta tarjeta o ingrese el número de tarjeta",
			"Confirme para guardar su tarjeta WiFi",
		},
	},
	KindGeneric: {
		tag:   "generic_pass",
		label: "Tarjeta digital",
		instructions: []string{
			"Guarde una captura de pantalla de esta tarjeta",
			"Muestre el código QR en el punto de acceso cuando se le solicite",
			"Consulte su saldo actualizado desde el portal WiFi",
		},
	},
}

// ParseKind accepts the kind names and their route aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "google", "google-pay", "google_pay":
		return KindGoogle, nil
	case "samsung", "samsung-pay", "samsung_pay":
		return KindSamsung, nil
	case "generic", "generic-pass", "generic_pass":
		return KindGeneric, nil
	}
	return "", fmt.Errorf("unknown wallet kind %q", s)
}

// Label is the provider name shown in responses.
func (k Kind) Label() string { return kinds[k].label }

// Instructions returns the ordered manual import steps for the kind.
func (k Kind) Instructions() []string {
	src := kinds[k].instructions
	out := make([]string, len(src))
	copy(out, src)
	return out
}

type Card struct {
	Type         string          `json:"type"`
	Issuer       string          `json:"issuer"`
	CardName     string          `json:"cardName"`
	AccountID    string          `json:"accountId"`
	AccountEmail string          `json:"accountEmail"`
	Credits      credits.Credits `json:"credits"`
	Balance      string          `json:"balance"`
	Status       string          `json:"status"`
	CardNumber   string          `json:"cardNumber"`
	ExpiryDate   string          `json:"expiryDate"`
	Timestamp    string          `json:"timestamp"`
	QRPayload    string          `json:"qrPayload"`
	QRCode       string          `json:"qrCode,omitempty"`
}

// CardNumber is the last 8 characters of the user id, or the whole id when shorter.
func CardNumber(userID string) string {
	if len(userID) <= 8 {
		return userID
	}
	return userID[len(userID)-8:]
}

type qrContent struct {
	UID       string          `json:"uid"`
	Email     string          `json:"email"`
	Credits   credits.Credits `json:"credits"`
	Timestamp string          `json:"timestamp"`
}

// QRPayload is the JSON string embedded in every pass barcode.
func QRPayload(userID, email string, c credits.Credits, now time.Time) string {
	b, _ := json.Marshal(qrContent{
		UID:       userID,
		Email:     email,
		Credits:   c,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	})
	return string(b)
}

// BuildCard assembles the card record for kind, including a rendered QR
// code of the payload. It performs no I/O.
func BuildCard(kind Kind, userID, email string, c credits.Credits, now time.Time) (*Card, error) {
	ks, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown wallet kind %q", kind)
	}
	payload := QRPayload(userID, email, c, now)
	code, err := QRDataURL(payload)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return &Card{
		Type:         ks.tag,
		Issuer:       Issuer,
		CardName:     CardName,
		AccountID:    userID,
		AccountEmail: email,
		Credits:      c,
		Balance:      c.Format(),
		Status:       c.Tier(),
		CardNumber:   CardNumber(userID),
		ExpiryDate:   now.AddDate(0, 0, 365).Format("2006-01-02"),
		Timestamp:    now.UTC().Format(time.RFC3339Nano),
		QRPayload:    payload,
		QRCode:       code,
	}, nil
}
