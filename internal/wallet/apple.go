package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"hotspot/pkg/credits"
)

var (
	// ErrSigning means the certificate bundle or passphrase could not produce a signature.
	ErrSigning = errors.New("pass signing failed")
	// ErrIO means the signed pass could not be written to the content directory.
	ErrIO = errors.New("pass storage failed")
	// ErrInvalidUserID means the user id cannot be used in a pass filename.
	ErrInvalidUserID = errors.New("invalid user id")
)

const PassContentType = "application/vnd.apple.pkpass"

type ApplePass struct {
	Filename string `json:"filename"`
	URL      string `json:"passUrl"`
	Size     int    `json:"size"`
}

// AppleGenerator signs store-card passes and stores them under ContentDir.
type AppleGenerator struct {
	signer     Signer
	contentDir string
	baseURL    string
	now        func() time.Time
}

func NewAppleGenerator(signer Signer, contentDir, baseURL string) *AppleGenerator {
	return &AppleGenerator{
		signer:     signer,
		contentDir: contentDir,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// ContentDir is where generated passes are served from.
func (g *AppleGenerator) ContentDir() string { return g.contentDir }

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidUserID reports whether id is safe to embed in a pass filename.
func ValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// PassFilename is wifi-card-{userId}-{unixMillis}.pkpass.
func PassFilename(userID string, t time.Time) string {
	return fmt.Sprintf("wifi-card-%s-%d.pkpass", userID, t.UnixMilli())
}

func appleContent(userID, email string, c credits.Credits, now time.Time) *PassContent {
	return &PassContent{
		SerialNumber:     fmt.Sprintf("%s-%d", userID, now.UnixMilli()),
		Description:      CardName,
		OrganizationName: Issuer,
		LogoText:         Issuer,
		BarcodeMessage:   QRPayload(userID, email, c, now),
		Primary: []PassField{
			{Key: "balance", Label: "CRÉDITOS", Value: c.Format()},
		},
		Secondary: []PassField{
			{Key: "status", Label: "ESTADO", Value: c.Tier()},
			{Key: "email", Label: "CUENTA", Value: email},
		},
		Auxiliary: []PassField{
			{Key: "cardType", Label: "TIPO", Value: "VIRTUAL"},
			{Key: "access", Label: "ACCESO", Value: "WiFi + High Speed"},
		},
	}
}

// Generate signs a pass for the user and writes it to the content directory.
// Nothing is written when signing fails.
func (g *AppleGenerator) Generate(ctx context.Context, userID, email string, c credits.Credits) (*ApplePass, error) {
	if !ValidUserID(userID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	now := g.now()
	name := PassFilename(userID, now)
	target, err := g.passPath(name)
	if err != nil {
		return nil, err
	}
	data, err := g.signer.Sign(ctx, appleContent(userID, email, c, now))
	if err != nil {
		if errors.Is(err, ErrSigning) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	if err := os.MkdirAll(g.contentDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return &ApplePass{
		Filename: name,
		URL:      g.baseURL + "/passes/" + name,
		Size:     len(data),
	}, nil
}

// passPath joins name onto the content directory and refuses any result that
// lands outside it.
func (g *AppleGenerator) passPath(name string) (string, error) {
	root, err := filepath.Abs(g.contentDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	target := filepath.Join(root, name)
	if filepath.Dir(target) != root {
		return "", fmt.Errorf("%w: %q escapes the content directory", ErrInvalidUserID, name)
	}
	return target, nil
}
