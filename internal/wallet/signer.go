package wallet

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mozilla.org/pkcs7"
	"software.sslmate.com/src/go-pkcs12"
)

// Signer turns pass content into a packaged .pkpass archive.
type Signer interface {
	Sign(ctx context.Context, content *PassContent) ([]byte, error)
}

// CertificateConfig locates the Pass Type ID certificate bundle.
type CertificateConfig struct {
	CertPath     string // .p12 with certificate and private key
	CertPassword string
	WWDRPath     string // Apple WWDR intermediate, PEM or DER
	TemplateDir  string
	Identity     PassIdentity
}

// CertSigner signs passes with a PKCS#7 detached signature over manifest.json.
// The bundle is read on every call so rotated certificates take effect without a restart.
type CertSigner struct {
	cfg CertificateConfig
	now func() time.Time
}

func NewCertSigner(cfg CertificateConfig) *CertSigner {
	return &CertSigner{cfg: cfg, now: time.Now}
}

func signingErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSigning, fmt.Sprintf(format, args...))
}

func (s *CertSigner) loadBundle() (interface{}, *x509.Certificate, *x509.Certificate, error) {
	p12, err := os.ReadFile(s.cfg.CertPath)
	if err != nil {
		return nil, nil, nil, signingErr("read certificate: %v", err)
	}
	key, cert, _, err := pkcs12.DecodeChain(p12, s.cfg.CertPassword)
	if err != nil {
		return nil, nil, nil, signingErr("decode certificate: %v", err)
	}
	now := s.now()
	if now.After(cert.NotAfter) || now.Before(cert.NotBefore) {
		return nil, nil, nil, signingErr("certificate not valid at %s", now.Format(time.RFC3339))
	}
	raw, err := os.ReadFile(s.cfg.WWDRPath)
	if err != nil {
		return nil, nil, nil, signingErr("read WWDR certificate: %v", err)
	}
	if block, _ := pem.Decode(raw); block != nil {
		raw = block.Bytes
	}
	wwdr, err := x509.ParseCertificate(raw)
	if err != nil {
		return nil, nil, nil, signingErr("parse WWDR certificate: %v", err)
	}
	return key, cert, wwdr, nil
}

func (s *CertSigner) Sign(ctx context.Context, content *PassContent) ([]byte, error) {
	key, cert, wwdr, err := s.loadBundle()
	if err != nil {
		return nil, err
	}
	files, err := loadTemplate(s.cfg.TemplateDir)
	if err != nil {
		return nil, signingErr("load template: %v", err)
	}
	pass, err := marshalPass(s.cfg.Identity, content)
	if err != nil {
		return nil, err
	}
	files["pass.json"] = pass
	mf, err := manifest(files)
	if err != nil {
		return nil, err
	}
	files["manifest.json"] = mf

	sd, err := pkcs7.NewSignedData(mf)
	if err != nil {
		return nil, signingErr("prepare signature: %v", err)
	}
	if err := sd.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, signingErr("add signer: %v", err)
	}
	sd.AddCertificate(wwdr)
	sd.Detach()
	sig, err := sd.Finish()
	if err != nil {
		return nil, signingErr("finish signature: %v", err)
	}
	files["signature"] = sig
	return zipFiles(files)
}

// MockSigner packages an unsigned pass; wallets reject it but it exercises
// the full flow on machines without Apple certificates.
type MockSigner struct {
	Identity PassIdentity
}

func (m MockSigner) Sign(ctx context.Context, content *PassContent) ([]byte, error) {
	if content == nil {
		return nil, errors.New("nil pass content")
	}
	pass, err := marshalPass(m.Identity, content)
	if err != nil {
		return nil, err
	}
	files := map[string][]byte{"pass.json": pass}
	mf, err := manifest(files)
	if err != nil {
		return nil, err
	}
	files["manifest.json"] = mf
	return zipFiles(files)
}
