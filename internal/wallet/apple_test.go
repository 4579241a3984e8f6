package wallet

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hotspot/pkg/credits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSigner struct{ err error }

func (f failingSigner) Sign(context.Context, *PassContent) ([]byte, error) { return nil, f.err }

func fixedGenerator(signer Signer, dir string) *AppleGenerator {
	g := NewAppleGenerator(signer, dir, "https://wifi.example.com/")
	g.now = func() time.Time { return time.UnixMilli(1767225600123) }
	return g
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = b
	}
	return out
}

func TestGenerateWithMockSigner(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "passes")
	g := fixedGenerator(MockSigner{Identity: PassIdentity{TeamID: "TEAM", PassTypeID: "pass.com.example.wifi"}}, dir)

	pass, err := g.Generate(context.Background(), "user-1", "ana@example.com", credits.Credits{Hours: 2, Minutes: 0})
	require.NoError(t, err)
	assert.Equal(t, "wifi-card-user-1-1767225600123.pkpass", pass.Filename)
	assert.Equal(t, "https://wifi.example.com/passes/wifi-card-user-1-1767225600123.pkpass", pass.URL)

	data, err := os.ReadFile(filepath.Join(dir, pass.Filename))
	require.NoError(t, err)
	files := readZip(t, data)
	require.Contains(t, files, "pass.json")
	require.Contains(t, files, "manifest.json")

	var pj map[string]interface{}
	require.NoError(t, json.Unmarshal(files["pass.json"], &pj))
	assert.Equal(t, "pass.com.example.wifi", pj["passTypeIdentifier"])
	barcode := pj["barcode"].(map[string]interface{})
	assert.Equal(t, "PKBarcodeFormatQR", barcode["format"])
	assert.Equal(t, "iso-8859-1", barcode["messageEncoding"])
	assert.Contains(t, barcode["message"], `"uid":"user-1"`)

	card := pj["storeCard"].(map[string]interface{})
	primary := card["primaryFields"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "2h", primary["value"])
	secondary := card["secondaryFields"].([]interface{})
	assert.Equal(t, credits.TierGood, secondary[0].(map[string]interface{})["value"])
	auxiliary := card["auxiliaryFields"].([]interface{})
	assert.Equal(t, "VIRTUAL", auxiliary[0].(map[string]interface{})["value"])
	assert.Equal(t, "WiFi + High Speed", auxiliary[1].(map[string]interface{})["value"])
}

func TestGenerateInvalidCertificateWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	certPath := filepath.Join(tmp, "pass.p12")
	wwdrPath := filepath.Join(tmp, "wwdr.pem")
	require.NoError(t, os.WriteFile(certPath, []byte("not a pkcs12 bundle"), 0o600))
	require.NoError(t, os.WriteFile(wwdrPath, []byte("not a certificate"), 0o600))

	dir := filepath.Join(tmp, "passes")
	g := fixedGenerator(NewCertSigner(CertificateConfig{
		CertPath:     certPath,
		CertPassword: "wrong",
		WWDRPath:     wwdrPath,
	}), dir)

	_, err := g.Generate(context.Background(), "user-1", "ana@example.com", credits.Credits{Hours: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSigning))
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "content directory must not be created")
}

func TestGenerateMissingCertificate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "passes")
	g := fixedGenerator(NewCertSigner(CertificateConfig{CertPath: filepath.Join(dir, "missing.p12")}), dir)
	_, err := g.Generate(context.Background(), "u", "e", credits.Credits{})
	assert.True(t, errors.Is(err, ErrSigning))
}

func TestGenerateWrapsSignerErrors(t *testing.T) {
	dir := t.TempDir()
	g := fixedGenerator(failingSigner{err: errors.New("boom")}, dir)
	_, err := g.Generate(context.Background(), "u", "e", credits.Credits{})
	assert.True(t, errors.Is(err, ErrSigning))
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestGenerateUnwritableDirectory(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	g := fixedGenerator(MockSigner{}, filepath.Join(blocker, "passes"))
	_, err := g.Generate(context.Background(), "u", "e", credits.Credits{})
	assert.True(t, errors.Is(err, ErrIO))
}

func TestGenerateRejectsTraversalUserID(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "a", "passes")
	g := fixedGenerator(MockSigner{}, dir)

	for _, id := range []string{"x/../../../escaped", "../escaped", `..\escaped`, "a/b", "", ".."} {
		_, err := g.Generate(context.Background(), id, "e", credits.Credits{})
		assert.ErrorIs(t, err, ErrInvalidUserID, id)
	}

	var written []string
	require.NoError(t, filepath.WalkDir(tmp, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			written = append(written, path)
		}
		return err
	}))
	assert.Empty(t, written)
}

func TestPassPathStaysInContentDir(t *testing.T) {
	dir := t.TempDir()
	g := fixedGenerator(MockSigner{}, dir)

	p, err := g.passPath("wifi-card-u1-1.pkpass")
	require.NoError(t, err)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "wifi-card-u1-1.pkpass"), p)

	_, err = g.passPath("wifi-card-x/../../../escaped-1.pkpass")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestValidUserID(t *testing.T) {
	assert.True(t, ValidUserID("Xy3kP9aQ2mN8vL1cR5tW7zB4dF6h"))
	assert.True(t, ValidUserID("user_1-a"))
	assert.False(t, ValidUserID("a.b"))
	assert.False(t, ValidUserID("a/b"))
	assert.False(t, ValidUserID(""))
}
