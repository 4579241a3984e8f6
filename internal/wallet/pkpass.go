package wallet

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// PassField is one key/label/value entry on the pass face.
type PassField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// PassContent describes a store-card pass before it is packaged.
type PassContent struct {
	SerialNumber     string
	Description      string
	OrganizationName string
	LogoText         string
	BarcodeMessage   string
	Primary          []PassField
	Secondary        []PassField
	Auxiliary        []PassField
}

// PassIdentity carries the Apple developer identifiers written into pass.json.
type PassIdentity struct {
	TeamID     string
	PassTypeID string
}

type passBarcode struct {
	Format          string `json:"format"`
	Message         string `json:"message"`
	MessageEncoding string `json:"messageEncoding"`
}

type passStructure struct {
	PrimaryFields   []PassField `json:"primaryFields,omitempty"`
	SecondaryFields []PassField `json:"secondaryFields,omitempty"`
	AuxiliaryFields []PassField `json:"auxiliaryFields,omitempty"`
}

type passJSON struct {
	FormatVersion      int           `json:"formatVersion"`
	PassTypeIdentifier string        `json:"passTypeIdentifier"`
	TeamIdentifier     string        `json:"teamIdentifier"`
	SerialNumber       string        `json:"serialNumber"`
	OrganizationName   string        `json:"organizationName"`
	Description        string        `json:"description"`
	LogoText           string        `json:"logoText,omitempty"`
	ForegroundColor    string        `json:"foregroundColor"`
	BackgroundColor    string        `json:"backgroundColor"`
	LabelColor         string        `json:"labelColor"`
	Barcode            passBarcode   `json:"barcode"`
	Barcodes           []passBarcode `json:"barcodes"`
	StoreCard          passStructure `json:"storeCard"`
}

func marshalPass(id PassIdentity, c *PassContent) ([]byte, error) {
	bc := passBarcode{Format: "PKBarcodeFormatQR", Message: c.BarcodeMessage, MessageEncoding: "iso-8859-1"}
	return json.Marshal(passJSON{
		FormatVersion:      1,
		PassTypeIdentifier: id.PassTypeID,
		TeamIdentifier:     id.TeamID,
		SerialNumber:       c.SerialNumber,
		OrganizationName:   c.OrganizationName,
		Description:        c.Description,
		LogoText:           c.LogoText,
		ForegroundColor:    "rgb(255, 255, 255)",
		BackgroundColor:    "rgb(25, 118, 210)",
		LabelColor:         "rgb(187, 222, 251)",
		Barcode:            bc,
		Barcodes:           []passBarcode{bc},
		StoreCard: passStructure{
			PrimaryFields:   c.Primary,
			SecondaryFields: c.Secondary,
			AuxiliaryFields: c.Auxiliary,
		},
	})
}

// loadTemplate reads the image assets (icon.png, logo.png, ...) of a pass template folder.
func loadTemplate(dir string) (map[string][]byte, error) {
	files := make(map[string][]byte)
	if dir == "" {
		return files, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == "pass.json" || e.Name() == "manifest.json" || e.Name() == "signature" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		files[e.Name()] = b
	}
	return files, nil
}

func manifest(files map[string][]byte) ([]byte, error) {
	m := make(map[string]string, len(files))
	for name, b := range files {
		sum := sha1.Sum(b)
		m[name] = hex.EncodeToString(sum[:])
	}
	return json.Marshal(m)
}

func zipFiles(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
