package database

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"hotspot/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// ErrNoFirebaseCredentials means neither inline nor file credentials are configured.
var ErrNoFirebaseCredentials = errors.New("firebase credentials not configured")

func firebaseOption(cfg *config.FirebaseConfig) (option.ClientOption, error) {
	if cfg.CredentialsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode firebase credentials: %w", err)
		}
		return option.WithCredentialsJSON(decoded), nil
	}
	if cfg.CredentialsFile != "" {
		return option.WithCredentialsFile(cfg.CredentialsFile), nil
	}
	return nil, ErrNoFirebaseCredentials
}

// NewFirebaseApp initializes the Admin SDK. Base64 credentials win over the file.
func NewFirebaseApp(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	opt, err := firebaseOption(cfg)
	if err != nil {
		return nil, err
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

// NewFirestore opens the default database of the app's project.
func NewFirestore(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}
	return client, nil
}
