package install

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// secretKeyName is the env-file key the application secret is stored
// under.
const secretKeyName = "APP_KEY"

// secretBytes is the entropy of a generated secret.
const secretBytes = 32

// SecretWriter persists generated secrets into the application's
// environment file.
type SecretWriter interface {
	Set(key, value string)
	Save() error
}

// GenerateSecret produces a fresh application secret and persists it via
// the configured SecretWriter. Every call rotates the secret, so callers
// must invoke it at most once per install run.
func (m *Manager) GenerateSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	secret := "base64:" + base64.StdEncoding.EncodeToString(raw)

	if m.secrets != nil {
		m.secrets.Set(secretKeyName, secret)
		if err := m.secrets.Save(); err != nil {
			return "", fmt.Errorf("persist secret: %w", err)
		}
	}

	return secret, nil
}
