package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const tokenFileName = "token.json"

type pairing struct {
	CoreID string `json:"core_id"`
	Token  string `json:"token"`
}

// LoadToken returns the stored pairing token for the given core, or
// empty when there is none yet or it belongs to a different core.
func LoadToken(coreID string) (string, error) {
	path, err := xdg.DataFile(filepath.Join(appName, tokenFileName))
	if err != nil {
		return "", fmt.Errorf("resolve token path: %w", err)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	var p pairing
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("parse token file %s: %w", path, err)
	}
	if coreID != "" && p.CoreID != "" && p.CoreID != coreID {
		return "", nil
	}
	return p.Token, nil
}

// SaveToken persists the pairing token so the next run skips the
// approval prompt on the core.
func SaveToken(coreID, token string) error {
	path, err := xdg.DataFile(filepath.Join(appName, tokenFileName))
	if err != nil {
		return fmt.Errorf("resolve token path: %w", err)
	}
	data, err := json.MarshalIndent(pairing{CoreID: coreID, Token: token}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
