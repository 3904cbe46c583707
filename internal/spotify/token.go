package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// TokenData is the on-disk form of an OAuth token.
type TokenData struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

func tokenDataOf(tok *oauth2.Token) TokenData {
	return TokenData{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

func (d TokenData) oauth() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		TokenType:    d.TokenType,
		Expiry:       d.Expiry,
	}
}

// readTokenFile returns fs.ErrNotExist when nothing has been stored yet.
func readTokenFile(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, err
	}
	var data TokenData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	return data.oauth(), nil
}

// writeTokenFile replaces path atomically through a sibling .tmp file.
func writeTokenFile(path string, tok *oauth2.Token) error {
	raw, err := json.MarshalIndent(tokenDataOf(tok), "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// loadToken reads the persisted token into c.token and reports whether one
// was found.
func (c *Client) loadToken() bool {
	if c.tokenFile == "" {
		return false
	}

	tok, err := readTokenFile(c.tokenFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false
	case err != nil:
		c.logger.WithError(err).Debug("Ignoring unreadable token file")
		return false
	}

	c.tokenMu.Lock()
	c.token = tok
	c.tokenMu.Unlock()
	return true
}

// saveTokenUnsafe persists c.token. The caller must hold tokenMu.
func (c *Client) saveTokenUnsafe() error {
	if c.tokenFile == "" || c.token == nil {
		return nil
	}
	return writeTokenFile(c.tokenFile, c.token)
}
