package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// tokenAEAD builds the AES-256-GCM cipher that seals stored OAuth tokens.
// The key comes from PLANIT_ENCRYPTION_KEY, else from whichever completion
// API key is configured.
func tokenAEAD() (cipher.AEAD, error) {
	var secret string
	switch {
	case os.Getenv("PLANIT_ENCRYPTION_KEY") != "":
		secret = os.Getenv("PLANIT_ENCRYPTION_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		secret = "planit-encryption-" + os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("GEMINI_API_KEY") != "":
		secret = "planit-encryption-" + os.Getenv("GEMINI_API_KEY")
	default:
		return nil, fmt.Errorf("no encryption key available: set PLANIT_ENCRYPTION_KEY")
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// seal returns nonce || ciphertext
func seal(aead cipher.AEAD, plaintext string) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

func open(aead cipher.AEAD, sealed []byte) (string, error) {
	n := aead.NonceSize()
	if len(sealed) < n {
		return "", fmt.Errorf("ciphertext too short")
	}
	plaintext, err := aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

func expiryOf(token *oauth2.Token) *time.Time {
	if token.Expiry.IsZero() {
		return nil
	}
	return &token.Expiry
}

// GetGoogleToken returns the stored token for a user, or nil when the user never connected
func (d *DB) GetGoogleToken(userID int64) (*oauth2.Token, error) {
	var access, refresh []byte
	var tokenType string
	var expiry sql.NullTime

	err := d.QueryRow(`
		SELECT access_token_encrypted, refresh_token_encrypted, token_type, expiry
		FROM google_tokens WHERE user_id = ?
	`, userID).Scan(&access, &refresh, &tokenType, &expiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get google token: %w", err)
	}

	aead, err := tokenAEAD()
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{TokenType: tokenType}
	if token.AccessToken, err = open(aead, access); err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	if token.RefreshToken, err = open(aead, refresh); err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}
	return token, nil
}

// SaveGoogleToken stores the token granted at consent time, replacing any earlier grant
func (d *DB) SaveGoogleToken(userID int64, token *oauth2.Token, email string, scopes []string) error {
	aead, err := tokenAEAD()
	if err != nil {
		return err
	}
	access, err := seal(aead, token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refresh, err := seal(aead, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	scopesJSON, err := json.Marshal(scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}

	_, err = d.Exec(`
		INSERT INTO google_tokens (user_id, access_token_encrypted, refresh_token_encrypted, token_type, expiry, scopes, email, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token_encrypted = excluded.access_token_encrypted,
			refresh_token_encrypted = excluded.refresh_token_encrypted,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			scopes = excluded.scopes,
			email = excluded.email,
			updated_at = CURRENT_TIMESTAMP
	`, userID, access, refresh, token.TokenType, expiryOf(token), string(scopesJSON), email)
	if err != nil {
		return fmt.Errorf("failed to save google token: %w", err)
	}
	return nil
}

// UpdateGoogleToken persists a refreshed token. Google usually omits the
// refresh token on refresh, in which case the stored one is kept.
func (d *DB) UpdateGoogleToken(userID int64, token *oauth2.Token) error {
	aead, err := tokenAEAD()
	if err != nil {
		return err
	}
	access, err := seal(aead, token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	var result sql.Result
	if token.RefreshToken == "" {
		result, err = d.Exec(`
			UPDATE google_tokens SET access_token_encrypted = ?, expiry = ?, updated_at = CURRENT_TIMESTAMP
			WHERE user_id = ?
		`, access, expiryOf(token), userID)
	} else {
		var refresh []byte
		if refresh, err = seal(aead, token.RefreshToken); err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		result, err = d.Exec(`
			UPDATE google_tokens SET access_token_encrypted = ?, refresh_token_encrypted = ?, expiry = ?, updated_at = CURRENT_TIMESTAMP
			WHERE user_id = ?
		`, access, refresh, expiryOf(token), userID)
	}
	if err != nil {
		return fmt.Errorf("failed to update google token: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update google token: no token stored for user %d", userID)
	}
	return nil
}

// GoogleTokenScopes returns the scopes granted with the stored token; nil when none is stored
func (d *DB) GoogleTokenScopes(userID int64) ([]string, error) {
	var raw sql.NullString
	err := d.QueryRow(`SELECT scopes FROM google_tokens WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token scopes: %w", err)
	}
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil, nil
	}

	var scopes []string
	if err := json.Unmarshal([]byte(raw.String), &scopes); err != nil {
		return nil, fmt.Errorf("failed to decode token scopes: %w", err)
	}
	return scopes, nil
}
