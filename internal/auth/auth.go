package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/gcal"
)

const (
	// SessionDuration is how long session tokens are valid
	SessionDuration = 30 * 24 * time.Hour // 30 days
)

// Service connects Google accounts and issues session tokens
type Service struct {
	db     *database.DB
	config *oauth2.Config
	logger *zap.Logger

	// userinfoOptions points the profile lookup somewhere else in tests
	userinfoOptions []option.ClientOption
}

// NewService creates a new authentication service
func NewService(db *database.DB, oauthConfig *oauth2.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     db,
		config: oauthConfig,
		logger: logger,
	}
}

// GetAuthURL returns the Google consent URL
func (s *Service) GetAuthURL(state string) string {
	return gcal.AuthURL(s.config, state)
}

// GetOAuthConfig returns the OAuth config for use by other packages
func (s *Service) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Connect exchanges an OAuth code, finds or creates the user by their Google
// email, stores the encrypted token and returns a new session token
func (s *Service) Connect(ctx context.Context, code string, deviceInfo string) (*User, string, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange code: %w", err)
	}

	info, err := s.getGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user info: %w", err)
	}
	if info.Email == "" {
		return nil, "", fmt.Errorf("failed to get user info: google returned no email")
	}

	dbUser, err := s.db.GetOrCreateUser(info.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to upsert user: %w", err)
	}

	if err := s.db.SaveGoogleToken(dbUser.ID, token, dbUser.Email, s.config.Scopes); err != nil {
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	sessionToken, err := s.createSession(dbUser.ID, deviceInfo)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("google account connected",
		zap.Int64("user_id", dbUser.ID),
		zap.String("email", dbUser.Email))

	return fromDBUser(dbUser), sessionToken, nil
}

// getGoogleUserInfo fetches the user's profile from Google
func (s *Service) getGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*goauth2.Userinfo, error) {
	client := s.config.Client(ctx, token)
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.userinfoOptions...)

	oauth2Service, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return oauth2Service.Userinfo.Get().Context(ctx).Do()
}

// GetUserScopes returns the scopes a user has granted; nil when no token is stored
func (s *Service) GetUserScopes(userID int64) ([]string, error) {
	return s.db.GoogleTokenScopes(userID)
}

// IsConnected reports whether the user granted every scope the providers need
func (s *Service) IsConnected(userID int64) (bool, error) {
	scopes, err := s.GetUserScopes(userID)
	if err != nil {
		return false, err
	}

	granted := make(map[string]bool, len(scopes))
	for _, scope := range scopes {
		granted[scope] = true
	}
	for _, required := range gcal.OAuthScopes {
		if !granted[required] {
			return false, nil
		}
	}
	return true, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// createSession creates a new session for a user
func (s *Service) createSession(userID int64, deviceInfo string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	expiresAt := time.Now().Add(SessionDuration)

	_, err := s.db.Exec(`
		INSERT INTO user_sessions (user_id, token_hash, expires_at, device_info)
		VALUES (?, ?, ?, ?)
	`, userID, hashToken(token), expiresAt, deviceInfo)
	if err != nil {
		return "", err
	}

	return token, nil
}

// ValidateSession validates a session token and returns the user
func (s *Service) ValidateSession(token string) (*User, error) {
	tokenHash := hashToken(token)

	var user User
	var name, timezone sql.NullString
	var expiresAt time.Time

	err := s.db.QueryRow(`
		SELECT u.id, u.email, u.name, u.timezone, s.expires_at
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token_hash = ?
	`, tokenHash).Scan(&user.ID, &user.Email, &name, &timezone, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invalid session")
	} else if err != nil {
		return nil, err
	}

	if time.Now().After(expiresAt) {
		s.db.Exec(`DELETE FROM user_sessions WHERE token_hash = ?`, tokenHash)
		return nil, fmt.Errorf("session expired")
	}

	user.Name = name.String
	user.Timezone = timezone.String
	return &user, nil
}

// Logout invalidates a session token
func (s *Service) Logout(token string) error {
	_, err := s.db.Exec(`DELETE FROM user_sessions WHERE token_hash = ?`, hashToken(token))
	return err
}

// CleanupExpiredSessions removes all expired sessions
func (s *Service) CleanupExpiredSessions() error {
	_, err := s.db.Exec(`DELETE FROM user_sessions WHERE expires_at < ?`, time.Now())
	return err
}

func fromDBUser(u *database.User) *User {
	user := &User{ID: u.ID, Email: u.Email, Timezone: u.Timezone}
	if u.Name != nil {
		user.Name = *u.Name
	}
	return user
}
