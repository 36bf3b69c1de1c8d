package gcal

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	goauth2 "google.golang.org/api/oauth2/v2"
)

const (
	oauthCallbackPort = 8089
	callbackPath      = "/oauth/callback"
)

// getOAuthCallbackURL returns the OAuth callback URL, using PLANIT_BASE_URL if set
func getOAuthCallbackURL() string {
	if baseURL := os.Getenv("PLANIT_BASE_URL"); baseURL != "" {
		return baseURL + callbackPath
	}
	return fmt.Sprintf("http://localhost:%d%s", oauthCallbackPort, callbackPath)
}

// OAuthScopes covers events (Meet links ride on events), Gmail drafts and
// the account email used to identify the user. One consent grants all of them.
var OAuthScopes = []string{
	goauth2.UserinfoEmailScope,
	calendar.CalendarEventsScope,
	gmail.GmailComposeScope,
}

// LoadOAuthConfig loads OAuth2 configuration from the environment or a credentials file
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	// Container deployments pass the JSON directly
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); credJSON != "" {
		config, err := google.ConfigFromJSON([]byte(credJSON), OAuthScopes...)
		if err == nil {
			config.RedirectURL = getOAuthCallbackURL()
			return config, nil
		}
	}

	if credentialsFile != "" {
		if config, err := loadConfigFromFile(credentialsFile); err == nil {
			return config, nil
		}
	}

	if config, err := loadConfigFromFile("./credentials.json"); err == nil {
		return config, nil
	}

	return nil, fmt.Errorf("no credentials file found - please provide credentials.json or set GOOGLE_CREDENTIALS_JSON env var")
}

// AuthURL returns the consent URL. Offline access is required for a refresh token.
func AuthURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// loadConfigFromFile attempts to load OAuth config from a file
func loadConfigFromFile(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(data, OAuthScopes...)
	if err != nil {
		return nil, err
	}

	config.RedirectURL = getOAuthCallbackURL()
	return config, nil
}
