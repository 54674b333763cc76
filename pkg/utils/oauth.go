package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jakechorley/timetabler/internal/config"
)

const (
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenDirName   = ".timetabler/tokens"
	tokenFilePerms = 0600
	tokenDirPerms  = 0700

	// ScopeSheets is the only Google scope the application asks for
	ScopeSheets = "https://www.googleapis.com/auth/spreadsheets"
)

// TokenStore persists OAuth tokens per environment and remembers the last valid one
type TokenStore struct {
	dir    string
	logger *zap.Logger

	mu     sync.Mutex
	cached *oauth2.Token
}

// NewTokenStore stores tokens under dir. An empty dir means ~/.timetabler/tokens.
func NewTokenStore(dir string, logger *zap.Logger) (*TokenStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, tokenDirName)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenStore{dir: dir, logger: logger}, nil
}

// GetOAuthConfig builds the Sheets OAuth config from the desktop client file
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	raw, err := json.Marshal(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth config: %w", err)
	}

	googleConfig, err := google.ConfigFromJSON(raw, ScopeSheets)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}
	googleConfig.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)

	return googleConfig, nil
}

func (s *TokenStore) path(env string) string {
	return filepath.Join(s.dir, fmt.Sprintf("token-%s.json", env))
}

// Load returns the saved token of an environment, or nil when none was saved
func (s *TokenStore) Load(env string) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path(env))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token of an environment, readable by the owner only
func (s *TokenStore) Save(env string, token *oauth2.Token) error {
	if err := os.MkdirAll(s.dir, tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path(env), data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the saved token of an environment and forgets the cached one
func (s *TokenStore) Delete(env string) error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	if err := os.Remove(s.path(env)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Token returns a usable token, refreshing a saved one when possible and otherwise
// running the browser consent flow. Only one flow runs at a time.
func (s *TokenStore) Token(ctx context.Context, oauthConfig *oauth2.Config, env string) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.cached.Valid() {
		return s.cached, nil
	}

	saved, err := s.Load(env)
	if err != nil {
		s.logger.Warn("Ignoring unreadable token file", zap.Error(err))
	}

	if saved != nil {
		if saved.Valid() {
			s.cached = saved
			return saved, nil
		}
		if saved.RefreshToken != "" {
			refreshed, err := oauthConfig.TokenSource(ctx, saved).Token()
			if err == nil {
				if err := s.Save(env, refreshed); err != nil {
					s.logger.Warn("Failed to save refreshed token", zap.Error(err))
				}
				s.logger.Debug("Refreshed OAuth token", zap.String("env", env))
				s.cached = refreshed
				return refreshed, nil
			}
			s.logger.Warn("Token refresh failed, starting a new authorization", zap.Error(err))
		}
	}

	authURL := oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("\nVisit this URL to authorize publishing to Google Sheets:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx, fmt.Sprintf(":%d", AuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := s.Save(env, token); err != nil {
		s.logger.Warn("Failed to save token", zap.Error(err))
	}
	s.cached = token
	return token, nil
}

// listenForAuthCallback serves the redirect target until a code arrives, the user gives
// up or ctx ends
func listenForAuthCallback(ctx context.Context, addr string) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			select {
			case errChan <- fmt.Errorf("no authorization code received"):
			default:
			}
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Authorization successful</h1><p>You can close this window.</p></body></html>`)

		select {
		case codeChan <- code:
		default:
		}
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- fmt.Errorf("server error: %w", err):
			default:
			}
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	var authErr error
	select {
	case code = <-codeChan:
	case authErr = <-errChan:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	return code, authErr
}
