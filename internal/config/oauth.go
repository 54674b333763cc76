package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// OAuthClientSecretEnv overrides the client secret of the OAuth client file, so the file can
// be shared without it
const OAuthClientSecretEnv = "TIMETABLER_OAUTH_CLIENT_SECRET"

// OAuthClientConfig is the client file downloaded from the Google Cloud console for the
// credentials used to publish timetables to Sheets. Exactly one of its sections is set.
type OAuthClientConfig struct {
	Installed *OAuthClient `json:"installed,omitempty"`
	Web       *OAuthClient `json:"web,omitempty"`
}

// OAuthClient holds the endpoints and credentials of a desktop or web client
type OAuthClient struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ProjectID               string   `json:"project_id" validate:"required"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url" validate:"required,url"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
}

// Client returns whichever section the file defines
func (c *OAuthClientConfig) Client() *OAuthClient {
	if c.Installed != nil {
		return c.Installed
	}
	return c.Web
}

func (c *OAuthClientConfig) check() error {
	if (c.Installed == nil) == (c.Web == nil) {
		return errors.New("file must define exactly one of the installed or web sections")
	}
	return validate.Struct(c)
}

// LoadOAuthClientWithEnv finds oauthClient.<env>.json (oauthClient.json without an env) in
// the current or home directory and loads it
func LoadOAuthClientWithEnv(env string) (*OAuthClientConfig, error) {
	path, err := findConfigFile(fileName("oauthClient", env, "json"))
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file: %w", err)
	}
	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath reads the client file at path. A secret set in
// TIMETABLER_OAUTH_CLIENT_SECRET replaces the one in the file before validation.
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	cfg := &OAuthClientConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file %s: %w", path, err)
	}

	if secret := os.Getenv(OAuthClientSecretEnv); secret != "" {
		if client := cfg.Client(); client != nil {
			client.ClientSecret = secret
		}
	}

	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("oauth client validation failed: %w", err)
	}
	return cfg, nil
}
