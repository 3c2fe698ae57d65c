package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/PlayerIUnknown/aegis-gui/internal/config"
	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/logging"
)

const (
	envToken    = "AEGIS_TOKEN"
	envEmail    = "AEGIS_EMAIL"
	envPassword = "AEGIS_PASSWORD"
)

var errNoCredentials = errors.New("no credentials: set " + envToken + ", or " + envEmail + " and " + envPassword + ", or pass --email")

func newAPIClient(cfg config.Config, logger *slog.Logger) (*configapi.Client, error) {
	return configapi.New(cfg.ConfigAPIURL,
		configapi.WithTimeout(cfg.ConfigAPITimeout),
		configapi.WithRetryMax(cfg.ConfigAPIRetries),
		configapi.WithLogger(logger),
	)
}

type credentials struct {
	Token    string
	Email    string
	Password string
}

// credentialSource resolves CLI credentials from flags, the environment, and
// an interactive prompt.
type credentialSource struct {
	email    string
	getenv   func(string) string
	prompt   func(label string) (string, error)
	terminal bool
}

func newCredentialSource(cmd *cobra.Command, email string) credentialSource {
	fd := int(os.Stdin.Fd())
	return credentialSource{
		email:    email,
		getenv:   os.Getenv,
		terminal: term.IsTerminal(fd),
		prompt: func(label string) (string, error) {
			cmd.PrintErr(label)
			raw, err := term.ReadPassword(fd)
			cmd.PrintErrln()
			return string(raw), err
		},
	}
}

func (s credentialSource) resolve() (credentials, error) {
	if token := strings.TrimSpace(s.getenv(envToken)); token != "" && s.email == "" {
		return credentials{Token: token}, nil
	}

	email := auth.NormalizeEmail(s.email)
	if email == "" {
		email = auth.NormalizeEmail(s.getenv(envEmail))
	}
	if email == "" {
		return credentials{}, errNoCredentials
	}

	password := s.getenv(envPassword)
	if password == "" {
		if !s.terminal || s.prompt == nil {
			return credentials{}, errors.New(envPassword + " is required when stdin is not a terminal")
		}
		var err error
		if password, err = s.prompt("Password: "); err != nil {
			return credentials{}, err
		}
	}
	if strings.TrimSpace(password) == "" {
		return credentials{}, errors.New("password is empty")
	}
	return credentials{Email: email, Password: password}, nil
}

type loginClient interface {
	Login(ctx context.Context, email, password string) (configapi.AuthResponse, error)
}

// accessToken returns creds.Token or exchanges the email and password for one.
func accessToken(ctx context.Context, api loginClient, creds credentials) (string, error) {
	if creds.Token != "" {
		return creds.Token, nil
	}
	resp, err := api.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return "", errors.New("config api returned an empty access token")
	}
	return resp.AccessToken, nil
}

// signedInClient loads config, builds a client, and authenticates it.
func signedInClient(ctx context.Context, cmd *cobra.Command, email string) (*configapi.Client, config.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, "", err
	}
	creds, err := newCredentialSource(cmd, email).resolve()
	if err != nil {
		return nil, cfg, "", &exitError{code: exitCodeUsage, err: err}
	}
	api, err := newAPIClient(cfg, logging.Discard())
	if err != nil {
		return nil, cfg, "", err
	}
	token, err := accessToken(ctx, api, creds)
	if err != nil {
		return nil, cfg, "", err
	}
	return api, cfg, token, nil
}
