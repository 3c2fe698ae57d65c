package main

import (
	"context"
	"errors"
	"testing"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestCredentialSourceResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     credentialSource
		want    credentials
		wantErr bool
	}{
		{
			name: "token from env",
			src:  credentialSource{getenv: envMap(map[string]string{envToken: " tok "})},
			want: credentials{Token: "tok"},
		},
		{
			name: "email flag overrides token",
			src: credentialSource{
				email:  "Owner@Acme.Test",
				getenv: envMap(map[string]string{envToken: "tok", envPassword: "pw"}),
			},
			want: credentials{Email: "owner@acme.test", Password: "pw"},
		},
		{
			name: "email and password from env",
			src:  credentialSource{getenv: envMap(map[string]string{envEmail: "a@b.c", envPassword: "pw"})},
			want: credentials{Email: "a@b.c", Password: "pw"},
		},
		{
			name: "prompts on a terminal",
			src: credentialSource{
				email:    "a@b.c",
				getenv:   envMap(nil),
				terminal: true,
				prompt:   func(string) (string, error) { return "typed", nil },
			},
			want: credentials{Email: "a@b.c", Password: "typed"},
		},
		{
			name:    "no password without terminal",
			src:     credentialSource{email: "a@b.c", getenv: envMap(nil)},
			wantErr: true,
		},
		{
			name:    "nothing configured",
			src:     credentialSource{getenv: envMap(nil)},
			wantErr: true,
		},
		{
			name: "empty prompt",
			src: credentialSource{
				email:    "a@b.c",
				getenv:   envMap(nil),
				terminal: true,
				prompt:   func(string) (string, error) { return "  ", nil },
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.src.resolve()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("resolve() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

type stubLogin struct {
	resp  configapi.AuthResponse
	err   error
	calls int
}

func (s *stubLogin) Login(context.Context, string, string) (configapi.AuthResponse, error) {
	s.calls++
	return s.resp, s.err
}

func TestAccessToken(t *testing.T) {
	t.Parallel()

	stub := &stubLogin{resp: configapi.AuthResponse{AccessToken: "from-login"}}
	if got, err := accessToken(context.Background(), stub, credentials{Token: "direct"}); err != nil || got != "direct" {
		t.Fatalf("accessToken(token) = %q, %v", got, err)
	}
	if stub.calls != 0 {
		t.Fatalf("token credentials should not log in")
	}

	got, err := accessToken(context.Background(), stub, credentials{Email: "a@b.c", Password: "pw"})
	if err != nil || got != "from-login" {
		t.Fatalf("accessToken(login) = %q, %v", got, err)
	}

	empty := &stubLogin{}
	if _, err := accessToken(context.Background(), empty, credentials{Email: "a@b.c", Password: "pw"}); err == nil {
		t.Fatalf("expected error for empty access token")
	}

	failing := &stubLogin{err: &configapi.APIError{Status: 401, Message: "Invalid credentials"}}
	_, err = accessToken(context.Background(), failing, credentials{Email: "a@b.c", Password: "pw"})
	var apiErr *configapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid credentials" {
		t.Fatalf("expected API error, got %v", err)
	}
}
