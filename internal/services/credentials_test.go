package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/pkg/helpers"
)

type credFakeSecrets struct {
	values map[string]string
	err    error
	calls  int
}

func (f *credFakeSecrets) Get(ctx context.Context, secretID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[secretID]
	if !ok {
		return "", errs.NewNotFoundError("secret not found")
	}
	return v, nil
}

type credFakeDecrypter struct {
	err   error
	calls int
}

func (f *credFakeDecrypter) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "plain:" + ciphertext, nil
}

func testEndpoints() map[string]dto.BankEndpoints {
	return map[string]dto.BankEndpoints{
		"sandbox":    {OAuthURL: "https://oauth.sandbox.test/oauth/token", APIBaseURL: "https://api.sandbox.test"},
		"production": {OAuthURL: "https://oauth.prod.test/oauth/token", APIBaseURL: "https://api.prod.test"},
	}
}

// writeCerts creates the default certificate files of walletID under dir.
func writeCerts(t *testing.T, dir, walletID string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, walletID), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, walletID, n), []byte("pem"), 0o600); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
}

func linkedWallet() *models.Wallet {
	w := bankWallet()
	w.Metadata.Integration = &models.IntegrationHandle{
		ApplicationKey:      "cipher",
		ClientBasicSecretID: "bb-basic-uid-1-w1",
		Agency:              "1234",
		Account:             "98765",
	}
	return w
}

func TestCredentialResolverResolve(t *testing.T) {
	dir := t.TempDir()
	writeCerts(t, dir, "w1", defaultCertFile, defaultKeyFile, defaultCAFile)
	secrets := &credFakeSecrets{values: map[string]string{"bb-basic-uid-1-w1": "YmFzaWM="}}
	r := NewCredentialResolver(secrets, &credFakeDecrypter{}, testEndpoints(), "sandbox", dir)

	got, err := r.Resolve(helpers.TestCtx(), linkedWallet())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := dto.BankCredentials{
		Environment:    "sandbox",
		OAuthURL:       "https://oauth.sandbox.test/oauth/token",
		APIBaseURL:     "https://api.sandbox.test",
		ApplicationKey: "plain:cipher",
		ClientBasic:    "YmFzaWM=",
		Agency:         "1234",
		Account:        "98765",
		CertPath:       filepath.Join(dir, "w1", defaultCertFile),
		KeyPath:        filepath.Join(dir, "w1", defaultKeyFile),
		CAPath:         filepath.Join(dir, "w1", defaultCAFile),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve = %#v, want %#v", got, want)
	}
}

func TestCredentialResolverWalletOverrides(t *testing.T) {
	dir := t.TempDir()
	writeCerts(t, dir, "shared", "c.pem", "k.pem", "ca.pem")
	w := linkedWallet()
	w.Metadata.Integration.Environment = "production"
	w.Metadata.Integration.APIBaseURL = "https://custom.test"
	w.Metadata.Integration.CertPath = "shared/c.pem"
	w.Metadata.Integration.KeyPath = filepath.Join(dir, "shared", "k.pem")
	w.Metadata.Integration.CAPath = "shared/ca.pem"
	w.Metadata.Integration.ClientBasicSecretID = ""
	w.Metadata.Integration.ClientID = "client-1"
	w.Metadata.Integration.ClientSecretSecretID = "bb-secret-uid-1-w1"

	secrets := &credFakeSecrets{values: map[string]string{"bb-secret-uid-1-w1": "s3cr3t"}}
	r := NewCredentialResolver(secrets, &credFakeDecrypter{}, testEndpoints(), "sandbox", dir)

	got, err := r.Resolve(helpers.TestCtx(), w)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.OAuthURL != "https://oauth.prod.test/oauth/token" || got.APIBaseURL != "https://custom.test" {
		t.Fatalf("unexpected endpoints: %s %s", got.OAuthURL, got.APIBaseURL)
	}
	if got.ClientID != "client-1" || got.ClientSecret != "s3cr3t" || got.ClientBasic != "" {
		t.Fatalf("unexpected client credentials: %#v", got)
	}
	if got.CertPath != filepath.Join(dir, "shared", "c.pem") {
		t.Fatalf("CertPath = %s", got.CertPath)
	}
}

func TestCredentialResolverIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *models.Wallet)
		missing []string
	}{
		{
			name:    "no integration",
			mutate:  func(w *models.Wallet) { w.Metadata.Integration = nil },
			missing: []string{"applicationKey", "clientBasic", "agency", "account"},
		},
		{
			name:    "no application key",
			mutate:  func(w *models.Wallet) { w.Metadata.Integration.ApplicationKey = " " },
			missing: []string{"applicationKey"},
		},
		{
			name:    "no client basic",
			mutate:  func(w *models.Wallet) { w.Metadata.Integration.ClientBasicSecretID = "" },
			missing: []string{"clientBasic"},
		},
		{
			name: "client id without secret",
			mutate: func(w *models.Wallet) {
				w.Metadata.Integration.ClientBasicSecretID = ""
				w.Metadata.Integration.ClientID = "client-1"
			},
			missing: []string{"clientBasic"},
		},
		{
			name: "no account",
			mutate: func(w *models.Wallet) {
				w.Metadata.Integration.Agency = ""
				w.Metadata.Integration.Account = ""
			},
			missing: []string{"agency", "account"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := linkedWallet()
			tc.mutate(w)
			secrets := &credFakeSecrets{}
			decrypter := &credFakeDecrypter{}
			r := NewCredentialResolver(secrets, decrypter, testEndpoints(), "sandbox", t.TempDir())

			_, err := r.Resolve(helpers.TestCtx(), w)
			var e *errs.IntegrationNotConfiguredError
			if !errors.As(err, &e) || e.Reason != errs.ReasonCredentialsIncomplete {
				t.Fatalf("expected credentials_incomplete, got %v", err)
			}
			if !reflect.DeepEqual(e.Missing, tc.missing) {
				t.Fatalf("Missing = %v, want %v", e.Missing, tc.missing)
			}
			if !strings.HasSuffix(e.Message, "reconnect your bank account") {
				t.Fatalf("message %q does not tell the user to reconnect", e.Message)
			}
			if secrets.calls != 0 || decrypter.calls != 0 {
				t.Fatalf("expected no secret access, got %d secret and %d decrypt calls", secrets.calls, decrypter.calls)
			}
		})
	}
}

func TestCredentialResolverCertificatesMissing(t *testing.T) {
	dir := t.TempDir()
	writeCerts(t, dir, "w1", defaultCertFile)
	decrypter := &credFakeDecrypter{}
	r := NewCredentialResolver(&credFakeSecrets{}, decrypter, testEndpoints(), "sandbox", dir)

	_, err := r.Resolve(helpers.TestCtx(), linkedWallet())
	var e *errs.IntegrationNotConfiguredError
	if !errors.As(err, &e) || e.Reason != errs.ReasonCertificatesMissing {
		t.Fatalf("expected certificates_missing, got %v", err)
	}
	if !reflect.DeepEqual(e.Missing, []string{"key", "ca"}) {
		t.Fatalf("Missing = %v, want [key ca]", e.Missing)
	}
	if !strings.Contains(e.Message, "reconnect your bank account") {
		t.Fatalf("message %q does not tell the user to reconnect", e.Message)
	}
	if decrypter.calls != 0 {
		t.Fatalf("decrypt called before certificate check")
	}
}

func TestCredentialResolverSecretNotFound(t *testing.T) {
	dir := t.TempDir()
	writeCerts(t, dir, "w1", defaultCertFile, defaultKeyFile, defaultCAFile)
	r := NewCredentialResolver(&credFakeSecrets{values: map[string]string{}}, &credFakeDecrypter{}, testEndpoints(), "sandbox", dir)

	_, err := r.Resolve(helpers.TestCtx(), linkedWallet())
	var e *errs.IntegrationNotConfiguredError
	if !errors.As(err, &e) || e.Reason != errs.ReasonCredentialsIncomplete {
		t.Fatalf("expected credentials_incomplete, got %v", err)
	}
	if !reflect.DeepEqual(e.Missing, []string{"clientBasic"}) {
		t.Fatalf("Missing = %v, want [clientBasic]", e.Missing)
	}
	if e.Message != "bank credentials are incomplete: missing clientBasic; reconnect your bank account" {
		t.Fatalf("unexpected message: %s", e.Message)
	}
}

func TestCredentialResolverSecretBackendError(t *testing.T) {
	dir := t.TempDir()
	writeCerts(t, dir, "w1", defaultCertFile, defaultKeyFile, defaultCAFile)
	backend := errs.NewExternalServiceError("secret_manager", "failed to access secret", true, errors.New("unavailable"))
	r := NewCredentialResolver(&credFakeSecrets{err: backend}, &credFakeDecrypter{}, testEndpoints(), "sandbox", dir)

	_, err := r.Resolve(helpers.TestCtx(), linkedWallet())
	var e *errs.ExternalServiceError
	if !errors.As(err, &e) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
}

func TestCredentialResolverUnknownEnvironment(t *testing.T) {
	w := linkedWallet()
	w.Metadata.Integration.Environment = "staging"
	r := NewCredentialResolver(&credFakeSecrets{}, &credFakeDecrypter{}, testEndpoints(), "sandbox", t.TempDir())

	_, err := r.Resolve(helpers.TestCtx(), w)
	var e *errs.ValidationError
	if !errors.As(err, &e) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
