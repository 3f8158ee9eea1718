package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
)

const (
	defaultCertFile = "client.crt"
	defaultKeyFile  = "client.key"
	defaultCAFile   = "ca.crt"
)

type secretReader interface {
	Get(ctx context.Context, secretID string) (string, error)
}

type credentialDecrypter interface {
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

type credentialResolver struct {
	secrets    secretReader
	decrypter  credentialDecrypter
	endpoints  map[string]dto.BankEndpoints
	defaultEnv string
	certDir    string
	statFile   func(name string) (os.FileInfo, error)
}

func NewCredentialResolver(secrets secretReader, decrypter credentialDecrypter, endpoints map[string]dto.BankEndpoints, defaultEnv, certDir string) *credentialResolver {
	return &credentialResolver{
		secrets:    secrets,
		decrypter:  decrypter,
		endpoints:  endpoints,
		defaultEnv: defaultEnv,
		certDir:    certDir,
		statFile:   os.Stat,
	}
}

// Resolve assembles the credential bundle of a bank wallet. Every field and
// certificate is checked before any secret is fetched or decrypted.
func (r *credentialResolver) Resolve(ctx context.Context, w *models.Wallet) (dto.BankCredentials, error) {
	h := w.Metadata.Integration
	if h == nil {
		return dto.BankCredentials{}, credentialsIncomplete("wallet has no bank credentials", "applicationKey", "clientBasic", "agency", "account")
	}

	var missing []string
	if strings.TrimSpace(h.ApplicationKey) == "" {
		missing = append(missing, "applicationKey")
	}
	hasBasic := h.ClientBasicSecretID != ""
	hasPair := h.ClientID != "" && h.ClientSecretSecretID != ""
	if !hasBasic && !hasPair {
		missing = append(missing, "clientBasic")
	}
	if h.Agency == "" {
		missing = append(missing, "agency")
	}
	if h.Account == "" {
		missing = append(missing, "account")
	}
	if len(missing) > 0 {
		return dto.BankCredentials{}, credentialsIncomplete("bank credentials are incomplete: missing "+strings.Join(missing, ", "), missing...)
	}

	env := h.Environment
	if env == "" {
		env = r.defaultEnv
	}
	ep, ok := r.endpoints[env]
	if !ok {
		return dto.BankCredentials{}, errs.NewValidationError("unknown bank environment " + env)
	}
	if h.APIBaseURL != "" {
		ep.APIBaseURL = h.APIBaseURL
	}

	creds := dto.BankCredentials{
		Environment: env,
		OAuthURL:    ep.OAuthURL,
		APIBaseURL:  ep.APIBaseURL,
		ClientID:    h.ClientID,
		Agency:      h.Agency,
		Account:     h.Account,
		CertPath:    r.certPath(w.WalletID, h.CertPath, defaultCertFile),
		KeyPath:     r.certPath(w.WalletID, h.KeyPath, defaultKeyFile),
		CAPath:      r.certPath(w.WalletID, h.CAPath, defaultCAFile),
	}

	var absent []string
	for _, f := range []struct{ name, path string }{
		{"cert", creds.CertPath},
		{"key", creds.KeyPath},
		{"ca", creds.CAPath},
	} {
		if info, err := r.statFile(f.path); err != nil || info.IsDir() {
			absent = append(absent, f.name)
		}
	}
	if len(absent) > 0 {
		return dto.BankCredentials{}, errs.NewIntegrationNotConfiguredError(errs.ReasonCertificatesMissing,
			"bank certificates not found: "+strings.Join(absent, ", ")+reconnectHint, absent...)
	}

	appKey, err := r.decrypter.Decrypt(ctx, h.ApplicationKey)
	if err != nil {
		return dto.BankCredentials{}, err
	}
	if appKey == "" {
		return dto.BankCredentials{}, credentialsIncomplete("bank credentials are incomplete: missing applicationKey", "applicationKey")
	}
	creds.ApplicationKey = appKey

	if hasBasic {
		if creds.ClientBasic, err = r.secret(ctx, h.ClientBasicSecretID, "clientBasic"); err != nil {
			return dto.BankCredentials{}, err
		}
	}
	if hasPair {
		if creds.ClientSecret, err = r.secret(ctx, h.ClientSecretSecretID, "clientSecret"); err != nil {
			return dto.BankCredentials{}, err
		}
	}
	return creds, nil
}

func (r *credentialResolver) secret(ctx context.Context, id, field string) (string, error) {
	v, err := r.secrets.Get(ctx, id)
	var nf *errs.NotFoundError
	if errors.As(err, &nf) || (err == nil && v == "") {
		return "", credentialsIncomplete("bank credentials are incomplete: missing "+field, field)
	}
	return v, err
}

func (r *credentialResolver) certPath(walletID, configured, fallback string) string {
	if configured == "" {
		return filepath.Join(r.certDir, walletID, fallback)
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(r.certDir, configured)
}

const reconnectHint = "; reconnect your bank account"

func credentialsIncomplete(message string, missing ...string) error {
	return errs.NewIntegrationNotConfiguredError(errs.ReasonCredentialsIncomplete, message+reconnectHint, missing...)
}
