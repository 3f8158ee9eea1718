package bbclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/ledger"
)

const (
	serviceName = "banco_do_brasil"

	// MaxPageSize is the largest page the extract API accepts.
	MaxPageSize = 200
	maxPages    = 500

	extractScope = "extrato-info"
	extractPath  = "/extratos/v1/conta-corrente/agencia/%s/conta/%s"
	balancePath  = extractPath + "/saldo"

	maxBodyBytes = 10 << 20
)

type Adapter struct {
	timeout    time.Duration
	pageSize   int
	httpClient func(creds dto.BankCredentials, timeout time.Duration) (*http.Client, error)
}

func NewAdapter(timeout time.Duration, pageSize int) *Adapter {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Adapter{
		timeout:    timeout,
		pageSize:   pageSize,
		httpClient: mutualTLSClient,
	}
}

// Authenticate builds the mTLS client and exchanges the client credentials
// for a bearer token.
func (a *Adapter) Authenticate(ctx context.Context, creds dto.BankCredentials) (dto.BankAuth, error) {
	hc, err := a.httpClient(creds, a.timeout)
	if err != nil {
		return dto.BankAuth{}, err
	}

	clientID, clientSecret, err := clientPair(creds)
	if err != nil {
		return dto.BankAuth{}, err
	}

	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     creds.OAuthURL,
		Scopes:       []string{extractScope},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, hc))
	if err != nil {
		return dto.BankAuth{}, tokenError(err)
	}

	return dto.BankAuth{
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
		Credentials: creds,
		HTTPClient:  hc,
	}, nil
}

// GetBalance queries the account balance endpoint.
func (a *Adapter) GetBalance(ctx context.Context, auth dto.BankAuth) (dto.BBBalance, error) {
	var out dto.BBBalance
	path := fmt.Sprintf(balancePath, url.PathEscape(auth.Credentials.Agency), url.PathEscape(auth.Credentials.Account))
	err := a.get(ctx, auth, path, url.Values{}, &out)
	return out, err
}

// GetExtractPage fetches one page of the ledger extract.
func (a *Adapter) GetExtractPage(ctx context.Context, auth dto.BankAuth, period dto.SyncPeriod, page int) (dto.BBExtractPage, error) {
	q := url.Values{}
	q.Set("numeroPaginaSolicitacao", strconv.Itoa(page))
	q.Set("quantidadeRegistroPaginaSolicitacao", strconv.Itoa(a.pageSize))
	q.Set("dataInicioSolicitacao", ledger.EncodeBankDate(period.Start))
	q.Set("dataFimSolicitacao", ledger.EncodeBankDate(period.End))

	var out dto.BBExtractPage
	path := fmt.Sprintf(extractPath, url.PathEscape(auth.Credentials.Agency), url.PathEscape(auth.Credentials.Account))
	err := a.get(ctx, auth, path, q, &out)
	return out, err
}

// GetExtract follows numeroPaginaProximo until the bank reports no next page.
func (a *Adapter) GetExtract(ctx context.Context, auth dto.BankAuth, period dto.SyncPeriod) (dto.BBExtract, error) {
	var res dto.BBExtract
	page := 1
	for {
		p, err := a.GetExtractPage(ctx, auth, period, page)
		if err != nil {
			return dto.BBExtract{}, err
		}
		res.Pages++
		res.Entries = append(res.Entries, p.Entries...)
		if p.TotalRecords > res.TotalRecords {
			res.TotalRecords = p.TotalRecords
		}

		if p.NextPage <= page || res.Pages >= maxPages {
			break
		}
		page = p.NextPage
	}
	if res.TotalRecords == 0 {
		res.TotalRecords = len(res.Entries)
	}
	return res, nil
}

func (a *Adapter) get(ctx context.Context, auth dto.BankAuth, path string, q url.Values, out any) error {
	if auth.HTTPClient == nil {
		return errs.NewExternalServiceError(serviceName, "not authenticated", false, nil)
	}
	q.Set("gw-dev-app-key", auth.Credentials.ApplicationKey)
	u := strings.TrimRight(auth.Credentials.APIBaseURL, "/") + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "invalid request", false, err)
	}
	req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := auth.HTTPClient.Do(req)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "bank request failed", true, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "read bank response", true, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errs.NewUpstreamAuthError(resp.StatusCode, upstreamMessage(body, resp.Status), nil)
	case resp.StatusCode >= 500:
		return errs.NewExternalServiceError(serviceName, upstreamMessage(body, resp.Status), true, nil)
	case resp.StatusCode >= 400:
		return errs.NewExternalServiceError(serviceName, upstreamMessage(body, resp.Status), false, nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errs.NewExternalServiceError(serviceName, "decode bank response", false, err)
	}
	return nil
}

func clientPair(creds dto.BankCredentials) (string, string, error) {
	if creds.ClientID != "" && creds.ClientSecret != "" {
		return creds.ClientID, creds.ClientSecret, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(strings.TrimSpace(creds.ClientBasic), "Basic "))
	if err != nil {
		return "", "", errs.NewIntegrationNotConfiguredError(errs.ReasonCredentialsIncomplete, "client basic token is not valid base64", "clientBasic")
	}
	id, secret, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return "", "", errs.NewIntegrationNotConfiguredError(errs.ReasonCredentialsIncomplete, "client basic token must encode clientId:clientSecret", "clientBasic")
	}
	return id, secret, nil
}

func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return errs.NewExternalServiceError(serviceName, "token request failed", true, err)
	}

	status := http.StatusUnauthorized
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	msg := re.ErrorDescription
	if msg == "" {
		msg = upstreamMessage(re.Body, re.ErrorCode)
	}
	if status >= 500 {
		return errs.NewExternalServiceError(serviceName, msg, true, err)
	}
	return errs.NewUpstreamAuthError(status, msg, err)
}

// upstreamMessage pulls the human readable message out of a bank error body.
func upstreamMessage(body []byte, fallback string) string {
	var e dto.BBErrorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.ErrorDescription != "":
			return e.ErrorDescription
		case e.Message != "":
			return e.Message
		case len(e.Errors) > 0 && e.Errors[0].Message != "":
			return e.Errors[0].Message
		case e.Error != "":
			return e.Error
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 512 {
		return s
	}
	if fallback == "" {
		return "bank request rejected"
	}
	return fallback
}

func mutualTLSClient(creds dto.BankCredentials, timeout time.Duration) (*http.Client, error) {
	cert, err := tls.LoadX509KeyPair(creds.CertPath, creds.KeyPath)
	if err != nil {
		return nil, errs.NewIntegrationNotConfiguredError(errs.ReasonCertificatesMissing, "client certificate could not be loaded", "cert", "key")
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if creds.CAPath != "" {
		pem, err := os.ReadFile(creds.CAPath)
		if err != nil {
			return nil, errs.NewIntegrationNotConfiguredError(errs.ReasonCertificatesMissing, "CA bundle could not be read", "ca")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errs.NewIntegrationNotConfiguredError(errs.ReasonCertificatesMissing, "CA bundle has no certificates", "ca")
		}
		tlsCfg.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
