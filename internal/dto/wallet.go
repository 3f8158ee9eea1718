package dto

// BankEndpoints are the OAuth and API hosts of one bank environment.
type BankEndpoints struct {
	OAuthURL   string
	APIBaseURL string
}

// LinkWalletRequest carries plaintext credentials for a new bank wallet.
// They are sealed (KMS / Secret Manager) before anything is persisted.
type LinkWalletRequest struct {
	WalletID       string `json:"walletId,omitempty"`
	Name           string `json:"name"`
	Environment    string `json:"environment,omitempty"`
	Agency         string `json:"agency"`
	Account        string `json:"account"`
	ApplicationKey string `json:"applicationKey"`
	ClientBasic    string `json:"clientBasic,omitempty"`
	ClientID       string `json:"clientId,omitempty"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	CertPath       string `json:"certPath,omitempty"`
	KeyPath        string `json:"keyPath,omitempty"`
	CAPath         string `json:"caPath,omitempty"`
}
