package crypto

import (
	"context"
	"encoding/base64"
	"strings"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"

	"github.com/GregMSThompson/wallet-sync/internal/errs"
)

// keyClient is the subset of *kms.KeyManagementClient used here.
type keyClient interface {
	Encrypt(ctx context.Context, req *kmspb.EncryptRequest, opts ...gax.CallOption) (*kmspb.EncryptResponse, error)
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest, opts ...gax.CallOption) (*kmspb.DecryptResponse, error)
}

// KMS seals wallet integration credentials with a single Cloud KMS key.
type KMS struct {
	client  keyClient
	keyName string
}

func NewKMS(client keyClient, keyName string) *KMS {
	return &KMS{client: client, keyName: keyName}
}

// Encrypt returns base64 ciphertext for plaintext.
func (k *KMS) Encrypt(ctx context.Context, plaintext string) (string, error) {
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:      k.keyName,
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to encrypt credential", err)
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

// Decrypt reverses Encrypt. An empty ciphertext decrypts to "".
func (k *KMS) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	ciphertext = strings.TrimSpace(ciphertext)
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errs.NewEncryptionError("credential ciphertext is not base64", err)
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:       k.keyName,
		Ciphertext: raw,
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to decrypt credential", err)
	}
	return string(resp.Plaintext), nil
}
