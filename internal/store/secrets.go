package store

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/wallet-sync/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{secretID}/versions/latest

type secretsStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretsStore(client *secretmanager.Client, projectID string) *secretsStore {
	return &secretsStore{
		client:    client,
		projectID: projectID,
	}
}

func (s *secretsStore) secretName(secretID string) string {
	if strings.HasPrefix(secretID, "projects/") {
		return secretID
	}
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, secretID)
}

func (s *secretsStore) ensureSecret(ctx context.Context, secretID string) error {
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: s.secretName(secretID)})
	if status.Code(err) == codes.NotFound {
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: secretID,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{Automatic: &secretmanagerpb.Replication_Automatic{}},
				},
			},
		})
	}
	return err
}

// Put stores value as the latest version of secretID, creating the secret if needed.
func (s *secretsStore) Put(ctx context.Context, secretID, value string) error {
	if err := s.ensureSecret(ctx, secretID); err != nil {
		return errs.NewExternalServiceError("secret_manager", "failed to create secret", true, err)
	}
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretName(secretID),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(value),
		},
	})
	if err != nil {
		return errs.NewExternalServiceError("secret_manager", "failed to store secret", true, err)
	}
	return nil
}

// Get returns the latest version of secretID. A missing secret is a NotFoundError.
func (s *secretsStore) Get(ctx context.Context, secretID string) (string, error) {
	name := s.secretName(secretID)
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if status.Code(err) == codes.NotFound {
		return "", errs.NewNotFoundError("secret not found")
	}
	if err != nil {
		return "", errs.NewExternalServiceError("secret_manager", "failed to read secret", true, err)
	}
	return strings.TrimSpace(string(res.Payload.Data)), nil
}
