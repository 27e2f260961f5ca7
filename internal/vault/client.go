// Package vault retrieves the AWS credential bundle from a HashiCorp Vault
// KV v2 secret. One authenticated client is built at startup; reads are not
// cached and not retried.
package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/s3-bucket-manager/internal/monitoring"
)

// Config holds the settings for the Vault client.
type Config struct {
	Address string
	Token   string
	Mount   string
	Path    string
}

// Credentials is the AWS credential bundle read from Vault. Immutable after
// retrieval; the session token is optional.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// Client wraps the Vault API client for credential retrieval.
type Client struct {
	client *api.Client
	mount  string
	path   string
	logger *logrus.Entry
}

// NewClient creates an authenticated Vault client. The token is verified with
// a self-lookup before the client is returned, so an invalid token fails at
// startup rather than on the first credential read.
func NewClient(cfg *Config) (*Client, error) {
	logger := logrus.WithField("component", "vault-client")

	if cfg.Token == "" {
		return nil, &Error{
			Kind: KindConfiguration,
			Hint: "a Vault token must be provided; set S3BM_VAULT_TOKEN or VAULT_SERVICE_TOKEN",
		}
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address

	apiClient, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	apiClient.SetToken(cfg.Token)

	// Equivalent of a token self-lookup health check: any rejection here means
	// the token is unusable and the process must not serve traffic.
	if _, err := apiClient.Auth().Token().LookupSelf(); err != nil {
		return nil, &Error{
			Kind: KindAuthentication,
			Hint: "failed to authenticate to Vault; check the token's validity and expiration",
			Err:  err,
		}
	}

	logger.WithField("address", cfg.Address).Info("Authenticated to Vault")

	return &Client{
		client: apiClient,
		mount:  cfg.Mount,
		path:   cfg.Path,
		logger: logger,
	}, nil
}

// GetAWSCredentials reads the AWS credential bundle from the configured
// KV v2 path. Every call re-reads Vault; nothing is cached.
func (c *Client) GetAWSCredentials(ctx context.Context) (*Credentials, error) {
	c.logger.WithFields(logrus.Fields{
		"mount": c.mount,
		"path":  c.path,
	}).Info("Retrieving AWS credentials from Vault")

	secret, err := c.client.KVv2(c.mount).Get(ctx, c.path)
	if err != nil {
		monitoring.RecordVaultRequest("error")
		vaultErr := classify(err, c.mount, c.path)
		c.logger.WithError(err).WithField("kind", vaultErr.Kind).Error("Failed to read AWS credentials from Vault")
		return nil, vaultErr
	}
	monitoring.RecordVaultRequest("success")

	creds, err := credentialsFromSecret(secret)
	if err != nil {
		c.logger.WithError(err).Error("AWS credentials retrieved from Vault are incomplete")
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"mount": c.mount,
		"path":  c.path,
	}).Info("Successfully retrieved AWS credentials from Vault")

	return creds, nil
}

// credentialsFromSecret extracts the credential fields from a KV v2 secret.
// Both access_key and secret_access_key must be present and non-empty.
func credentialsFromSecret(secret *api.KVSecret) (*Credentials, error) {
	if secret == nil || secret.Data == nil {
		return nil, &Error{
			Kind: KindIncompleteCredentials,
			Hint: "the secret contains no data; check that it was written as a KV v2 secret",
		}
	}

	accessKey, _ := secret.Data["access_key"].(string)
	secretKey, _ := secret.Data["secret_access_key"].(string)
	if accessKey == "" || secretKey == "" {
		return nil, &Error{
			Kind: KindIncompleteCredentials,
			Hint: "the secret must contain non-empty 'access_key' and 'secret_access_key' fields",
		}
	}

	creds := &Credentials{
		AccessKey: accessKey,
		SecretKey: secretKey,
	}

	// STS credentials may be stored under either field name.
	if token, ok := secret.Data["security_token"].(string); ok && token != "" {
		creds.SessionToken = token
	} else if token, ok := secret.Data["session_token"].(string); ok && token != "" {
		creds.SessionToken = token
	}

	return creds, nil
}
