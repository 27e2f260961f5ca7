package vault

import (
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRejectsEmptyTokenWithoutNetworkCall(t *testing.T) {
	// Address points nowhere; the empty token must fail before any request
	client, err := NewClient(&Config{
		Address: "http://127.0.0.1:1",
		Token:   "",
		Mount:   "secrets",
		Path:    "aws/credentials",
	})

	require.Error(t, err)
	assert.Nil(t, client)

	var vaultErr *Error
	require.ErrorAs(t, err, &vaultErr)
	assert.Equal(t, KindConfiguration, vaultErr.Kind)
}

func TestCredentialsFromSecretComplete(t *testing.T) {
	secret := &api.KVSecret{
		Data: map[string]interface{}{
			"access_key":        "AK1",
			"secret_access_key": "SK1",
		},
	}

	creds, err := credentialsFromSecret(secret)
	require.NoError(t, err)
	assert.Equal(t, "AK1", creds.AccessKey)
	assert.Equal(t, "SK1", creds.SecretKey)
	assert.Empty(t, creds.SessionToken)
}

func TestCredentialsFromSecretIncomplete(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"missing secret_access_key", map[string]interface{}{"access_key": "AK1"}},
		{"missing access_key", map[string]interface{}{"secret_access_key": "SK1"}},
		{"empty fields", map[string]interface{}{"access_key": "", "secret_access_key": ""}},
		{"no data", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := credentialsFromSecret(&api.KVSecret{Data: tt.data})
			require.Error(t, err)
			assert.Nil(t, creds)

			var vaultErr *Error
			require.ErrorAs(t, err, &vaultErr)
			assert.Equal(t, KindIncompleteCredentials, vaultErr.Kind)
		})
	}
}

func TestCredentialsFromSecretSessionTokenVariants(t *testing.T) {
	// STS tokens may be stored as security_token or session_token
	secret := &api.KVSecret{
		Data: map[string]interface{}{
			"access_key":        "AK1",
			"secret_access_key": "SK1",
			"security_token":    "ST1",
		},
	}
	creds, err := credentialsFromSecret(secret)
	require.NoError(t, err)
	assert.Equal(t, "ST1", creds.SessionToken)

	secret.Data["security_token"] = ""
	secret.Data["session_token"] = "ST2"
	creds, err = credentialsFromSecret(secret)
	require.NoError(t, err)
	assert.Equal(t, "ST2", creds.SessionToken)
}
