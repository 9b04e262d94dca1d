package azureauth_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fabrix/internal/azureauth"
)

func TestParseSecretSource(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		input       string
		expected    azureauth.SecretSourceConfiguration
		expectError bool
	}{
		{
			name:     "bare_value_is_environment_name",
			input:    "FABRIC_CLIENT_SECRET",
			expected: azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeEnvironment, Reference: "FABRIC_CLIENT_SECRET"},
		},
		{
			name:     "explicit_environment_source",
			input:    "env:FABRIC_CLIENT_SECRET",
			expected: azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeEnvironment, Reference: "FABRIC_CLIENT_SECRET"},
		},
		{
			name:     "file_source",
			input:    "file:/run/secrets/fabric",
			expected: azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeFile, Reference: "/run/secrets/fabric"},
		},
		{name: "rejects_empty", input: "   ", expectError: true},
		{name: "rejects_unknown_type", input: "vault:path", expectError: true},
		{name: "rejects_empty_reference", input: "env:  ", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			parsedSource, parseError := azureauth.ParseSecretSource(testCase.input)
			if testCase.expectError {
				require.Error(t, parseError)
				return
			}
			require.NoError(t, parseError)
			require.Equal(t, testCase.expected, parsedSource)
		})
	}
}

func TestSecretResolver(t *testing.T) {
	t.Parallel()

	secretFilePath := filepath.Join(t.TempDir(), "client-secret")
	require.NoError(t, os.WriteFile(secretFilePath, []byte("  file-secret \n"), 0o600))

	environmentLookup := func(key string) (string, bool) {
		if key == "PRESENT_SECRET" {
			return " env-secret ", true
		}
		return "", false
	}

	resolver := azureauth.NewSecretResolver(environmentLookup, os.ReadFile)

	testCases := []struct {
		name        string
		source      azureauth.SecretSourceConfiguration
		expected    string
		expectError bool
	}{
		{
			name:     "environment_secret_trimmed",
			source:   azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeEnvironment, Reference: "PRESENT_SECRET"},
			expected: "env-secret",
		},
		{
			name:        "missing_environment_secret",
			source:      azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeEnvironment, Reference: "ABSENT_SECRET"},
			expectError: true,
		},
		{
			name:     "file_secret_trimmed",
			source:   azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeFile, Reference: secretFilePath},
			expected: "file-secret",
		},
		{
			name:        "missing_file_secret",
			source:      azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeFile, Reference: filepath.Join(t.TempDir(), "absent")},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			resolvedSecret, resolveError := resolver.ResolveSecret(context.Background(), testCase.source)
			if testCase.expectError {
				require.Error(t, resolveError)
				return
			}
			require.NoError(t, resolveError)
			require.Equal(t, testCase.expected, resolvedSecret)
		})
	}
}

func TestCredentialsValidation(t *testing.T) {
	t.Parallel()

	validCredentials := azureauth.Credentials{ClientID: "client", TenantID: "tenant"}
	require.NoError(t, validCredentials.Validate())
	require.Equal(t, "https://login.microsoftonline.com/tenant/oauth2/v2.0/token", validCredentials.TokenEndpoint())

	require.Error(t, azureauth.Credentials{TenantID: "tenant"}.Validate())
	require.Error(t, azureauth.Credentials{ClientID: "client"}.Validate())
}

func TestCreateTokenSourceResolvesSecret(t *testing.T) {
	t.Parallel()

	environmentLookup := func(key string) (string, bool) {
		if key == "SECRET_KEY" {
			return "secret-value", true
		}
		return "", false
	}

	factory := azureauth.NewTokenSourceFactory(azureauth.NewSecretResolver(environmentLookup, nil))

	tokenSource, creationError := factory.CreateTokenSource(context.Background(), azureauth.Credentials{
		ClientID:     "client",
		TenantID:     "tenant",
		SecretSource: azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeEnvironment, Reference: "SECRET_KEY"},
	})
	require.NoError(t, creationError)
	require.NotNil(t, tokenSource)

	_, missingSecretError := factory.CreateTokenSource(context.Background(), azureauth.Credentials{
		ClientID:     "client",
		TenantID:     "tenant",
		SecretSource: azureauth.SecretSourceConfiguration{Type: azureauth.SecretSourceTypeEnvironment, Reference: "ABSENT"},
	})
	require.Error(t, missingSecretError)
}
