package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fabrix/internal/workspace"
)

func validConfiguration() workspace.CommandConfiguration {
	return workspace.CommandConfiguration{
		NamePrefix:         "proj",
		BranchName:         "main",
		CapacityID:         "capacity-1",
		Repository:         "octo-org/sample-repo",
		DirectoryName:      "/",
		GitConnectionID:    "connection-1",
		ClientID:           "client-id",
		TenantID:           "tenant-id",
		ClientSecretSource: "env:FABRIC_CLIENT_SECRET",
	}
}

func TestConfigurationValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts_complete_configuration", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, validConfiguration().Validate())
	})

	t.Run("lists_every_missing_key", func(t *testing.T) {
		t.Parallel()

		incompleteConfiguration := validConfiguration()
		incompleteConfiguration.CapacityID = ""
		incompleteConfiguration.ClientID = "  "

		validationError := incompleteConfiguration.Validate()
		require.Error(t, validationError)
		require.Contains(t, validationError.Error(), "capacity_id")
		require.Contains(t, validationError.Error(), "client_id")
	})

	t.Run("rejects_malformed_repository", func(t *testing.T) {
		t.Parallel()

		malformedConfiguration := validConfiguration()
		malformedConfiguration.Repository = "missing-separator"
		require.Error(t, malformedConfiguration.Validate())
	})
}

func TestSplitRepository(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		input         string
		expectedOwner string
		expectedName  string
		expectError   bool
	}{
		{name: "owner_and_name", input: "octo-org/sample-repo", expectedOwner: "octo-org", expectedName: "sample-repo"},
		{name: "splits_on_first_slash", input: "octo-org/group/repo", expectedOwner: "octo-org", expectedName: "group/repo"},
		{name: "rejects_missing_separator", input: "sample-repo", expectError: true},
		{name: "rejects_empty_owner", input: "/sample-repo", expectError: true},
		{name: "rejects_empty_name", input: "octo-org/", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ownerName, repositoryName, splitError := workspace.SplitRepository(testCase.input)
			if testCase.expectError {
				require.Error(t, splitError)
				return
			}
			require.NoError(t, splitError)
			require.Equal(t, testCase.expectedOwner, ownerName)
			require.Equal(t, testCase.expectedName, repositoryName)
		})
	}
}

func TestDefaultConfigurationValuesRegisterEveryKey(t *testing.T) {
	t.Parallel()

	defaultValues := workspace.DefaultConfigurationValues("tools.provision")

	require.Equal(t, "/", defaultValues["tools.provision.directory"])
	require.Equal(t, "env:FABRIC_CLIENT_SECRET", defaultValues["tools.provision.client_secret_source"])
	require.Contains(t, defaultValues, "tools.provision.api_base_url")

	requiredKeys := []string{
		"tools.provision.name_prefix",
		"tools.provision.branch",
		"tools.provision.capacity_id",
		"tools.provision.repository",
		"tools.provision.git_connection_id",
		"tools.provision.client_id",
		"tools.provision.tenant_id",
	}
	for _, requiredKey := range requiredKeys {
		registeredValue, keyRegistered := defaultValues[requiredKey]
		require.True(t, keyRegistered, requiredKey)
		require.Equal(t, "", registeredValue, requiredKey)
	}
}
