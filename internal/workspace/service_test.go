package workspace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/fabrix/internal/fabric"
	"github.com/temirov/fabrix/internal/workspace"
)

const (
	testCapacityIDConstant   = "capacity-1"
	testCreatedWorkspaceID   = "created-workspace-id"
	testExistingWorkspaceID  = "existing-workspace-id"
	testConnectionIDConstant = "connection-1"
)

type fakeProviderAPI struct {
	listedWorkspaces     []fabric.Workspace
	listError            error
	createdWorkspace     fabric.Workspace
	createError          error
	connectError         error
	createdDisplayNames  []string
	createdCapacityIDs   []string
	connectedWorkspaces  []string
	connectedConnections []fabric.GitConnection
}

func (api *fakeProviderAPI) ListWorkspaces(executionContext context.Context) ([]fabric.Workspace, error) {
	return api.listedWorkspaces, api.listError
}

func (api *fakeProviderAPI) CreateWorkspace(executionContext context.Context, displayName string, capacityID string) (fabric.Workspace, error) {
	api.createdDisplayNames = append(api.createdDisplayNames, displayName)
	api.createdCapacityIDs = append(api.createdCapacityIDs, capacityID)
	return api.createdWorkspace, api.createError
}

func (api *fakeProviderAPI) ConnectGit(executionContext context.Context, workspaceID string, connection fabric.GitConnection) error {
	api.connectedWorkspaces = append(api.connectedWorkspaces, workspaceID)
	api.connectedConnections = append(api.connectedConnections, connection)
	return api.connectError
}

func provisionOptions() workspace.ProvisionOptions {
	return workspace.ProvisionOptions{
		NamePrefix: "proj",
		BranchName: "main",
		CapacityID: testCapacityIDConstant,
		GitConnection: fabric.GitConnection{
			OwnerName:      "octo-org",
			RepositoryName: "sample-repo",
			BranchName:     "main",
			DirectoryName:  "/",
			ConnectionID:   testConnectionIDConstant,
		},
	}
}

func TestServiceConstructionValidation(t *testing.T) {
	t.Parallel()

	_, missingLoggerError := workspace.NewService(nil, &fakeProviderAPI{})
	require.Error(t, missingLoggerError)

	_, missingAPIError := workspace.NewService(zap.NewNop(), nil)
	require.Error(t, missingAPIError)
}

func TestProvisionCreatesWorkspaceWhenAbsent(t *testing.T) {
	t.Parallel()

	providerAPI := &fakeProviderAPI{
		listedWorkspaces: []fabric.Workspace{{ID: "other", DisplayName: "proj-develop"}},
		createdWorkspace: fabric.Workspace{ID: testCreatedWorkspaceID, DisplayName: "proj-main"},
	}

	service, creationError := workspace.NewService(zap.NewNop(), providerAPI)
	require.NoError(t, creationError)

	provisionResult, provisionError := service.Provision(context.Background(), provisionOptions())
	require.NoError(t, provisionError)
	require.Equal(t, testCreatedWorkspaceID, provisionResult.WorkspaceID)
	require.Equal(t, "proj-main", provisionResult.DisplayName)
	require.True(t, provisionResult.Created)
	require.False(t, provisionResult.GitAlreadyConnected)

	require.Equal(t, []string{"proj-main"}, providerAPI.createdDisplayNames)
	require.Equal(t, []string{testCapacityIDConstant}, providerAPI.createdCapacityIDs)
	require.Equal(t, []string{testCreatedWorkspaceID}, providerAPI.connectedWorkspaces)
}

func TestProvisionReusesExistingWorkspace(t *testing.T) {
	t.Parallel()

	providerAPI := &fakeProviderAPI{
		listedWorkspaces: []fabric.Workspace{
			{ID: testExistingWorkspaceID, DisplayName: "proj-main"},
		},
	}

	service, creationError := workspace.NewService(zap.NewNop(), providerAPI)
	require.NoError(t, creationError)

	provisionResult, provisionError := service.Provision(context.Background(), provisionOptions())
	require.NoError(t, provisionError)
	require.Equal(t, testExistingWorkspaceID, provisionResult.WorkspaceID)
	require.False(t, provisionResult.Created)
	require.Empty(t, providerAPI.createdDisplayNames)
}

func TestProvisionLookupIsCaseSensitive(t *testing.T) {
	t.Parallel()

	providerAPI := &fakeProviderAPI{
		listedWorkspaces: []fabric.Workspace{{ID: "mismatch", DisplayName: "PROJ-MAIN"}},
		createdWorkspace: fabric.Workspace{ID: testCreatedWorkspaceID, DisplayName: "proj-main"},
	}

	service, creationError := workspace.NewService(zap.NewNop(), providerAPI)
	require.NoError(t, creationError)

	provisionResult, provisionError := service.Provision(context.Background(), provisionOptions())
	require.NoError(t, provisionError)
	require.True(t, provisionResult.Created)
}

func TestProvisionTreatsAlreadyConnectedAsSuccess(t *testing.T) {
	t.Parallel()

	observerCore, observedLogs := observer.New(zap.DebugLevel)
	providerAPI := &fakeProviderAPI{
		listedWorkspaces: []fabric.Workspace{{ID: testExistingWorkspaceID, DisplayName: "proj-main"}},
		connectError:     fabric.APIError{Operation: "ConnectGit", StatusCode: 400, ErrorCode: "WorkspaceAlreadyConnectedToGit"},
	}

	service, creationError := workspace.NewService(zap.New(observerCore), providerAPI)
	require.NoError(t, creationError)

	provisionResult, provisionError := service.Provision(context.Background(), provisionOptions())
	require.NoError(t, provisionError)
	require.True(t, provisionResult.GitAlreadyConnected)

	warningEntries := observedLogs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warningEntries, 1)
}

func TestProvisionFailsFast(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		providerAPI *fakeProviderAPI
	}{
		{
			name:        "list_failure",
			providerAPI: &fakeProviderAPI{listError: errors.New("listing unavailable")},
		},
		{
			name: "create_failure",
			providerAPI: &fakeProviderAPI{
				createError: fabric.APIError{Operation: "CreateWorkspace", StatusCode: 403, ErrorCode: "InsufficientPrivileges"},
			},
		},
		{
			name: "connect_failure",
			providerAPI: &fakeProviderAPI{
				listedWorkspaces: []fabric.Workspace{{ID: testExistingWorkspaceID, DisplayName: "proj-main"}},
				connectError:     fabric.APIError{Operation: "ConnectGit", StatusCode: 500, ErrorCode: "InternalError"},
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			service, creationError := workspace.NewService(zap.NewNop(), testCase.providerAPI)
			require.NoError(t, creationError)

			_, provisionError := service.Provision(context.Background(), provisionOptions())
			require.Error(t, provisionError)
		})
	}
}
