package fabric_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/temirov/fabrix/internal/fabric"
)

const (
	testAccessTokenConstant = "test-access-token"
	testWorkspaceIDConstant = "11111111-2222-3333-4444-555555555555"
)

type scriptedResponse struct {
	statusCode int
	body       string
}

type scriptedHTTPClient struct {
	responses        []scriptedResponse
	recordedRequests []*http.Request
	recordedBodies   []string
}

func (client *scriptedHTTPClient) Do(request *http.Request) (*http.Response, error) {
	client.recordedRequests = append(client.recordedRequests, request)

	requestBody := ""
	if request.Body != nil {
		bodyBytes, _ := io.ReadAll(request.Body)
		requestBody = string(bodyBytes)
	}
	client.recordedBodies = append(client.recordedBodies, requestBody)

	responseIndex := len(client.recordedRequests) - 1
	if responseIndex >= len(client.responses) {
		responseIndex = len(client.responses) - 1
	}
	scripted := client.responses[responseIndex]

	return &http.Response{
		StatusCode: scripted.statusCode,
		Body:       io.NopCloser(strings.NewReader(scripted.body)),
		Header:     http.Header{},
	}, nil
}

func staticTokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: testAccessTokenConstant})
}

func newTestClient(t *testing.T, httpClient fabric.HTTPClient) *fabric.Client {
	t.Helper()
	client, creationError := fabric.NewClient(httpClient, staticTokenSource(), "https://provider.example/v1")
	require.NoError(t, creationError)
	return client
}

func TestNewClientRequiresTokenSource(t *testing.T) {
	t.Parallel()

	_, creationError := fabric.NewClient(&scriptedHTTPClient{}, nil, "")
	require.ErrorIs(t, creationError, fabric.ErrTokenSourceNotConfigured)
}

func TestListWorkspacesFollowsContinuationTokens(t *testing.T) {
	t.Parallel()

	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{
		{statusCode: http.StatusOK, body: `{"value":[{"id":"a","displayName":"proj-main"}],"continuationToken":"next"}`},
		{statusCode: http.StatusOK, body: `{"value":[{"id":"b","displayName":"proj-dev"}]}`},
	}}

	client := newTestClient(t, httpClient)

	listedWorkspaces, listError := client.ListWorkspaces(context.Background())
	require.NoError(t, listError)
	require.Equal(t, []fabric.Workspace{
		{ID: "a", DisplayName: "proj-main"},
		{ID: "b", DisplayName: "proj-dev"},
	}, listedWorkspaces)

	require.Len(t, httpClient.recordedRequests, 2)
	require.Contains(t, httpClient.recordedRequests[1].URL.RawQuery, "continuationToken=next")
	require.Equal(t, "Bearer "+testAccessTokenConstant, httpClient.recordedRequests[0].Header.Get("Authorization"))
}

func TestCreateWorkspace(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		displayName string
		capacityID  string
		response    scriptedResponse
		expectError bool
		expectedID  string
	}{
		{
			name:        "creates_workspace",
			displayName: "proj-main",
			capacityID:  "capacity-1",
			response:    scriptedResponse{statusCode: http.StatusCreated, body: `{"id":"` + testWorkspaceIDConstant + `","displayName":"proj-main"}`},
			expectedID:  testWorkspaceIDConstant,
		},
		{
			name:        "missing_display_name",
			displayName: "  ",
			capacityID:  "capacity-1",
			response:    scriptedResponse{statusCode: http.StatusCreated, body: `{}`},
			expectError: true,
		},
		{
			name:        "missing_capacity",
			displayName: "proj-main",
			capacityID:  "",
			response:    scriptedResponse{statusCode: http.StatusCreated, body: `{}`},
			expectError: true,
		},
		{
			name:        "api_error_surfaces_body",
			displayName: "proj-main",
			capacityID:  "capacity-1",
			response:    scriptedResponse{statusCode: http.StatusForbidden, body: `{"errorCode":"InsufficientPrivileges","message":"denied"}`},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			httpClient := &scriptedHTTPClient{responses: []scriptedResponse{testCase.response}}
			client := newTestClient(t, httpClient)

			createdWorkspace, createError := client.CreateWorkspace(context.Background(), testCase.displayName, testCase.capacityID)
			if testCase.expectError {
				require.Error(t, createError)
				return
			}

			require.NoError(t, createError)
			require.Equal(t, testCase.expectedID, createdWorkspace.ID)

			var sentPayload map[string]string
			require.NoError(t, json.Unmarshal([]byte(httpClient.recordedBodies[0]), &sentPayload))
			require.Equal(t, "proj-main", sentPayload["displayName"])
			require.Equal(t, "capacity-1", sentPayload["capacityId"])
		})
	}
}

func TestConnectGit(t *testing.T) {
	t.Parallel()

	validConnection := fabric.GitConnection{
		OwnerName:      "octo-org",
		RepositoryName: "sample-repo",
		BranchName:     "main",
		DirectoryName:  "/workspace",
		ConnectionID:   "connection-1",
	}

	testCases := []struct {
		name                   string
		connection             fabric.GitConnection
		response               scriptedResponse
		expectError            bool
		expectAlreadyConnected bool
	}{
		{
			name:       "connects_successfully",
			connection: validConnection,
			response:   scriptedResponse{statusCode: http.StatusOK, body: `{}`},
		},
		{
			name:                   "already_connected_is_recognizable",
			connection:             validConnection,
			response:               scriptedResponse{statusCode: http.StatusBadRequest, body: `{"errorCode":"WorkspaceAlreadyConnectedToGit","message":"linked"}`},
			expectError:            true,
			expectAlreadyConnected: true,
		},
		{
			name:        "empty_error_body_is_fatal",
			connection:  validConnection,
			response:    scriptedResponse{statusCode: http.StatusInternalServerError, body: ""},
			expectError: true,
		},
		{
			name: "missing_connection_id",
			connection: fabric.GitConnection{
				OwnerName:      "octo-org",
				RepositoryName: "sample-repo",
				BranchName:     "main",
			},
			response:    scriptedResponse{statusCode: http.StatusOK, body: `{}`},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			httpClient := &scriptedHTTPClient{responses: []scriptedResponse{testCase.response}}
			client := newTestClient(t, httpClient)

			connectError := client.ConnectGit(context.Background(), testWorkspaceIDConstant, testCase.connection)
			if !testCase.expectError {
				require.NoError(t, connectError)
				require.Contains(t, httpClient.recordedRequests[0].URL.Path, "/workspaces/"+testWorkspaceIDConstant+"/git/connect")
				require.Contains(t, httpClient.recordedBodies[0], `"gitProviderType":"GitHub"`)
				return
			}

			require.Error(t, connectError)
			require.Equal(t, testCase.expectAlreadyConnected, fabric.IsAlreadyConnected(connectError))
		})
	}
}

func TestIsAlreadyConnectedRejectsOtherErrors(t *testing.T) {
	t.Parallel()

	require.False(t, fabric.IsAlreadyConnected(nil))
	require.False(t, fabric.IsAlreadyConnected(fabric.APIError{ErrorCode: "Unrelated"}))
	require.True(t, fabric.IsAlreadyConnected(fabric.APIError{ErrorCode: "GitProviderResourceAlreadyConnected"}))
}
