package fabric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the production endpoint of the workspace provider API.
	DefaultBaseURL = "https://api.fabric.microsoft.com/v1"

	workspacesPathConstant            = "/workspaces"
	gitConnectPathTemplateConstant    = "/workspaces/%s/git/connect"
	continuationTokenParameterName    = "continuationToken"
	authorizationHeaderNameConstant   = "Authorization"
	authorizationHeaderTemplateText   = "Bearer %s"
	contentTypeHeaderNameConstant     = "Content-Type"
	contentTypeJSONValueConstant      = "application/json"
	gitProviderTypeGitHubConstant     = "GitHub"
	gitCredentialsSourceConstant      = "ConfiguredConnection"
	tokenSourceMissingMessageConstant = "token source not configured"
	httpClientMissingMessageConstant  = "http client not configured"
	requiredValueMessageConstant      = "value required"

	displayNameFieldNameConstant    = "display_name"
	capacityIDFieldNameConstant     = "capacity_id"
	workspaceIDFieldNameConstant    = "workspace_id"
	ownerNameFieldNameConstant      = "owner_name"
	repositoryNameFieldNameConstant = "repository_name"
	branchNameFieldNameConstant     = "branch_name"
	connectionIDFieldNameConstant   = "connection_id"

	listWorkspacesOperationNameConstant  = OperationName("ListWorkspaces")
	createWorkspaceOperationNameConstant = OperationName("CreateWorkspace")
	connectGitOperationNameConstant      = OperationName("ConnectGit")
)

// Workspace is a provider workspace as returned by the API.
type Workspace struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	CapacityID  string `json:"capacityId,omitempty"`
}

// GitConnection describes the repository/branch pair a workspace is linked to.
type GitConnection struct {
	OwnerName      string
	RepositoryName string
	BranchName     string
	DirectoryName  string
	ConnectionID   string
}

// HTTPClient is the minimal transport interface required from net/http.Client.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Client performs authenticated calls against the workspace provider API.
type Client struct {
	httpClient  HTTPClient
	tokenSource oauth2.TokenSource
	baseURL     string
}

// Sentinel errors for client construction.
var (
	ErrTokenSourceNotConfigured = errors.New(tokenSourceMissingMessageConstant)
	ErrHTTPClientNotConfigured  = errors.New(httpClientMissingMessageConstant)
)

// NewClient constructs a provider API client. An empty base URL selects the
// production endpoint; a nil HTTP client selects http.DefaultClient.
func NewClient(httpClient HTTPClient, tokenSource oauth2.TokenSource, baseURL string) (*Client, error) {
	if tokenSource == nil {
		return nil, ErrTokenSourceNotConfigured
	}

	resolvedHTTPClient := httpClient
	if resolvedHTTPClient == nil {
		resolvedHTTPClient = http.DefaultClient
	}

	resolvedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(resolvedBaseURL) == 0 {
		resolvedBaseURL = DefaultBaseURL
	}

	return &Client{
		httpClient:  resolvedHTTPClient,
		tokenSource: tokenSource,
		baseURL:     resolvedBaseURL,
	}, nil
}

// ListWorkspaces enumerates every workspace visible to the service principal,
// following continuation tokens until the listing is exhausted.
func (client *Client) ListWorkspaces(executionContext context.Context) ([]Workspace, error) {
	var collectedWorkspaces []Workspace
	continuationToken := ""

	for {
		requestURL := client.baseURL + workspacesPathConstant
		if len(continuationToken) > 0 {
			requestURL = fmt.Sprintf("%s?%s=%s", requestURL, continuationTokenParameterName, url.QueryEscape(continuationToken))
		}

		responseBody, requestError := client.performRequest(executionContext, listWorkspacesOperationNameConstant, http.MethodGet, requestURL, nil)
		if requestError != nil {
			return nil, requestError
		}

		var listingPage struct {
			Value             []Workspace `json:"value"`
			ContinuationToken string      `json:"continuationToken"`
		}
		if decodeError := json.Unmarshal(responseBody, &listingPage); decodeError != nil {
			return nil, ResponseDecodingError{Operation: listWorkspacesOperationNameConstant, Cause: decodeError}
		}

		collectedWorkspaces = append(collectedWorkspaces, listingPage.Value...)
		if len(listingPage.ContinuationToken) == 0 {
			return collectedWorkspaces, nil
		}
		continuationToken = listingPage.ContinuationToken
	}
}

// CreateWorkspace provisions a workspace with the given display name on the
// configured capacity and returns the server-assigned identity.
func (client *Client) CreateWorkspace(executionContext context.Context, displayName string, capacityID string) (Workspace, error) {
	trimmedDisplayName := strings.TrimSpace(displayName)
	if len(trimmedDisplayName) == 0 {
		return Workspace{}, InvalidInputError{FieldName: displayNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedCapacityID := strings.TrimSpace(capacityID)
	if len(trimmedCapacityID) == 0 {
		return Workspace{}, InvalidInputError{FieldName: capacityIDFieldNameConstant, Message: requiredValueMessageConstant}
	}

	requestPayload := struct {
		DisplayName string `json:"displayName"`
		CapacityID  string `json:"capacityId"`
	}{
		DisplayName: trimmedDisplayName,
		CapacityID:  trimmedCapacityID,
	}

	payloadBytes, encodeError := json.Marshal(requestPayload)
	if encodeError != nil {
		return Workspace{}, OperationError{Operation: createWorkspaceOperationNameConstant, Cause: encodeError}
	}

	responseBody, requestError := client.performRequest(executionContext, createWorkspaceOperationNameConstant, http.MethodPost, client.baseURL+workspacesPathConstant, payloadBytes)
	if requestError != nil {
		return Workspace{}, requestError
	}

	var createdWorkspace Workspace
	if decodeError := json.Unmarshal(responseBody, &createdWorkspace); decodeError != nil {
		return Workspace{}, ResponseDecodingError{Operation: createWorkspaceOperationNameConstant, Cause: decodeError}
	}

	return createdWorkspace, nil
}

// ConnectGit links the workspace to a GitHub repository/branch pair through a
// pre-configured Git connection. Callers distinguish the idempotent
// already-connected outcome with IsAlreadyConnected.
func (client *Client) ConnectGit(executionContext context.Context, workspaceID string, connection GitConnection) error {
	trimmedWorkspaceID := strings.TrimSpace(workspaceID)
	if len(trimmedWorkspaceID) == 0 {
		return InvalidInputError{FieldName: workspaceIDFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if inputError := validateGitConnection(connection); inputError != nil {
		return inputError
	}

	requestPayload := struct {
		GitProviderDetails struct {
			GitProviderType string `json:"gitProviderType"`
			OwnerName       string `json:"ownerName"`
			RepositoryName  string `json:"repositoryName"`
			BranchName      string `json:"branchName"`
			DirectoryName   string `json:"directoryName"`
		} `json:"gitProviderDetails"`
		MyGitCredentials struct {
			Source       string `json:"source"`
			ConnectionID string `json:"connectionId"`
		} `json:"myGitCredentials"`
	}{}

	requestPayload.GitProviderDetails.GitProviderType = gitProviderTypeGitHubConstant
	requestPayload.GitProviderDetails.OwnerName = connection.OwnerName
	requestPayload.GitProviderDetails.RepositoryName = connection.RepositoryName
	requestPayload.GitProviderDetails.BranchName = connection.BranchName
	requestPayload.GitProviderDetails.DirectoryName = connection.DirectoryName
	requestPayload.MyGitCredentials.Source = gitCredentialsSourceConstant
	requestPayload.MyGitCredentials.ConnectionID = connection.ConnectionID

	payloadBytes, encodeError := json.Marshal(requestPayload)
	if encodeError != nil {
		return OperationError{Operation: connectGitOperationNameConstant, Cause: encodeError}
	}

	connectURL := client.baseURL + fmt.Sprintf(gitConnectPathTemplateConstant, url.PathEscape(trimmedWorkspaceID))
	_, requestError := client.performRequest(executionContext, connectGitOperationNameConstant, http.MethodPost, connectURL, payloadBytes)
	return requestError
}

func validateGitConnection(connection GitConnection) error {
	requiredFields := []struct {
		fieldName  string
		fieldValue string
	}{
		{fieldName: ownerNameFieldNameConstant, fieldValue: connection.OwnerName},
		{fieldName: repositoryNameFieldNameConstant, fieldValue: connection.RepositoryName},
		{fieldName: branchNameFieldNameConstant, fieldValue: connection.BranchName},
		{fieldName: connectionIDFieldNameConstant, fieldValue: connection.ConnectionID},
	}

	for _, requiredField := range requiredFields {
		if len(strings.TrimSpace(requiredField.fieldValue)) == 0 {
			return InvalidInputError{FieldName: requiredField.fieldName, Message: requiredValueMessageConstant}
		}
	}
	return nil
}

func (client *Client) performRequest(executionContext context.Context, operation OperationName, httpMethod string, requestURL string, payloadBytes []byte) ([]byte, error) {
	var requestBody io.Reader
	if len(payloadBytes) > 0 {
		requestBody = bytes.NewReader(payloadBytes)
	}

	httpRequest, requestCreationError := http.NewRequestWithContext(executionContext, httpMethod, requestURL, requestBody)
	if requestCreationError != nil {
		return nil, OperationError{Operation: operation, Cause: requestCreationError}
	}

	accessToken, tokenError := client.tokenSource.Token()
	if tokenError != nil {
		return nil, OperationError{Operation: operation, Cause: tokenError}
	}
	httpRequest.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(authorizationHeaderTemplateText, accessToken.AccessToken))
	if len(payloadBytes) > 0 {
		httpRequest.Header.Set(contentTypeHeaderNameConstant, contentTypeJSONValueConstant)
	}

	httpResponse, transportError := client.httpClient.Do(httpRequest)
	if transportError != nil {
		return nil, OperationError{Operation: operation, Cause: transportError}
	}
	defer func() {
		_ = httpResponse.Body.Close()
	}()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return nil, OperationError{Operation: operation, Cause: readError}
	}

	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		return nil, buildAPIError(operation, httpResponse.StatusCode, responseBody)
	}

	return responseBody, nil
}

func buildAPIError(operation OperationName, statusCode int, responseBody []byte) APIError {
	apiError := APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(responseBody)),
	}

	var errorEnvelope struct {
		ErrorCode string `json:"errorCode"`
		Message   string `json:"message"`
	}
	if decodeError := json.Unmarshal(responseBody, &errorEnvelope); decodeError == nil {
		apiError.ErrorCode = errorEnvelope.ErrorCode
		apiError.Message = errorEnvelope.Message
	}

	return apiError
}
