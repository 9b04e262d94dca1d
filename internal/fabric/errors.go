package fabric

import (
	"errors"
	"fmt"
)

const (
	operationErrorTemplateConstant        = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant     = "%s: %s"
	apiErrorTemplateConstant              = "%s returned status %d (%s): %s"
	apiErrorWithoutCodeTemplateConstant   = "%s returned status %d: %s"
	emptyResponseBodyMessageConstant      = "empty response body"

	// Provider error codes treated as success when connecting a workspace to
	// Git: the link already exists, so the operation is an idempotent no-op.
	errorCodeWorkspaceAlreadyConnectedConstant   = "WorkspaceAlreadyConnectedToGit"
	errorCodeGitProviderAlreadyConnectedConstant = "GitProviderResourceAlreadyConnected"
)

var alreadyConnectedErrorCodes = map[string]struct{}{
	errorCodeWorkspaceAlreadyConnectedConstant:   {},
	errorCodeGitProviderAlreadyConnectedConstant: {},
}

// OperationName describes a named provider API workflow supported by the client.
type OperationName string

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps transport-level failures for provider API operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// APIError carries a non-2xx provider response, including the raw body so the
// operator sees exactly what the API reported.
type APIError struct {
	Operation  OperationName
	StatusCode int
	ErrorCode  string
	Message    string
	Body       string
}

// Error describes the API failure including the provider error code when present.
func (apiError APIError) Error() string {
	message := apiError.Message
	if len(message) == 0 {
		message = apiError.Body
	}
	if len(message) == 0 {
		message = emptyResponseBodyMessageConstant
	}
	if len(apiError.ErrorCode) == 0 {
		return fmt.Sprintf(apiErrorWithoutCodeTemplateConstant, apiError.Operation, apiError.StatusCode, message)
	}
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.Operation, apiError.StatusCode, apiError.ErrorCode, message)
}

// IsAlreadyConnected reports whether the error is a provider response stating
// the workspace is already linked to a Git repository.
func IsAlreadyConnected(candidateError error) bool {
	var apiError APIError
	if !errors.As(candidateError, &apiError) {
		return false
	}
	_, recognized := alreadyConnectedErrorCodes[apiError.ErrorCode]
	return recognized
}
