package workspace

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/fabrix/internal/fabric"
)

const (
	serviceLoggerMissingMessageConstant = "workspace service logger not configured"
	serviceAPIMissingMessageConstant    = "workspace service provider api not configured"
	listWorkspacesErrorTemplateConstant = "unable to list workspaces: %w"
	createWorkspaceErrorTemplateText    = "unable to create workspace %s: %w"
	connectGitErrorTemplateConstant     = "unable to connect workspace %s to git: %w"

	workspaceReusedMessageConstant           = "workspace reused"
	workspaceCreatedMessageConstant          = "workspace created"
	gitConnectedMessageConstant              = "workspace connected to git"
	gitAlreadyConnectedWarningConstant       = "workspace already connected to git"
	logFieldWorkspaceIDConstant              = "workspace_id"
	logFieldDisplayNameConstant              = "display_name"
	logFieldRepositoryConstant               = "repository"
	logFieldBranchConstant                   = "branch"
	logFieldProviderErrorCodeConstant        = "provider_error_code"
	provisionResultErrorCodeUnavailableConst = ""
)

// ProviderAPI is the subset of the fabric client the provisioning service depends on.
type ProviderAPI interface {
	ListWorkspaces(executionContext context.Context) ([]fabric.Workspace, error)
	CreateWorkspace(executionContext context.Context, displayName string, capacityID string) (fabric.Workspace, error)
	ConnectGit(executionContext context.Context, workspaceID string, connection fabric.GitConnection) error
}

// ProvisionOptions carries the resolved inputs for one provisioning run.
type ProvisionOptions struct {
	NamePrefix    string
	BranchName    string
	CapacityID    string
	GitConnection fabric.GitConnection
}

// ProvisionResult reports the workspace identity and what the run changed.
type ProvisionResult struct {
	WorkspaceID         string
	DisplayName         string
	Created             bool
	GitAlreadyConnected bool
}

// Service provisions workspaces idempotently: lookup by display name, create
// when absent, then connect to Git tolerating the already-connected codes.
type Service struct {
	logger      *zap.Logger
	providerAPI ProviderAPI
}

// NewService validates collaborators and constructs a provisioning service.
func NewService(logger *zap.Logger, providerAPI ProviderAPI) (*Service, error) {
	if logger == nil {
		return nil, errors.New(serviceLoggerMissingMessageConstant)
	}
	if providerAPI == nil {
		return nil, errors.New(serviceAPIMissingMessageConstant)
	}
	return &Service{logger: logger, providerAPI: providerAPI}, nil
}

// Provision ensures the branch workspace exists and is linked to the
// configured repository. Steps run sequentially and the first failure aborts
// the run; re-invoking after a partial run is safe.
func (service *Service) Provision(executionContext context.Context, options ProvisionOptions) (ProvisionResult, error) {
	displayName := DeriveDisplayName(options.NamePrefix, options.BranchName)

	targetWorkspace, found, lookupError := service.lookupWorkspace(executionContext, displayName)
	if lookupError != nil {
		return ProvisionResult{}, lookupError
	}

	provisionResult := ProvisionResult{DisplayName: displayName}

	if found {
		provisionResult.WorkspaceID = targetWorkspace.ID
		service.logger.Info(
			workspaceReusedMessageConstant,
			zap.String(logFieldWorkspaceIDConstant, targetWorkspace.ID),
			zap.String(logFieldDisplayNameConstant, displayName),
		)
	} else {
		createdWorkspace, createError := service.providerAPI.CreateWorkspace(executionContext, displayName, options.CapacityID)
		if createError != nil {
			return ProvisionResult{}, fmt.Errorf(createWorkspaceErrorTemplateText, displayName, createError)
		}
		provisionResult.WorkspaceID = createdWorkspace.ID
		provisionResult.Created = true
		service.logger.Info(
			workspaceCreatedMessageConstant,
			zap.String(logFieldWorkspaceIDConstant, createdWorkspace.ID),
			zap.String(logFieldDisplayNameConstant, displayName),
		)
	}

	connectError := service.providerAPI.ConnectGit(executionContext, provisionResult.WorkspaceID, options.GitConnection)
	switch {
	case connectError == nil:
		service.logger.Info(
			gitConnectedMessageConstant,
			zap.String(logFieldWorkspaceIDConstant, provisionResult.WorkspaceID),
			zap.String(logFieldRepositoryConstant, options.GitConnection.OwnerName+"/"+options.GitConnection.RepositoryName),
			zap.String(logFieldBranchConstant, options.GitConnection.BranchName),
		)
	case fabric.IsAlreadyConnected(connectError):
		provisionResult.GitAlreadyConnected = true
		service.logger.Warn(
			gitAlreadyConnectedWarningConstant,
			zap.String(logFieldWorkspaceIDConstant, provisionResult.WorkspaceID),
			zap.String(logFieldProviderErrorCodeConstant, providerErrorCode(connectError)),
		)
	default:
		return ProvisionResult{}, fmt.Errorf(connectGitErrorTemplateConstant, provisionResult.WorkspaceID, connectError)
	}

	return provisionResult, nil
}

// lookupWorkspace searches the full listing for an exact, case-sensitive
// display name match.
func (service *Service) lookupWorkspace(executionContext context.Context, displayName string) (fabric.Workspace, bool, error) {
	listedWorkspaces, listError := service.providerAPI.ListWorkspaces(executionContext)
	if listError != nil {
		return fabric.Workspace{}, false, fmt.Errorf(listWorkspacesErrorTemplateConstant, listError)
	}

	for _, listedWorkspace := range listedWorkspaces {
		if listedWorkspace.DisplayName == displayName {
			return listedWorkspace, true, nil
		}
	}
	return fabric.Workspace{}, false, nil
}

func providerErrorCode(candidateError error) string {
	var apiError fabric.APIError
	if errors.As(candidateError, &apiError) {
		return apiError.ErrorCode
	}
	return provisionResultErrorCodeUnavailableConst
}
