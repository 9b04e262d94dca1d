package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fabrix/internal/azureauth"
	"github.com/temirov/fabrix/internal/fabric"
)

const (
	commandUseConstant                    = "workspace-provision"
	commandShortDescriptionConstant       = "Ensure a branch workspace exists and is connected to its repository"
	commandLongDescriptionConstant        = "workspace-provision looks up the workspace named after the branch, creates it against the configured capacity when absent, and links it to the GitHub repository through the provider's Git integration."
	commandExecutionErrorTemplateConstant = "workspace provisioning failed: %w"
	unexpectedArgumentsMessageConstant    = "workspace-provision does not accept positional arguments"
	flagBranchNameConstant                = "branch"
	flagBranchDescriptionConstant         = "Branch the workspace is provisioned for (overrides the configured branch)"
	workspaceIDOutputTemplateConstant     = "%s\n"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the provisioning configuration resolved by the CLI root.
type ConfigurationProvider func() CommandConfiguration

// ProvisionExecutor runs a provisioning cycle.
type ProvisionExecutor interface {
	Provision(executionContext context.Context, options ProvisionOptions) (ProvisionResult, error)
}

// CommandBuilder assembles the Cobra command for workspace provisioning.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Provisioner           ProvisionExecutor
	HTTPClient            fabric.HTTPClient
	SecretResolver        azureauth.SecretResolver
}

// Build constructs the workspace-provision command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	if branchFlagValue, _ := command.Flags().GetString(flagBranchNameConstant); len(strings.TrimSpace(branchFlagValue)) > 0 {
		configuration.BranchName = strings.TrimSpace(branchFlagValue)
	}

	if validationError := configuration.Validate(); validationError != nil {
		return validationError
	}

	ownerName, repositoryName, repositorySplitError := splitConfiguredRepository(configuration)
	if repositorySplitError != nil {
		return repositorySplitError
	}

	logger := builder.resolveLogger()
	provisioner, provisionerError := builder.resolveProvisioner(command.Context(), logger, configuration)
	if provisionerError != nil {
		return provisionerError
	}

	provisionOptions := ProvisionOptions{
		NamePrefix: configuration.NamePrefix,
		BranchName: configuration.BranchName,
		CapacityID: configuration.CapacityID,
		GitConnection: fabric.GitConnection{
			OwnerName:      ownerName,
			RepositoryName: repositoryName,
			BranchName:     configuration.BranchName,
			DirectoryName:  configuration.DirectoryName,
			ConnectionID:   configuration.GitConnectionID,
		},
	}

	provisionResult, provisionError := provisioner.Provision(command.Context(), provisionOptions)
	if provisionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, provisionError)
	}

	fmt.Fprintf(command.OutOrStdout(), workspaceIDOutputTemplateConstant, provisionResult.WorkspaceID)
	return nil
}

func splitConfiguredRepository(configuration CommandConfiguration) (string, string, error) {
	return SplitRepository(configuration.Repository)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveProvisioner(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration) (ProvisionExecutor, error) {
	if builder.Provisioner != nil {
		return builder.Provisioner, nil
	}

	secretSource, secretSourceError := azureauth.ParseSecretSource(configuration.ClientSecretSource)
	if secretSourceError != nil {
		return nil, secretSourceError
	}

	tokenSourceFactory := azureauth.NewTokenSourceFactory(builder.SecretResolver)
	tokenSource, tokenSourceError := tokenSourceFactory.CreateTokenSource(executionContext, azureauth.Credentials{
		ClientID:     configuration.ClientID,
		TenantID:     configuration.TenantID,
		SecretSource: secretSource,
	})
	if tokenSourceError != nil {
		return nil, tokenSourceError
	}

	providerClient, clientError := fabric.NewClient(builder.HTTPClient, tokenSource, configuration.APIBaseURL)
	if clientError != nil {
		return nil, clientError
	}

	return NewService(logger, providerClient)
}
