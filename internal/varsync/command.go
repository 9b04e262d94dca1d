package varsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fabrix/internal/execshell"
	"github.com/temirov/fabrix/internal/githubauth"
	"github.com/temirov/fabrix/internal/githubcli"
	"github.com/temirov/fabrix/internal/ui"
	"github.com/temirov/fabrix/internal/varlib"
)

const (
	commandUseConstant                    = "variables-sync"
	commandShortDescriptionConstant       = "Mirror GitHub repository variables into the variable library file"
	commandLongDescriptionConstant        = "variables-sync fetches GitHub Actions repository variables, keeps the ones matching the {prefix}_{environment}_ naming convention, and merges them into the variable library document without dropping entries it did not fetch."
	commandExecutionErrorTemplateConstant = "variable synchronization failed: %w"
	unexpectedArgumentsMessageConstant    = "variables-sync does not accept positional arguments"

	flagPrefixNameConstant             = "prefix"
	flagPrefixDescriptionConstant      = "Repository prefix of the variable naming convention (overrides the configured prefix)"
	flagEnvironmentNameConstant        = "environment"
	flagEnvironmentDescriptionConstant = "Environment segment of the variable naming convention (overrides the configured environment)"
	flagFileNameConstant               = "file"
	flagFileDescriptionConstant        = "Variable library file to merge into (overrides the configured path)"
	flagRepositoryNameConstant         = "repository"
	flagRepositoryDescriptionConstant  = "GitHub repository in owner/name format (overrides the configured repository)"

	repositoryEnvironmentVariableConstant = "GITHUB_REPOSITORY"

	syncSummaryOutputTemplateConstant = "synchronized %d variable(s) into %s (added %d, updated %d, unchanged %d)\n"
	noChangesOutputTemplateConstant   = "no variables matched %s; %s left untouched\n"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the sync configuration resolved by the CLI root.
type ConfigurationProvider func() CommandConfiguration

// SyncExecutor runs a synchronization cycle.
type SyncExecutor interface {
	Sync(executionContext context.Context, options SyncOptions) (SyncResult, error)
}

// CommandBuilder assembles the Cobra command for variable synchronization.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	Synchronizer                 SyncExecutor
	CommandRunner                execshell.CommandRunner
	EnvironmentLookup            githubauth.EnvironmentLookup
	HumanReadableLoggingProvider func() bool
}

// Build constructs the variables-sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagPrefixNameConstant, "", flagPrefixDescriptionConstant)
	command.Flags().String(flagEnvironmentNameConstant, "", flagEnvironmentDescriptionConstant)
	command.Flags().String(flagFileNameConstant, "", flagFileDescriptionConstant)
	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)

	if validationError := configuration.Validate(); validationError != nil {
		return validationError
	}

	logger := builder.resolveLogger()
	synchronizer, synchronizerError := builder.resolveSynchronizer(logger)
	if synchronizerError != nil {
		return synchronizerError
	}

	syncOptions := SyncOptions{
		Repository:       configuration.Repository,
		RepositoryPrefix: configuration.RepositoryPrefix,
		EnvironmentName:  configuration.EnvironmentName,
		LibraryFilePath:  configuration.LibraryFilePath,
	}

	syncResult, syncError := synchronizer.Sync(command.Context(), syncOptions)
	if syncError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, syncError)
	}

	if syncResult.Written {
		fmt.Fprintf(
			command.OutOrStdout(),
			syncSummaryOutputTemplateConstant,
			syncResult.Statistics.Total,
			syncOptions.LibraryFilePath,
			syncResult.Statistics.Added,
			syncResult.Statistics.Updated,
			syncResult.Statistics.Unchanged,
		)
		return nil
	}

	fmt.Fprintf(
		command.OutOrStdout(),
		noChangesOutputTemplateConstant,
		varlib.NamePrefix(syncOptions.RepositoryPrefix, syncOptions.EnvironmentName),
		syncOptions.LibraryFilePath,
	)
	return nil
}

// resolveConfiguration layers flag overrides and the GITHUB_REPOSITORY
// fallback over the configuration file values.
func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if prefixFlagValue, _ := command.Flags().GetString(flagPrefixNameConstant); len(strings.TrimSpace(prefixFlagValue)) > 0 {
		configuration.RepositoryPrefix = strings.TrimSpace(prefixFlagValue)
	}
	if environmentFlagValue, _ := command.Flags().GetString(flagEnvironmentNameConstant); len(strings.TrimSpace(environmentFlagValue)) > 0 {
		configuration.EnvironmentName = strings.TrimSpace(environmentFlagValue)
	}
	if fileFlagValue, _ := command.Flags().GetString(flagFileNameConstant); len(strings.TrimSpace(fileFlagValue)) > 0 {
		configuration.LibraryFilePath = strings.TrimSpace(fileFlagValue)
	}
	if repositoryFlagValue, _ := command.Flags().GetString(flagRepositoryNameConstant); len(strings.TrimSpace(repositoryFlagValue)) > 0 {
		configuration.Repository = strings.TrimSpace(repositoryFlagValue)
	}

	if len(strings.TrimSpace(configuration.Repository)) == 0 {
		if repositoryFromEnvironment, found := builder.lookupEnvironment(repositoryEnvironmentVariableConstant); found {
			configuration.Repository = strings.TrimSpace(repositoryFromEnvironment)
		}
	}

	return configuration
}

func (builder *CommandBuilder) lookupEnvironment(environmentKey string) (string, bool) {
	if builder.EnvironmentLookup == nil {
		return os.LookupEnv(environmentKey)
	}
	return builder.EnvironmentLookup(environmentKey)
}

func (builder *CommandBuilder) humanReadableLoggingRequested() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
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

func (builder *CommandBuilder) resolveSynchronizer(logger *zap.Logger) (SyncExecutor, error) {
	if builder.Synchronizer != nil {
		return builder.Synchronizer, nil
	}

	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
	if executorError != nil {
		return nil, executorError
	}
	if builder.humanReadableLoggingRequested() {
		shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}

	var commandExecutor githubcli.GitHubCommandExecutor = shellExecutor
	if authenticationToken, tokenFound := githubauth.ResolveToken(builder.EnvironmentLookup); tokenFound {
		commandExecutor = &tokenInjectingExecutor{
			delegate:            shellExecutor,
			authenticationToken: authenticationToken,
		}
	}

	repositoryGateway, clientError := githubcli.NewClient(commandExecutor)
	if clientError != nil {
		return nil, clientError
	}

	return NewService(logger, repositoryGateway)
}

// tokenInjectingExecutor forwards gh invocations with the resolved GitHub
// token injected into the child process environment, so CI runs authenticate
// without an interactive gh login.
type tokenInjectingExecutor struct {
	delegate            *execshell.ShellExecutor
	authenticationToken string
}

func (executor *tokenInjectingExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	environmentVariables := make(map[string]string, len(details.EnvironmentVariables)+1)
	for environmentKey, environmentValue := range details.EnvironmentVariables {
		environmentVariables[environmentKey] = environmentValue
	}
	environmentVariables[githubauth.EnvGitHubCLIToken] = executor.authenticationToken

	details.EnvironmentVariables = environmentVariables
	return executor.delegate.ExecuteGitHubCLI(executionContext, details)
}
