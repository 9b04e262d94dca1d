package varsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/fabrix/internal/githubcli"
	"github.com/temirov/fabrix/internal/varlib"
)

const (
	serviceLoggerMissingMessageConstant  = "variable sync logger not configured"
	serviceGatewayMissingMessageConstant = "variable sync repository gateway not configured"
	resolveRepositoryErrorTemplate       = "unable to resolve repository metadata: %w"
	fetchVariablesErrorTemplateConstant  = "unable to fetch repository variables: %w"
	loadLibraryErrorTemplateConstant     = "unable to load variable library: %w"
	saveLibraryErrorTemplateConstant     = "unable to save variable library: %w"

	noVariablesMatchedMessageConstant     = "no variables matched the environment filter"
	emptyLibraryInitializedMessageText    = "empty variable library initialized"
	librarySynchronizedMessageConstant    = "variable library synchronized"
	logFieldRepositoryConstant            = "repository"
	logFieldNamePrefixConstant            = "name_prefix"
	logFieldFilePathConstant              = "file_path"
	logFieldTotalVariablesConstant        = "total"
	logFieldAddedVariablesConstant        = "added"
	logFieldUpdatedVariablesConstant      = "updated"
	logFieldUnchangedVariablesConstant    = "unchanged"
	logFieldFetchedVariableCountConstant  = "fetched_count"
	logFieldFilteredVariableCountConstant = "filtered_count"
)

// RepositoryGateway wraps the GitHub operations one synchronization run needs:
// canonicalizing the repository identifier and fetching Actions variables.
type RepositoryGateway interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	ListRepositoryVariables(executionContext context.Context, repository string) ([]githubcli.RepositoryVariable, error)
}

// SyncOptions carries the resolved inputs for one synchronization run.
type SyncOptions struct {
	Repository       string
	RepositoryPrefix string
	EnvironmentName  string
	LibraryFilePath  string
}

// SyncResult reports what the run changed along with merge statistics.
type SyncResult struct {
	Statistics varlib.MergeStatistics
	Written    bool
}

// Service performs the read-merge-write synchronization cycle. The cycle has
// no locking; concurrent runs against the same file are resolved by the
// caller's pipeline serialization.
type Service struct {
	logger            *zap.Logger
	repositoryGateway RepositoryGateway
}

// NewService validates collaborators and constructs a sync service.
func NewService(logger *zap.Logger, repositoryGateway RepositoryGateway) (*Service, error) {
	if logger == nil {
		return nil, errors.New(serviceLoggerMissingMessageConstant)
	}
	if repositoryGateway == nil {
		return nil, errors.New(serviceGatewayMissingMessageConstant)
	}
	return &Service{logger: logger, repositoryGateway: repositoryGateway}, nil
}

// Sync fetches, filters, merges, and persists variables. The repository
// identifier is canonicalized first so casing differences in the configured
// value do not leak into requests or logs. An empty filtered result is not an
// error: the first run still materializes an empty library document, while
// later runs leave the existing file untouched.
func (service *Service) Sync(executionContext context.Context, options SyncOptions) (SyncResult, error) {
	repositoryMetadata, resolveError := service.repositoryGateway.ResolveRepoMetadata(executionContext, options.Repository)
	if resolveError != nil {
		return SyncResult{}, fmt.Errorf(resolveRepositoryErrorTemplate, resolveError)
	}

	canonicalRepository := strings.TrimSpace(repositoryMetadata.NameWithOwner)
	if len(canonicalRepository) == 0 {
		canonicalRepository = options.Repository
	}

	fetchedVariables, fetchError := service.repositoryGateway.ListRepositoryVariables(executionContext, canonicalRepository)
	if fetchError != nil {
		return SyncResult{}, fmt.Errorf(fetchVariablesErrorTemplateConstant, fetchError)
	}

	candidateVariables := make([]varlib.Variable, 0, len(fetchedVariables))
	for _, fetchedVariable := range fetchedVariables {
		candidateVariables = append(candidateVariables, varlib.NewStringVariable(fetchedVariable.Name, fetchedVariable.Value))
	}

	filteredVariables := varlib.FilterVariables(candidateVariables, options.RepositoryPrefix, options.EnvironmentName)

	service.logger.Debug(
		noVariablesMatchedMessageConstant+" check",
		zap.Int(logFieldFetchedVariableCountConstant, len(fetchedVariables)),
		zap.Int(logFieldFilteredVariableCountConstant, len(filteredVariables)),
	)

	if len(filteredVariables) == 0 {
		return service.handleEmptyFetch(options)
	}

	existingLibrary, loadError := varlib.LoadLibrary(options.LibraryFilePath)
	if loadError != nil {
		return SyncResult{}, fmt.Errorf(loadLibraryErrorTemplateConstant, loadError)
	}

	mergedVariables, mergeStatistics := varlib.MergeVariables(existingLibrary.Variables, filteredVariables)
	mergedLibrary := existingLibrary
	mergedLibrary.Variables = mergedVariables

	if saveError := varlib.SaveLibrary(options.LibraryFilePath, mergedLibrary); saveError != nil {
		return SyncResult{}, fmt.Errorf(saveLibraryErrorTemplateConstant, saveError)
	}

	service.logger.Info(
		librarySynchronizedMessageConstant,
		zap.String(logFieldRepositoryConstant, canonicalRepository),
		zap.String(logFieldNamePrefixConstant, varlib.NamePrefix(options.RepositoryPrefix, options.EnvironmentName)),
		zap.String(logFieldFilePathConstant, options.LibraryFilePath),
		zap.Int(logFieldTotalVariablesConstant, mergeStatistics.Total),
		zap.Int(logFieldAddedVariablesConstant, mergeStatistics.Added),
		zap.Int(logFieldUpdatedVariablesConstant, mergeStatistics.Updated),
		zap.Int(logFieldUnchangedVariablesConstant, mergeStatistics.Unchanged),
	)

	return SyncResult{Statistics: mergeStatistics, Written: true}, nil
}

// handleEmptyFetch keeps an existing library untouched and only materializes
// an empty document when no file exists yet.
func (service *Service) handleEmptyFetch(options SyncOptions) (SyncResult, error) {
	_, statError := os.Stat(options.LibraryFilePath)
	if statError == nil {
		service.logger.Info(
			noVariablesMatchedMessageConstant,
			zap.String(logFieldFilePathConstant, options.LibraryFilePath),
		)
		return SyncResult{}, nil
	}
	if !os.IsNotExist(statError) {
		return SyncResult{}, fmt.Errorf(loadLibraryErrorTemplateConstant, statError)
	}

	if saveError := varlib.SaveLibrary(options.LibraryFilePath, varlib.NewLibrary(nil)); saveError != nil {
		return SyncResult{}, fmt.Errorf(saveLibraryErrorTemplateConstant, saveError)
	}

	service.logger.Info(
		emptyLibraryInitializedMessageText,
		zap.String(logFieldFilePathConstant, options.LibraryFilePath),
	)
	return SyncResult{Written: true}, nil
}
