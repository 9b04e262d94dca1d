package workspace

import (
	"fmt"
	"strings"

	"github.com/temirov/fabrix/internal/fabric"
)

const (
	namePrefixConfigurationKeyConstant      = "name_prefix"
	branchConfigurationKeyConstant          = "branch"
	capacityIDConfigurationKeyConstant      = "capacity_id"
	repositoryConfigurationKeyConstant      = "repository"
	directoryConfigurationKeyConstant       = "directory"
	gitConnectionIDConfigurationKeyConstant = "git_connection_id"
	clientIDConfigurationKeyConstant        = "client_id"
	tenantIDConfigurationKeyConstant        = "tenant_id"
	clientSecretConfigurationKeyConstant    = "client_secret_source"
	apiBaseURLConfigurationKeyConstant      = "api_base_url"

	defaultDirectoryNameConstant      = "/"
	defaultClientSecretSourceConstant = "env:FABRIC_CLIENT_SECRET"

	configurationKeyJoinSeparatorConstant      = "."
	missingConfigurationValuesTemplateConstant = "missing required configuration values: %s"
	missingConfigurationJoinSeparatorConstant  = ", "
	repositorySeparatorConstant                = "/"
	repositoryFormatErrorTemplateConstant      = "repository %q must use the owner/name format"
	repositoryComponentMissingTemplateConstant = "repository %q is missing the %s component"
	repositoryOwnerComponentNameConstant       = "owner"
	repositoryNameComponentNameConstant        = "name"
)

// CommandConfiguration captures the provisioning inputs sourced from the
// configuration file and FABRIX-prefixed environment variables.
type CommandConfiguration struct {
	NamePrefix         string `mapstructure:"name_prefix"`
	BranchName         string `mapstructure:"branch"`
	CapacityID         string `mapstructure:"capacity_id"`
	Repository         string `mapstructure:"repository"`
	DirectoryName      string `mapstructure:"directory"`
	GitConnectionID    string `mapstructure:"git_connection_id"`
	ClientID           string `mapstructure:"client_id"`
	TenantID           string `mapstructure:"tenant_id"`
	ClientSecretSource string `mapstructure:"client_secret_source"`
	APIBaseURL         string `mapstructure:"api_base_url"`
}

// DefaultConfigurationValues supplies viper defaults for the provisioning
// command. Every key is registered, required keys with an empty default, so
// environment overrides are visible to viper during unmarshalling.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + namePrefixConfigurationKeyConstant:      "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + branchConfigurationKeyConstant:          "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + capacityIDConfigurationKeyConstant:      "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + repositoryConfigurationKeyConstant:      "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + directoryConfigurationKeyConstant:       defaultDirectoryNameConstant,
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + gitConnectionIDConfigurationKeyConstant: "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + clientIDConfigurationKeyConstant:        "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + tenantIDConfigurationKeyConstant:        "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + clientSecretConfigurationKeyConstant:    defaultClientSecretSourceConstant,
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + apiBaseURLConfigurationKeyConstant:      fabric.DefaultBaseURL,
	}
}

// Validate reports every missing required value in a single error so operators
// can fix the whole configuration in one pass, before any network call.
func (configuration CommandConfiguration) Validate() error {
	requiredValues := []struct {
		configurationKey   string
		configurationValue string
	}{
		{configurationKey: namePrefixConfigurationKeyConstant, configurationValue: configuration.NamePrefix},
		{configurationKey: branchConfigurationKeyConstant, configurationValue: configuration.BranchName},
		{configurationKey: capacityIDConfigurationKeyConstant, configurationValue: configuration.CapacityID},
		{configurationKey: repositoryConfigurationKeyConstant, configurationValue: configuration.Repository},
		{configurationKey: gitConnectionIDConfigurationKeyConstant, configurationValue: configuration.GitConnectionID},
		{configurationKey: clientIDConfigurationKeyConstant, configurationValue: configuration.ClientID},
		{configurationKey: tenantIDConfigurationKeyConstant, configurationValue: configuration.TenantID},
		{configurationKey: clientSecretConfigurationKeyConstant, configurationValue: configuration.ClientSecretSource},
	}

	var missingConfigurationKeys []string
	for _, requiredValue := range requiredValues {
		if len(strings.TrimSpace(requiredValue.configurationValue)) == 0 {
			missingConfigurationKeys = append(missingConfigurationKeys, requiredValue.configurationKey)
		}
	}

	if len(missingConfigurationKeys) > 0 {
		return fmt.Errorf(missingConfigurationValuesTemplateConstant, strings.Join(missingConfigurationKeys, missingConfigurationJoinSeparatorConstant))
	}

	if _, _, repositoryError := SplitRepository(configuration.Repository); repositoryError != nil {
		return repositoryError
	}

	return nil
}

// SplitRepository separates an `owner/name` identifier on the first slash.
func SplitRepository(repositoryIdentifier string) (string, string, error) {
	trimmedIdentifier := strings.TrimSpace(repositoryIdentifier)
	separatorIndex := strings.Index(trimmedIdentifier, repositorySeparatorConstant)
	if separatorIndex < 0 {
		return "", "", fmt.Errorf(repositoryFormatErrorTemplateConstant, trimmedIdentifier)
	}

	ownerName := trimmedIdentifier[:separatorIndex]
	repositoryName := trimmedIdentifier[separatorIndex+1:]

	if len(ownerName) == 0 {
		return "", "", fmt.Errorf(repositoryComponentMissingTemplateConstant, trimmedIdentifier, repositoryOwnerComponentNameConstant)
	}
	if len(repositoryName) == 0 {
		return "", "", fmt.Errorf(repositoryComponentMissingTemplateConstant, trimmedIdentifier, repositoryNameComponentNameConstant)
	}

	return ownerName, repositoryName, nil
}
