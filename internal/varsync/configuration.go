package varsync

import (
	"fmt"
	"strings"
)

const (
	prefixConfigurationKeyConstant      = "prefix"
	environmentConfigurationKeyConstant = "environment"
	fileConfigurationKeyConstant        = "file"
	repositoryConfigurationKeyConstant  = "repository"

	configurationKeyJoinSeparatorConstant      = "."
	missingConfigurationValuesTemplateConstant = "missing required configuration values: %s"
	missingConfigurationJoinSeparatorConstant  = ", "
)

// CommandConfiguration captures the synchronization inputs sourced from the
// configuration file and FABRIX-prefixed environment variables.
type CommandConfiguration struct {
	RepositoryPrefix string `mapstructure:"prefix"`
	EnvironmentName  string `mapstructure:"environment"`
	LibraryFilePath  string `mapstructure:"file"`
	Repository       string `mapstructure:"repository"`
}

// DefaultConfigurationValues supplies viper defaults for the sync command.
// Every key is registered with an empty default so environment overrides are
// visible to viper during unmarshalling; Validate remains the gate that
// rejects values still empty after all sources are layered.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + prefixConfigurationKeyConstant:      "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + environmentConfigurationKeyConstant: "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + fileConfigurationKeyConstant:        "",
		configurationKeyPrefix + configurationKeyJoinSeparatorConstant + repositoryConfigurationKeyConstant:  "",
	}
}

// Validate reports every missing required value in a single error so operators
// can fix the whole configuration in one pass, before any network call.
func (configuration CommandConfiguration) Validate() error {
	requiredValues := []struct {
		configurationKey   string
		configurationValue string
	}{
		{configurationKey: prefixConfigurationKeyConstant, configurationValue: configuration.RepositoryPrefix},
		{configurationKey: environmentConfigurationKeyConstant, configurationValue: configuration.EnvironmentName},
		{configurationKey: fileConfigurationKeyConstant, configurationValue: configuration.LibraryFilePath},
		{configurationKey: repositoryConfigurationKeyConstant, configurationValue: configuration.Repository},
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

	return nil
}
