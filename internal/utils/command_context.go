package utils

import "context"

// commandContextKey is a private key type so context values set here cannot
// collide with values from other packages.
type commandContextKey string

const resolvedConfigurationFileKey commandContextKey = "resolved_configuration_file"

// CommandContextAccessor stores CLI bootstrap results in command execution
// contexts so subcommands can report which configuration file produced their
// settings.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the resolved configuration file path to
// the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return accessor.withStringValue(parentContext, resolvedConfigurationFileKey, configurationFilePath)
}

// ConfigurationFilePath extracts the resolved configuration file path from the
// provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, resolvedConfigurationFileKey)
}

func (accessor CommandContextAccessor) withStringValue(parentContext context.Context, contextKey commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, contextKey, value)
}

func (accessor CommandContextAccessor) stringValue(executionContext context.Context, contextKey commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, valueIsString := executionContext.Value(contextKey).(string)
	return storedValue, valueIsString
}
