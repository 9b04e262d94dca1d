// Package githubauth resolves GitHub authentication tokens from CI
// environments so gh invocations work without an interactive login.
package githubauth

import (
	"os"
	"strings"
)

// Environment variable names recognized for GitHub authentication, in
// preference order.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the first non-empty GitHub authentication token found
// through the provided lookup. A nil lookup falls back to the process
// environment.
func ResolveToken(environmentLookup EnvironmentLookup) (string, bool) {
	resolvedLookup := environmentLookup
	if resolvedLookup == nil {
		resolvedLookup = os.LookupEnv
	}

	for _, environmentKey := range tokenPreference {
		value, found := resolvedLookup(environmentKey)
		if !found {
			continue
		}
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) > 0 {
			return trimmedValue, true
		}
	}

	return "", false
}
