package azureauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenEndpointTemplateConstant     = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	fabricAPIScopeConstant            = "https://api.fabric.microsoft.com/.default"
	clientIDMissingMessageConstant    = "client id must be provided"
	tenantIDMissingMessageConstant    = "tenant id must be provided"
	secretResolutionTemplateConstant  = "unable to resolve client secret: %w"
	credentialsNilResolverMessageText = "secret resolver not configured"
)

// Credentials identifies the service principal used against the workspace
// provider API.
type Credentials struct {
	ClientID     string
	TenantID     string
	SecretSource SecretSourceConfiguration
}

// Validate confirms the mandatory identity fields are present.
func (credentials Credentials) Validate() error {
	if len(strings.TrimSpace(credentials.ClientID)) == 0 {
		return errors.New(clientIDMissingMessageConstant)
	}
	if len(strings.TrimSpace(credentials.TenantID)) == 0 {
		return errors.New(tenantIDMissingMessageConstant)
	}
	return nil
}

// TokenEndpoint returns the tenant-scoped Entra ID token endpoint.
func (credentials Credentials) TokenEndpoint() string {
	return fmt.Sprintf(tokenEndpointTemplateConstant, strings.TrimSpace(credentials.TenantID))
}

// TokenSourceFactory builds oauth2 token sources for validated credentials.
type TokenSourceFactory struct {
	SecretResolver SecretResolver
	Scopes         []string
}

// NewTokenSourceFactory constructs a factory resolving secrets through the
// provided resolver, defaulting to process environment and filesystem access.
func NewTokenSourceFactory(secretResolver SecretResolver) *TokenSourceFactory {
	resolvedSecretResolver := secretResolver
	if resolvedSecretResolver == nil {
		resolvedSecretResolver = NewSecretResolver(nil, nil)
	}

	return &TokenSourceFactory{
		SecretResolver: resolvedSecretResolver,
		Scopes:         []string{fabricAPIScopeConstant},
	}
}

// CreateTokenSource resolves the client secret and returns a cached
// client-credentials token source for the workspace provider API.
func (factory *TokenSourceFactory) CreateTokenSource(creationContext context.Context, credentials Credentials) (oauth2.TokenSource, error) {
	if validationError := credentials.Validate(); validationError != nil {
		return nil, validationError
	}
	if factory.SecretResolver == nil {
		return nil, errors.New(credentialsNilResolverMessageText)
	}

	clientSecret, secretError := factory.SecretResolver.ResolveSecret(creationContext, credentials.SecretSource)
	if secretError != nil {
		return nil, fmt.Errorf(secretResolutionTemplateConstant, secretError)
	}

	clientCredentialsConfiguration := clientcredentials.Config{
		ClientID:     strings.TrimSpace(credentials.ClientID),
		ClientSecret: clientSecret,
		TokenURL:     credentials.TokenEndpoint(),
		Scopes:       factory.Scopes,
	}

	return clientCredentialsConfiguration.TokenSource(creationContext), nil
}
