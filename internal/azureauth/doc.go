// Package azureauth acquires Entra ID service-principal tokens for the
// workspace provider API using the OAuth2 client-credentials flow.
package azureauth
