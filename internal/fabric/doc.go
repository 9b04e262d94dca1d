// Package fabric is a typed REST client for the workspace provider API.
//
// It covers the three operations fabrix needs: enumerating workspaces,
// creating a workspace against a capacity, and connecting a workspace to a
// GitHub repository through the provider's Git integration. Transport sits
// behind a small HTTPClient interface so tests can fake responses, and
// authentication flows through an injected oauth2 token source.
package fabric
