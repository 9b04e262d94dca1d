// Package workspace implements idempotent workspace provisioning: deriving a
// branch-scoped display name, reusing or creating the workspace, and linking
// it to a GitHub repository through the provider's Git integration.
package workspace
