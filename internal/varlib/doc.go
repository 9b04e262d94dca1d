// Package varlib models the variable library document synchronized into
// Fabric workspaces.
//
// It defines the variable record and library document types, the ordered
// non-destructive merge used to reconcile fetched variables with a persisted
// document, prefix filtering for environment-scoped variable names, and the
// canonical JSON rendering the Git-integrated workspace expects.
package varlib
