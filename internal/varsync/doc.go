// Package varsync mirrors GitHub Actions repository variables into a
// workspace variable library document: fetch, filter by environment prefix,
// reconcile with the persisted document, and write the result back in full.
package varsync
