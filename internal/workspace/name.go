package workspace

import "strings"

const (
	displayNameSeparatorConstant = "-"
	branchSlashConstant          = "/"
)

// DeriveDisplayName builds the deterministic workspace display name for a
// branch: `{prefix}-{branch}` with every slash in the branch replaced by a
// hyphen, so `feature/login` yields `{prefix}-feature-login`.
func DeriveDisplayName(namePrefix string, branchName string) string {
	sanitizedBranch := strings.ReplaceAll(strings.TrimSpace(branchName), branchSlashConstant, displayNameSeparatorConstant)
	return strings.TrimSpace(namePrefix) + displayNameSeparatorConstant + sanitizedBranch
}
