package varlib

import "strings"

const (
	nameSegmentSeparatorConstant = "_"
)

// NamePrefix builds the `{prefix}_{environment}_` marker that scopes
// repository variables to a single target environment.
func NamePrefix(repositoryPrefix string, environmentName string) string {
	return repositoryPrefix + nameSegmentSeparatorConstant + environmentName + nameSegmentSeparatorConstant
}

// FilterVariables selects the variables whose name carries the
// prefix/environment marker and strips exactly that marker from the stored
// name. Order of the input is preserved.
func FilterVariables(candidateVariables []Variable, repositoryPrefix string, environmentName string) []Variable {
	namePrefix := NamePrefix(repositoryPrefix, environmentName)

	selectedVariables := make([]Variable, 0, len(candidateVariables))
	for _, candidateVariable := range candidateVariables {
		if !strings.HasPrefix(candidateVariable.Name, namePrefix) {
			continue
		}

		strippedVariable := candidateVariable
		strippedVariable.Name = strings.TrimPrefix(candidateVariable.Name, namePrefix)
		selectedVariables = append(selectedVariables, strippedVariable)
	}

	return selectedVariables
}
