package varlib

// MergeStatistics summarizes the outcome of a reconciliation run. The values
// are derived from sequence lengths and clamped at zero so reporting never
// underflows when a source contained duplicate names.
type MergeStatistics struct {
	Total     int
	Added     int
	Updated   int
	Unchanged int
}

// MergeVariables reconciles freshly fetched variables into an existing ordered
// sequence without deleting anything:
//
//   - an existing entry whose name reappears in the fetched set is replaced in
//     its original position,
//   - an existing entry absent from the fetched set is kept unchanged,
//   - fetched entries with unseen names are appended in fetch order.
//
// Duplicate names within a single source resolve last-write-wins: fetched
// entries are indexed in order, so a later duplicate overwrites an earlier one
// before reconciliation begins.
func MergeVariables(existingVariables []Variable, fetchedVariables []Variable) ([]Variable, MergeStatistics) {
	fetchedByName := make(map[string]Variable, len(fetchedVariables))
	for _, fetchedVariable := range fetchedVariables {
		fetchedByName[fetchedVariable.Name] = fetchedVariable
	}

	mergedVariables := make([]Variable, 0, len(existingVariables)+len(fetchedVariables))
	mergedNames := make(map[string]struct{}, len(existingVariables)+len(fetchedVariables))

	for _, existingVariable := range existingVariables {
		if _, alreadyMerged := mergedNames[existingVariable.Name]; alreadyMerged {
			continue
		}
		mergedNames[existingVariable.Name] = struct{}{}

		if fetchedVariable, fetchedPresent := fetchedByName[existingVariable.Name]; fetchedPresent {
			mergedVariables = append(mergedVariables, fetchedVariable)
			continue
		}
		mergedVariables = append(mergedVariables, existingVariable)
	}

	for _, fetchedVariable := range fetchedVariables {
		if _, alreadyMerged := mergedNames[fetchedVariable.Name]; alreadyMerged {
			continue
		}
		mergedNames[fetchedVariable.Name] = struct{}{}
		mergedVariables = append(mergedVariables, fetchedByName[fetchedVariable.Name])
	}

	statistics := deriveStatistics(len(existingVariables), len(fetchedVariables), len(mergedVariables))
	return mergedVariables, statistics
}

func deriveStatistics(existingCount int, fetchedCount int, mergedCount int) MergeStatistics {
	addedCount := clampAtZero(mergedCount - existingCount)
	updatedCount := clampAtZero(fetchedCount - addedCount)
	unchangedCount := clampAtZero(existingCount - updatedCount)

	return MergeStatistics{
		Total:     mergedCount,
		Added:     addedCount,
		Updated:   updatedCount,
		Unchanged: unchangedCount,
	}
}

func clampAtZero(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
