package varlib

const (
	// VariableTypeString is the only value type the variable library schema supports today.
	VariableTypeString = "String"

	// DefaultSchemaURL identifies the variable library document schema.
	DefaultSchemaURL = "https://developer.microsoft.com/json-schemas/fabric/item/variableLibrary/definition/variables/1.0.0/schema.json"
)

// Variable is a single named entry inside a variable library. Name is the
// identity used during reconciliation.
type Variable struct {
	Name  string `json:"name"`
	Note  string `json:"note"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewStringVariable builds a string-typed variable with an empty note.
func NewStringVariable(variableName string, variableValue string) Variable {
	return Variable{
		Name:  variableName,
		Note:  "",
		Type:  VariableTypeString,
		Value: variableValue,
	}
}
