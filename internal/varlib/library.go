package varlib

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	libraryFilePermissionsConstant     = 0o644
	libraryReadErrorTemplateConstant   = "unable to read variable library %s: %w"
	libraryParseErrorTemplateConstant  = "unable to parse variable library %s: %w"
	libraryWriteErrorTemplateConstant  = "unable to write variable library %s: %w"
	documentIndentationConstant        = "  "
	documentEntryIndentationConstant   = documentIndentationConstant + documentIndentationConstant
	documentFieldIndentationConstant   = documentEntryIndentationConstant + documentIndentationConstant
	schemaFieldNameConstant            = "$schema"
	variablesFieldNameConstant         = "variables"
	variableNameFieldNameConstant      = "name"
	variableNoteFieldNameConstant      = "note"
	variableTypeFieldNameConstant      = "type"
	variableValueFieldNameConstant     = "value"
	documentTrailingNewlineConstant    = "\n"
)

// Library is the full persisted variable library document.
type Library struct {
	SchemaURL string     `json:"$schema"`
	Variables []Variable `json:"variables"`
}

// NewLibrary builds a library document around the provided variables using the
// default schema identifier.
func NewLibrary(libraryVariables []Variable) Library {
	return Library{
		SchemaURL: DefaultSchemaURL,
		Variables: libraryVariables,
	}
}

// LoadLibrary reads a library document from disk. A missing file is not an
// error: it yields an empty library so first runs start from a clean document.
func LoadLibrary(libraryFilePath string) (Library, error) {
	documentBytes, readError := os.ReadFile(libraryFilePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return NewLibrary(nil), nil
		}
		return Library{}, fmt.Errorf(libraryReadErrorTemplateConstant, libraryFilePath, readError)
	}

	var loadedLibrary Library
	if parseError := json.Unmarshal(documentBytes, &loadedLibrary); parseError != nil {
		return Library{}, fmt.Errorf(libraryParseErrorTemplateConstant, libraryFilePath, parseError)
	}

	if len(strings.TrimSpace(loadedLibrary.SchemaURL)) == 0 {
		loadedLibrary.SchemaURL = DefaultSchemaURL
	}

	return loadedLibrary, nil
}

// SaveLibrary renders the document canonically and overwrites the target file
// in full. There is no partial update: the read-merge-write cycle always
// persists the complete document.
func SaveLibrary(libraryFilePath string, libraryDocument Library) error {
	renderedDocument := RenderDocument(libraryDocument)
	if writeError := os.WriteFile(libraryFilePath, []byte(renderedDocument), libraryFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(libraryWriteErrorTemplateConstant, libraryFilePath, writeError)
	}
	return nil
}

// RenderDocument produces the canonical textual form of a library document.
// The workspace Git integration diffs the committed file, so field order,
// indentation, and escaping must stay stable across runs; encoding/json is
// still used for parsing, but emission goes through EscapeValue to guarantee
// the exact escape sequences the platform writes.
func RenderDocument(libraryDocument Library) string {
	schemaURL := libraryDocument.SchemaURL
	if len(strings.TrimSpace(schemaURL)) == 0 {
		schemaURL = DefaultSchemaURL
	}

	var documentBuilder strings.Builder
	documentBuilder.WriteString("{\n")
	documentBuilder.WriteString(fmt.Sprintf("%s%q: %q,\n", documentIndentationConstant, schemaFieldNameConstant, schemaURL))
	documentBuilder.WriteString(fmt.Sprintf("%s%q: [", documentIndentationConstant, variablesFieldNameConstant))

	for variableIndex, libraryVariable := range libraryDocument.Variables {
		if variableIndex > 0 {
			documentBuilder.WriteString(",")
		}
		documentBuilder.WriteString("\n")
		documentBuilder.WriteString(documentEntryIndentationConstant + "{\n")
		documentBuilder.WriteString(renderStringField(variableNameFieldNameConstant, libraryVariable.Name, true))
		documentBuilder.WriteString(renderStringField(variableNoteFieldNameConstant, libraryVariable.Note, true))
		documentBuilder.WriteString(renderStringField(variableTypeFieldNameConstant, libraryVariable.Type, true))
		documentBuilder.WriteString(renderStringField(variableValueFieldNameConstant, libraryVariable.Value, false))
		documentBuilder.WriteString(documentEntryIndentationConstant + "}")
	}

	if len(libraryDocument.Variables) > 0 {
		documentBuilder.WriteString("\n" + documentIndentationConstant)
	}
	documentBuilder.WriteString("]\n")
	documentBuilder.WriteString("}" + documentTrailingNewlineConstant)

	return documentBuilder.String()
}

func renderStringField(fieldName string, fieldValue string, trailingComma bool) string {
	fieldSuffix := documentTrailingNewlineConstant
	if trailingComma {
		fieldSuffix = "," + documentTrailingNewlineConstant
	}
	return fmt.Sprintf("%s\"%s\": \"%s\"%s", documentFieldIndentationConstant, fieldName, EscapeValue(fieldValue), fieldSuffix)
}
