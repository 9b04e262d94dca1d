package varlib

import "strings"

const (
	backslashLiteralConstant      = `\`
	backslashEscapedConstant      = `\\`
	doubleQuoteLiteralConstant    = `"`
	doubleQuoteEscapedConstant    = `\"`
	newlineLiteralConstant        = "\n"
	newlineEscapedConstant        = `\n`
	carriageReturnLiteralConstant = "\r"
	carriageReturnEscapedConstant = `\r`
	tabLiteralConstant            = "\t"
	tabEscapedConstant            = `\t`
)

// EscapeValue prepares a raw value for embedding inside a JSON string
// literal. Backslashes must be escaped before quotes and control characters;
// reversing the order would double-escape the sequences introduced later.
func EscapeValue(rawValue string) string {
	escapedValue := strings.ReplaceAll(rawValue, backslashLiteralConstant, backslashEscapedConstant)
	escapedValue = strings.ReplaceAll(escapedValue, doubleQuoteLiteralConstant, doubleQuoteEscapedConstant)
	escapedValue = strings.ReplaceAll(escapedValue, newlineLiteralConstant, newlineEscapedConstant)
	escapedValue = strings.ReplaceAll(escapedValue, carriageReturnLiteralConstant, carriageReturnEscapedConstant)
	escapedValue = strings.ReplaceAll(escapedValue, tabLiteralConstant, tabEscapedConstant)
	return escapedValue
}
