package errors

// Code represents an error code
type Code string

const (
	CodeUnknown              Code = "UNKNOWN"               // Unknown error occurred
	CodeUsage                Code = "USAGE_ERROR"           // Invalid command line usage
	CodeConfigurationInvalid Code = "CONFIGURATION_INVALID" // Configuration invalid
	CodeCommandFailed        Code = "COMMAND_FAILED"        // External command exited non-zero
	CodeParseFailed          Code = "PARSE_FAILED"          // External command output could not be parsed
	CodeToolNotFound         Code = "TOOL_NOT_FOUND"        // External executable not on PATH
)

// parents lists the codes a code is a specialisation of.
var parents = map[Code]Code{
	CodeParseFailed:  CodeCommandFailed,
	CodeToolNotFound: CodeCommandFailed,
}

// IsA reports whether c equals target or is a specialisation of it.
func (c Code) IsA(target Code) bool {
	for cur := c; cur != ""; cur = parents[cur] {
		if cur == target {
			return true
		}
	}
	return false
}
