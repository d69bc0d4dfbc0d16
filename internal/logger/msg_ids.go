package logger

// Most non-error log messages are given a message ID that can be used to set
// the log level for that message. Link errors do not get a message ID because
// turning them into non-errors would let a broken graph succeed. Messages that
// are part of verbose output use "MsgID_None" instead.
type MsgID = uint8

const (
	MsgID_None MsgID = iota

	// JavaScript
	MsgID_JS_CallImportNamespace
	MsgID_JS_DirectEval
	MsgID_JS_ThisIsUndefinedInESM

	// Bundler
	MsgID_Bundler_CircularDependency
	MsgID_Bundler_EmptyFacade
	MsgID_Bundler_ImportIsUndefined
	MsgID_Bundler_NamespaceConflict
	MsgID_Bundler_ShimmedExport
	MsgID_Bundler_UnusedExternalImport

	// Resolver
	MsgID_Resolver_InvalidPackageJSON
	MsgID_Resolver_UnresolvedImport

	MsgID_END // Keep this at the end (used only for tests)
)

func StringToMsgIDs(str string, logLevel LogLevel, overrides map[MsgID]LogLevel) {
	switch str {
	// JS
	case "call-import-namespace":
		overrides[MsgID_JS_CallImportNamespace] = logLevel
	case "direct-eval":
		overrides[MsgID_JS_DirectEval] = logLevel
	case "this-is-undefined-in-esm":
		overrides[MsgID_JS_ThisIsUndefinedInESM] = logLevel

	// Bundler
	case "circular-dependency":
		overrides[MsgID_Bundler_CircularDependency] = logLevel
	case "empty-facade":
		overrides[MsgID_Bundler_EmptyFacade] = logLevel
	case "import-is-undefined":
		overrides[MsgID_Bundler_ImportIsUndefined] = logLevel
	case "namespace-conflict":
		overrides[MsgID_Bundler_NamespaceConflict] = logLevel
	case "shimmed-export":
		overrides[MsgID_Bundler_ShimmedExport] = logLevel
	case "unused-external-import":
		overrides[MsgID_Bundler_UnusedExternalImport] = logLevel

	// Resolver
	case "invalid-package-json":
		overrides[MsgID_Resolver_InvalidPackageJSON] = logLevel
	case "unresolved-import":
		overrides[MsgID_Resolver_UnresolvedImport] = logLevel

	default:
		// Ignore invalid entries since this message id may have
		// been renamed/removed since when this code was written
	}
}

func MsgIDToString(id MsgID) string {
	switch id {
	// JS
	case MsgID_JS_CallImportNamespace:
		return "call-import-namespace"
	case MsgID_JS_DirectEval:
		return "direct-eval"
	case MsgID_JS_ThisIsUndefinedInESM:
		return "this-is-undefined-in-esm"

	// Bundler
	case MsgID_Bundler_CircularDependency:
		return "circular-dependency"
	case MsgID_Bundler_EmptyFacade:
		return "empty-facade"
	case MsgID_Bundler_ImportIsUndefined:
		return "import-is-undefined"
	case MsgID_Bundler_NamespaceConflict:
		return "namespace-conflict"
	case MsgID_Bundler_ShimmedExport:
		return "shimmed-export"
	case MsgID_Bundler_UnusedExternalImport:
		return "unused-external-import"

	// Resolver
	case MsgID_Resolver_InvalidPackageJSON:
		return "invalid-package-json"
	case MsgID_Resolver_UnresolvedImport:
		return "unresolved-import"
	}

	return ""
}

// The upper-case codes are what reports and JSON output use to identify a
// warning. They are stable across releases.
func MsgIDToCode(id MsgID) string {
	switch id {
	case MsgID_JS_CallImportNamespace:
		return "CALL_NAMESPACE"
	case MsgID_JS_DirectEval:
		return "EVAL"
	case MsgID_JS_ThisIsUndefinedInESM:
		return "THIS_IS_UNDEFINED"
	case MsgID_Bundler_CircularDependency:
		return "CIRCULAR_DEPENDENCY"
	case MsgID_Bundler_EmptyFacade:
		return "EMPTY_FACADE"
	case MsgID_Bundler_ImportIsUndefined:
		return "IMPORT_IS_UNDEFINED"
	case MsgID_Bundler_NamespaceConflict:
		return "NAMESPACE_CONFLICT"
	case MsgID_Bundler_ShimmedExport:
		return "SHIMMED_EXPORT"
	case MsgID_Bundler_UnusedExternalImport:
		return "UNUSED_EXTERNAL_IMPORT"
	case MsgID_Resolver_InvalidPackageJSON:
		return "INVALID_PACKAGE_JSON"
	case MsgID_Resolver_UnresolvedImport:
		return "UNRESOLVED_IMPORT"
	}
	return ""
}
