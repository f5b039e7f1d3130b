package treesitter

// Node kinds and field names consumed from the Perl tree-sitter grammar,
// enumerated in spec.md §6.3. The grammar itself is an opaque dependency;
// this file is the one place that names its vocabulary, so a grammar
// upgrade only needs to touch here.
const (
	KindFunctionDefinition = "function_definition"

	KindCallWithArgsWithBrackets    = "call_expression_with_args_with_brackets"
	KindCallWithArgsWithoutBrackets = "call_expression_with_args_without_brackets"
	KindCallWithVariable            = "call_expression_with_variable"
	KindCallWithSpacedArgs          = "call_expression_with_spaced_args"
	KindCallRecursive                = "call_expression_recursive"
	KindMethodInvocation             = "method_invocation"

	KindPackageStatement = "package_statement"
	KindPackageName      = "package_name"

	KindUseNoStatement        = "use_no_statement"
	KindUseNoIfStatement      = "use_no_if_statement"
	KindBarewordImport        = "bareword_import"
	KindUseNoSubsStatement    = "use_no_subs_statement"
	KindUseNoFeatureStatement = "use_no_feature_statement"
	KindUseNoVersion          = "use_no_version"
	KindWordListQw            = "word_list_qw"

	KindScalarVariable        = "scalar_variable"
	KindArrayVariable         = "array_variable"
	KindHashVariable          = "hash_variable"
	KindSpecialScalarVariable = "special_scalar_variable"
	KindTypeglob              = "typeglob"

	KindBlock = "block"
	KindScope = "scope"
)

// FieldName is the field name a declaration or call-site name identifier
// hangs off of.
const (
	FieldName         = "name"
	FieldFunctionName = "function_name"
	FieldPackageName  = "package_name"
)

// CallExpressionKinds is the full node-kind set C2's single pass visits
// (spec.md §4.2), excluding function_definition which is handled
// separately since its name field differs.
var CallExpressionKinds = map[string]struct{}{
	KindCallWithArgsWithBrackets:    {},
	KindCallWithArgsWithoutBrackets: {},
	KindCallWithVariable:            {},
	KindCallWithSpacedArgs:          {},
	KindCallRecursive:               {},
	KindMethodInvocation:            {},
}

// ExtractorVisitKinds is the complete node-kind set C2 visits.
var ExtractorVisitKinds = func() map[string]struct{} {
	m := make(map[string]struct{}, len(CallExpressionKinds)+1)
	for k := range CallExpressionKinds {
		m[k] = struct{}{}
	}
	m[KindFunctionDefinition] = struct{}{}
	return m
}()

// IsVariableKind reports whether kind has the `_variable` suffix spec.md
// §4.5 uses to classify a query node as a variable rather than a
// function identifier.
func IsVariableKind(kind string) bool {
	const suffix = "_variable"
	if len(kind) <= len(suffix) {
		return false
	}
	return kind[len(kind)-len(suffix):] == suffix
}
