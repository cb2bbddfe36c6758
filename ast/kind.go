// Copyright © 2024 The ELPS authors

package ast

// Kind identifies the syntactic category of a node, token or trivia item.
// Node kinds use the tree-sitter TypeScript grammar names; anonymous tokens
// use their literal text (e.g. "{" or "static").
type Kind string

// Synthetic kinds produced by the tree builder.
const (
	KindEndOfFile Kind = "end_of_file"
	KindJSDoc     Kind = "jsdoc"
)

// Trivia kinds produced by the trivia scanner.
const (
	KindWhitespaceTrivia  Kind = "whitespace_trivia"
	KindNewLineTrivia     Kind = "newline_trivia"
	KindSingleLineComment Kind = "single_line_comment"
	KindMultiLineComment  Kind = "multi_line_comment"
	KindShebangTrivia     Kind = "shebang_trivia"
	KindConflictMarker    Kind = "conflict_marker_trivia"
	KindTextTrivia        Kind = "text_trivia"
	KindUnknownTrivia     Kind = "unknown_trivia"
)

// Structural kinds referenced by the walker and the built-in rules.
const (
	KindProgram               Kind = "program"
	KindComment               Kind = "comment"
	KindHTMLComment           Kind = "html_comment"
	KindIdentifier            Kind = "identifier"
	KindPropertyIdentifier    Kind = "property_identifier"
	KindTypeIdentifier        Kind = "type_identifier"
	KindString                Kind = "string"
	KindRegex                 Kind = "regex"
	KindTemplateString        Kind = "template_string"
	KindTemplateSubstitution  Kind = "template_substitution"
	KindJsxElement            Kind = "jsx_element"
	KindJsxOpeningElement     Kind = "jsx_opening_element"
	KindJsxClosingElement     Kind = "jsx_closing_element"
	KindJsxSelfClosingElement Kind = "jsx_self_closing_element"
	KindJsxExpression         Kind = "jsx_expression"
	KindJsxText               Kind = "jsx_text"
	KindClassDeclaration      Kind = "class_declaration"
	KindAbstractClass         Kind = "abstract_class_declaration"
	KindClass                 Kind = "class"
	KindClassBody             Kind = "class_body"
	KindMethodDefinition      Kind = "method_definition"
	KindMethodSignature       Kind = "method_signature"
	KindAbstractMethod        Kind = "abstract_method_signature"
	KindFieldDefinition       Kind = "public_field_definition"
	KindPropertySignature     Kind = "property_signature"
	KindFunctionDeclaration   Kind = "function_declaration"
	KindGeneratorDeclaration  Kind = "generator_function_declaration"
	KindFunctionSignature     Kind = "function_signature"
	KindFunction              Kind = "function_expression"
	KindArrowFunction         Kind = "arrow_function"
	KindInterfaceDeclaration  Kind = "interface_declaration"
	KindEnumDeclaration       Kind = "enum_declaration"
	KindTypeAliasDeclaration  Kind = "type_alias_declaration"
	KindInternalModule        Kind = "internal_module"
	KindModule                Kind = "module"
	KindAmbientDeclaration    Kind = "ambient_declaration"
	KindLexicalDeclaration    Kind = "lexical_declaration"
	KindVariableDeclaration   Kind = "variable_declaration"
	KindVariableDeclarator    Kind = "variable_declarator"
	KindExportStatement       Kind = "export_statement"
	KindExpressionStatement   Kind = "expression_statement"
	KindStatementBlock        Kind = "statement_block"
	KindCallExpression        Kind = "call_expression"
	KindMemberExpression      Kind = "member_expression"
	KindArguments             Kind = "arguments"
	KindParenthesized         Kind = "parenthesized_expression"
	KindAssignment            Kind = "assignment_expression"
	KindAugmentedAssignment   Kind = "augmented_assignment_expression"
	KindObject                Kind = "object"
	KindAccessibilityModifier Kind = "accessibility_modifier"
	KindOverrideModifier      Kind = "override_modifier"
	KindForStatement          Kind = "for_statement"
	KindForInStatement        Kind = "for_in_statement"
	KindCatchClause           Kind = "catch_clause"
	KindSwitchBody            Kind = "switch_body"
)

// Anonymous token kinds.
const (
	KindOpenBrace   Kind = "{"
	KindCloseBrace  Kind = "}"
	KindLessThan    Kind = "<"
	KindGreaterThan Kind = ">"
	KindBacktick    Kind = "`"
	KindDollarBrace Kind = "${"
	KindComma       Kind = ","
	KindStatic      Kind = "static"
	KindPublic      Kind = "public"
	KindPrivate     Kind = "private"
	KindProtected   Kind = "protected"
	KindReadonly    Kind = "readonly"
	KindAbstract    Kind = "abstract"
	KindAsync       Kind = "async"
	KindDeclare     Kind = "declare"
	KindExport      Kind = "export"
	KindDefault     Kind = "default"
	KindOverride    Kind = "override"
)

// IsTrivia reports whether k is produced by the trivia scanner.
func (k Kind) IsTrivia() bool {
	switch k {
	case KindWhitespaceTrivia, KindNewLineTrivia, KindSingleLineComment,
		KindMultiLineComment, KindShebangTrivia, KindConflictMarker,
		KindTextTrivia, KindUnknownTrivia:
		return true
	}
	return false
}

// IsComment reports whether k is a single or multi line comment.
func (k Kind) IsComment() bool {
	return k == KindSingleLineComment || k == KindMultiLineComment
}

func (k Kind) String() string {
	return string(k)
}
