// Copyright © 2024 The ELPS authors

package astutil

import (
	"context"
	"testing"

	"github.com/luthersystems/tslint/ast"
	"github.com/luthersystems/tslint/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSDoc(t *testing.T) {
	doc := ParseJSDoc("/**\n * Adds things.\n * More text.\n * @deprecated use sum\n *   instead\n * @internal\n */")
	assert.Equal(t, "Adds things.\nMore text.", doc.Text)
	require.Len(t, doc.Tags, 2)
	assert.Equal(t, JSDocTag{Name: "deprecated", Text: "use sum instead"}, doc.Tags[0])
	assert.Equal(t, JSDocTag{Name: "internal"}, doc.Tags[1])
	assert.False(t, doc.IsEmpty())

	tag, ok := doc.Tag("internal")
	assert.True(t, ok)
	assert.Equal(t, "internal", tag.Name)
	_, ok = doc.Tag("param")
	assert.False(t, ok)
}

func TestParseJSDoc_Empty(t *testing.T) {
	assert.True(t, ParseJSDoc("/** */").IsEmpty())
	assert.True(t, ParseJSDoc("/**\n *\n */").IsEmpty())
	assert.False(t, ParseJSDoc("/** @public */").IsEmpty())
}

func TestIsJSDoc(t *testing.T) {
	assert.True(t, IsJSDoc("/** x */"))
	assert.False(t, IsJSDoc("/**/"))
	assert.False(t, IsJSDoc("/* x */"))
}

func TestComments_ParsedDocBlocksOnce(t *testing.T) {
	src := "/** Doc. */\nexport class Foo {\n  /** m */\n  m() {} // t\n}\n"
	f, err := parser.ParseFile(context.Background(), "a.ts", []byte(src))
	require.NoError(t, err)

	var texts []string
	ForEachComment(f.Root(), func(text string, _ ast.Kind, pos ast.TokenPosition) {
		texts = append(texts, text[pos.TokenStart:pos.End])
	})
	assert.Equal(t, []string{"/** Doc. */", "/** m */", "// t"}, texts)

	var methods []ast.Node
	WalkKinds(f.Root(), func(n ast.Node) { methods = append(methods, n) }, ast.KindMethodDefinition)
	require.Len(t, methods, 1)
	doc, ok := DocComment(methods[0])
	require.True(t, ok)
	assert.Equal(t, "m", doc.Text)
}

func TestDocComment_ExportedClass(t *testing.T) {
	src := "/** first */\n/* plain */\n/** Docs. */\nexport class A {}\n"
	f := newTree(t, src).
		open(ast.KindExportStatement).
		punct("export").
		open(ast.KindClassDeclaration).
		punct("class").tok(ast.KindTypeIdentifier, "A").
		open(ast.KindClassBody).punct("{", "}").close().
		close().
		close().
		finish()

	class := f.Root().Child(0).Child(1)
	docs := JSDocComments(class)
	require.Len(t, docs, 2)
	assert.Equal(t, "first", docs[0].Text)

	doc, ok := DocComment(class)
	require.True(t, ok)
	assert.Equal(t, "Docs.", doc.Text)
	assert.Equal(t, "/** Docs. */", doc.Range.Text(src))
}

func TestDocComment_VariableAndDecorator(t *testing.T) {
	src := "x;\n/** v */\nconst a = 1;\nclass C {\n  /** m */\n  @dec\n  m() {}\n}\n"
	f := newTree(t, src).
		open(ast.KindExpressionStatement).tok(ast.KindIdentifier, "x").punct(";").close().
		open(ast.KindLexicalDeclaration).
		punct("const").
		open(ast.KindVariableDeclarator).tok(ast.KindIdentifier, "a").punct("=").tok("number", "1").close().
		punct(";").
		close().
		open(ast.KindClassDeclaration).
		punct("class").tok(ast.KindTypeIdentifier, "C").
		open(ast.KindClassBody).
		punct("{").
		open("decorator").punct("@").tok(ast.KindIdentifier, "dec").close().
		open(ast.KindMethodDefinition).
		tok(ast.KindPropertyIdentifier, "m").
		open("formal_parameters").punct("(", ")").close().
		open(ast.KindStatementBlock).punct("{", "}").close().
		close().
		punct("}").
		close().
		close().
		finish()

	declarator := f.Root().Child(1).Child(1)
	require.Equal(t, ast.KindVariableDeclarator, declarator.Kind())
	doc, ok := DocComment(declarator)
	require.True(t, ok)
	assert.Equal(t, "v", doc.Text)

	method := f.Root().Child(2).Child(2).Child(2)
	require.Equal(t, ast.KindMethodDefinition, method.Kind())
	doc, ok = DocComment(method)
	require.True(t, ok)
	assert.Equal(t, "m", doc.Text)

	_, ok = DocComment(f.Root().Child(0))
	assert.False(t, ok)
}

func TestHasCommentAfterPosition(t *testing.T) {
	assert.True(t, HasCommentAfterPosition("a; // x\nb", 2))
	assert.True(t, HasCommentAfterPosition("a;\n// x\nb", 2))
	assert.False(t, HasCommentAfterPosition("a;\nb // x", 2))
}
