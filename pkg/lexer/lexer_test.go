package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextToken_Punctuation(t *testing.T) {
	input := `( ) { } [ ] , . - + ; / *`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenLeftParen, "("},
		{TokenRightParen, ")"},
		{TokenLeftBrace, "{"},
		{TokenRightBrace, "}"},
		{TokenLeftBracket, "["},
		{TokenRightBracket, "]"},
		{TokenComma, ","},
		{TokenDot, "."},
		{TokenMinus, "-"},
		{TokenPlus, "+"},
		{TokenSemicolon, ";"},
		{TokenSlash, "/"},
		{TokenStar, "*"},
		{TokenEOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] token type", i)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] literal", i)
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := `! != = == > >= < <= ->`

	tests := []TokenType{
		TokenBang,
		TokenBangEqual,
		TokenEqual,
		TokenEqualEqual,
		TokenGreater,
		TokenGreaterEqual,
		TokenLess,
		TokenLessEqual,
		TokenArrow,
		TokenEOF,
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		require.Equal(t, expected, tok.Type, "tests[%d]", i)
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := `and else false for fun if nil or print return struct true var while`

	tests := []TokenType{
		TokenAnd, TokenElse, TokenFalse, TokenFor, TokenFun, TokenIf,
		TokenNil, TokenOr, TokenPrint, TokenReturn, TokenStruct,
		TokenTrue, TokenVar, TokenWhile, TokenEOF,
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		require.Equal(t, expected, tok.Type, "tests[%d]", i)
	}
}

func TestNextToken_Identifiers(t *testing.T) {
	input := `foo _bar baz2 whileLoop`

	tests := []string{"foo", "_bar", "baz2", "whileLoop"}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		require.Equal(t, TokenIdentifier, tok.Type, "tests[%d]", i)
		require.Equal(t, expected, tok.Literal, "tests[%d]", i)
	}
}

func TestNextToken_Numbers(t *testing.T) {
	input := `0 42 3.14 10.0`

	tests := []string{"0", "42", "3.14", "10.0"}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		require.Equal(t, TokenNumber, tok.Type, "tests[%d]", i)
		require.Equal(t, expected, tok.Literal, "tests[%d]", i)
	}
}

func TestNextToken_NumberThenDot(t *testing.T) {
	// a trailing dot is not part of the number
	l := New("12.foo")

	tok := l.NextToken()
	require.Equal(t, TokenNumber, tok.Type)
	require.Equal(t, "12", tok.Literal)

	tok = l.NextToken()
	require.Equal(t, TokenDot, tok.Type)

	tok = l.NextToken()
	require.Equal(t, TokenIdentifier, tok.Type)
}

func TestNextToken_Strings(t *testing.T) {
	l := New(`"hello" "two words"`)

	tok := l.NextToken()
	require.Equal(t, TokenString, tok.Type)
	require.Equal(t, `"hello"`, tok.Literal)

	tok = l.NextToken()
	require.Equal(t, TokenString, tok.Type)
	require.Equal(t, `"two words"`, tok.Literal)
}

func TestNextToken_MultilineString(t *testing.T) {
	l := New("\"line one\nline two\" x")

	tok := l.NextToken()
	require.Equal(t, TokenString, tok.Type)

	// the newline inside the string advances the line counter
	tok = l.NextToken()
	require.Equal(t, TokenIdentifier, tok.Type)
	require.Equal(t, 2, tok.Line)
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`"never closed`)

	tok := l.NextToken()
	require.Equal(t, TokenError, tok.Type)
	require.Equal(t, "Unterminated string.", tok.Literal)
}

func TestNextToken_UnexpectedCharacter(t *testing.T) {
	l := New("@")

	tok := l.NextToken()
	require.Equal(t, TokenError, tok.Type)
	require.Equal(t, "Unexpected character.", tok.Literal)
}

func TestNextToken_CommentsAndWhitespace(t *testing.T) {
	input := "// leading comment\nvar x; // trailing comment\n// closing comment"

	l := New(input)

	tok := l.NextToken()
	require.Equal(t, TokenVar, tok.Type)
	require.Equal(t, 2, tok.Line)

	tok = l.NextToken()
	require.Equal(t, TokenIdentifier, tok.Type)

	tok = l.NextToken()
	require.Equal(t, TokenSemicolon, tok.Type)

	tok = l.NextToken()
	require.Equal(t, TokenEOF, tok.Type)
}

func TestNextToken_LineTracking(t *testing.T) {
	input := "one\ntwo\n\nthree"

	l := New(input)
	lines := []int{1, 2, 4}
	for i, line := range lines {
		tok := l.NextToken()
		require.Equal(t, TokenIdentifier, tok.Type, "tests[%d]", i)
		require.Equal(t, line, tok.Line, "tests[%d]", i)
	}
}

func TestTokenize(t *testing.T) {
	tokens := New("print 1 + 2;").Tokenize()

	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	assert.Equal(t, []TokenType{
		TokenPrint, TokenNumber, TokenPlus, TokenNumber, TokenSemicolon, TokenEOF,
	}, types)
}

func TestTokenize_StopsOnError(t *testing.T) {
	tokens := New("a @ b").Tokenize()

	require.Equal(t, TokenError, tokens[len(tokens)-1].Type)
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "IDENTIFIER", TokenIdentifier.String())
	assert.Equal(t, "ARROW", TokenArrow.String())
	assert.Equal(t, "EOF", TokenEOF.String())
}
