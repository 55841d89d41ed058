package lumen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src).Tokenize()
	require.NoError(t, err)
	return toks
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexerAlwaysEndsInEOF(t *testing.T) {
	toks := lexAll(t, "1 + 2")
	require.Equal(t, TokenEOF, toks[len(toks)-1].Kind)
}

func TestLexerEmptySource(t *testing.T) {
	toks := lexAll(t, "")
	require.Len(t, toks, 1)
	require.Equal(t, TokenEOF, toks[0].Kind)
}

func TestLexerNumericLiterals(t *testing.T) {
	toks := lexAll(t, "42 3.14 0 0.5")
	require.Equal(t, []TokenKind{TokenNumber, TokenNumber, TokenNumber, TokenNumber, TokenEOF}, kinds(toks))
	require.Equal(t, 42.0, toks[0].Payload.Number)
	require.Equal(t, 3.14, toks[1].Payload.Number)
	require.Equal(t, 0.5, toks[3].Payload.Number)
}

func TestLexerStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\t\"c\\d"`)
	require.Equal(t, TokenString, toks[0].Kind)
	require.Equal(t, "a\nb\t\"c\\d", toks[0].Payload.Str)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := NewLexer(`"unterminated`).Tokenize()
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestLexerUnknownEscape(t *testing.T) {
	_, err := NewLexer(`"bad\qescape"`).Tokenize()
	require.Error(t, err)
}

func TestLexerKeywordsCarryPayload(t *testing.T) {
	toks := lexAll(t, "true false null undefined")
	require.True(t, toks[0].Payload.Bool)
	require.False(t, toks[1].Payload.Bool)
	require.True(t, toks[2].Payload.IsNull)
	require.True(t, toks[3].Payload.IsNull)
}

func TestLexerIdentifierVsKeyword(t *testing.T) {
	toks := lexAll(t, "let letter and_also")
	require.Equal(t, TokenKeyword, toks[0].Kind)
	require.Equal(t, TokenIdent, toks[1].Kind)
	require.Equal(t, "letter", toks[1].Lexeme)
	require.Equal(t, TokenIdent, toks[2].Kind)
	require.Equal(t, "and_also", toks[2].Lexeme)
}

func TestLexerLineCommentsAreElided(t *testing.T) {
	toks := lexAll(t, "1 // this is a comment\n+ 2")
	require.Equal(t, []TokenKind{TokenNumber, TokenPlus, TokenNumber, TokenEOF}, kinds(toks))
}

func TestLexerNewlinesDoNotTerminateStatements(t *testing.T) {
	toks := lexAll(t, "1 +\n2")
	require.Equal(t, []TokenKind{TokenNumber, TokenPlus, TokenNumber, TokenEOF}, kinds(toks))
}

func TestLexerTwoCharOperatorsPreferredOverOneChar(t *testing.T) {
	toks := lexAll(t, "a == b != c <= d >= e && f || g => h")
	got := kinds(toks)
	want := []TokenKind{
		TokenIdent, TokenEqEq, TokenIdent, TokenNotEq, TokenIdent, TokenLe, TokenIdent,
		TokenGe, TokenIdent, TokenAndAnd, TokenIdent, TokenOrOr, TokenIdent, TokenFatArrow,
		TokenIdent, TokenEOF,
	}
	require.Equal(t, want, got)
}

func TestLexerPunctuators(t *testing.T) {
	toks := lexAll(t, "(){}[],.:;_")
	want := []TokenKind{
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket,
		TokenComma, TokenDot, TokenColon, TokenSemicolon, TokenUnderscore, TokenEOF,
	}
	require.Equal(t, want, kinds(toks))
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	_, err := NewLexer("1 @ 2").Tokenize()
	require.Error(t, err)
}

func TestLexerSpanTracksLineAndColumn(t *testing.T) {
	toks := lexAll(t, "a\nbb")
	// "a" on line 1 col 1; "bb" on line 2 col 1..2
	require.Equal(t, 1, toks[0].Span.Start.Line)
	require.Equal(t, 1, toks[0].Span.Start.Column)
	require.Equal(t, 2, toks[1].Span.Start.Line)
	require.Equal(t, 1, toks[1].Span.Start.Column)
}

func TestLexerUTF8Identifiers(t *testing.T) {
	toks := lexAll(t, "café")
	require.Equal(t, TokenIdent, toks[0].Kind)
	require.Equal(t, "café", toks[0].Lexeme)
}
