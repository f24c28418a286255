package lexer_test

import (
	"io"
	"testing"

	"github.com/artuross/fnlang/internal/lang/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src string) []*lexer.Token {
	t.Helper()

	lex := lexer.New(src)

	tokens := make([]*lexer.Token, 0)
	for {
		token, err := lex.ReadToken()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		tokens = append(tokens, token)
	}

	return tokens
}

func TestLexer_Punctuation(t *testing.T) {
	values := []string{"+", "-", "*", "/", "=", "(", ")", "{", "}", ",", ":", ";", ".", "->", "==", "<", ">", "<=", ">="}

	for _, value := range values {
		t.Run(value, func(t *testing.T) {
			tokens := readAll(t, value)

			require.Len(t, tokens, 1)
			assert.Equal(t, lexer.TokenPunctuation, tokens[0].Type)
			assert.Equal(t, value, tokens[0].Value)
		})
	}
}

func TestLexer_Number(t *testing.T) {
	tokens := readAll(t, "12345")

	require.Len(t, tokens, 1)
	assert.Equal(t, lexer.TokenNumber, tokens[0].Type)
	assert.Equal(t, "12345", tokens[0].Value)
}

func TestLexer_String(t *testing.T) {
	tokens := readAll(t, `"hello world"`)

	require.Len(t, tokens, 1)
	assert.Equal(t, lexer.TokenString, tokens[0].Type)
	assert.Equal(t, "hello world", tokens[0].Value)
}

func TestLexer_UnterminatedString(t *testing.T) {
	lex := lexer.New(`"unterminated`)

	_, err := lex.ReadToken()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestLexer_DottedIdentifier(t *testing.T) {
	tokens := readAll(t, "a.b.c")

	require.Len(t, tokens, 1)
	assert.Equal(t, lexer.TokenIdentifier, tokens[0].Type)
	assert.Equal(t, "a.b.c", tokens[0].Value)
}

func TestLexer_UnscopedIdentifiers(t *testing.T) {
	lex := lexer.New("Red.Green")
	lex.SetUnscopedIdentifiers(true)

	first, err := lex.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, "Red", first.Value)

	second, err := lex.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, lexer.TokenPunctuation, second.Type)
	assert.Equal(t, ".", second.Value)

	third, err := lex.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, "Green", third.Value)
}

func TestLexer_Keywords(t *testing.T) {
	tokens := readAll(t, "fn let if else while enum object")

	require.Len(t, tokens, 7)
	for _, token := range tokens {
		assert.Equal(t, lexer.TokenIdentifier, token.Type)
	}
}

func TestLexer_WhitespaceAndNewlines(t *testing.T) {
	tokens := readAll(t, "1 \t\r\n  2")

	require.Len(t, tokens, 2)
	assert.Equal(t, "1", tokens[0].Value)
	assert.Equal(t, "2", tokens[1].Value)
	assert.Equal(t, 2, tokens[1].Start.Line)
}

func TestLexer_InvalidCharacter(t *testing.T) {
	lex := lexer.New("@")

	_, err := lex.ReadToken()
	assert.ErrorIs(t, err, lexer.ErrInvalidCharacter)
}

func TestLexer_Sequence(t *testing.T) {
	tokens := readAll(t, `fn main() -> i64 { print("x", 1); }`)

	values := make([]string, 0, len(tokens))
	for _, token := range tokens {
		values = append(values, token.Value)
	}

	assert.Equal(t, []string{
		"fn", "main", "(", ")", "->", "i64", "{",
		"print", "(", "x", ",", "1", ")", ";", "}",
	}, values)
}
