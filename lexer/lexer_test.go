package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waveguide-lang/waveguide/token"
)

// TestNextToken exercises the lexer against a program that touches most
// token kinds Waveguide defines; it has no "*", "/", "==", "true" or
// "false", and ILLEGAL is covered by TestIllegalBang.
func TestNextToken(t *testing.T) {
	input := `Int a = 3;
Float b = 2.5;
Int[3] xs = [1, 2, 3];
def add_one(Int x):(Int r) {
    r = x + 1;
}
if (a > 3) {
    a = 100;
} elif (a < 0) {
    a = -1;
} else {
    a = 0;
}
for i in xs {
    a = a + i;
}
while (a < 10) {
    a = a + 1;
}
a = xs[1 + 1];
a = a % 2;
a = a band b bor b bxor b;
a = a and b or b xor b;
a <= b;
a >= b;
a != b;
return a;
// a trailing comment
`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.IDENT, "Int"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.INT, "3"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "Float"},
		{token.IDENT, "b"},
		{token.ASSIGN, "="},
		{token.FLOAT, "2.5"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "Int"},
		{token.LBRACKET, "["},
		{token.INT, "3"},
		{token.RBRACKET, "]"},
		{token.IDENT, "xs"},
		{token.ASSIGN, "="},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.COMMA, ","},
		{token.INT, "3"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.DEF, "def"},
		{token.IDENT, "add_one"},
		{token.LPAREN, "("},
		{token.IDENT, "Int"},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.LPAREN, "("},
		{token.IDENT, "Int"},
		{token.IDENT, "r"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "r"},
		{token.ASSIGN, "="},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.GT, ">"},
		{token.INT, "3"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.INT, "100"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELIF, "elif"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.LT, "<"},
		{token.INT, "0"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.MINUS, "-"},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.INT, "0"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.FOR, "for"},
		{token.IDENT, "i"},
		{token.IN, "in"},
		{token.IDENT, "xs"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "i"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.WHILE, "while"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.IDENT, "xs"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.IDENT, "a"},
		{token.PERCENT, "%"},
		{token.INT, "2"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.IDENT, "a"},
		{token.BAND, "band"},
		{token.IDENT, "b"},
		{token.BOR, "bor"},
		{token.IDENT, "b"},
		{token.BXOR, "bxor"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.IDENT, "a"},
		{token.AND, "and"},
		{token.IDENT, "b"},
		{token.OR, "or"},
		{token.IDENT, "b"},
		{token.XOR, "xor"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.LTE, "<="},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.GTE, ">="},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.NOT_EQ, "!="},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		require.Equalf(t, tt.expectedType, tok.Type, "tests[%d] - wrong token type", i)
		require.Equalf(t, tt.expectedLiteral, tok.Literal, "tests[%d] - wrong literal", i)
	}
}

func TestIllegalBang(t *testing.T) {
	l := New("!")
	tok := l.NextToken()
	require.Equal(t, token.ILLEGAL, tok.Type)
}
