package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "securehls.dev/pkg/securehls/internal/model"
)

func tokenTexts(tokens []m.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Text)
	}

	return out
}

func TestLocalCSourceAdapter_Tokenize(t *testing.T) {
	adapter := NewLocalCSourceAdapter()

	src := "for (int k = 0; k <= TAPS; ++k) {\n    acc += h[k] * x[idx]; // read\n}\n"

	tokens, err := adapter.Tokenize(context.Background(), "fir.c", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"for", "(", "int", "k", "=", "0", ";", "k", "<=", "TAPS", ";", "++", "k", ")", "{",
		"acc", "+=", "h", "[", "k", "]", "*", "x", "[", "idx", "]", ";",
		"}",
	}, tokenTexts(tokens))

	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[15].Line)
	assert.Equal(t, m.TokenNumber, tokens[5].Kind)
	assert.Equal(t, m.TokenPunct, tokens[8].Kind)
	assert.Equal(t, "acc", src[tokens[15].Offset:tokens[15].End()])
}

func TestLocalCSourceAdapter_SkipsComments(t *testing.T) {
	adapter := NewLocalCSourceAdapter()

	src := "/* fir_buggy\n spans lines */ int a; // fir_buggy\nint b;"

	tokens, err := adapter.Tokenize(context.Background(), "c.c", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"int", "a", ";", "int", "b", ";"}, tokenTexts(tokens))
	assert.Equal(t, 2, tokens[0].Line)
	assert.Equal(t, 3, tokens[3].Line)
}

func TestLocalCSourceAdapter_Directives(t *testing.T) {
	adapter := NewLocalCSourceAdapter()

	src := "#include <stddef.h>\n#define N 16\nfloat A[N];\n"

	tokens, err := adapter.Tokenize(context.Background(), "d.c", []byte(src))
	require.NoError(t, err)

	var directive, code []string

	for _, tok := range tokens {
		if tok.Directive {
			directive = append(directive, tok.Text)
		} else {
			code = append(code, tok.Text)
		}
	}

	assert.Equal(t, []string{"#", "include", "<", "stddef", ".", "h", ">", "#", "define", "N", "16"}, directive)
	assert.Equal(t, []string{"float", "A", "[", "N", "]", ";"}, code)
}

func TestLocalCSourceAdapter_Literals(t *testing.T) {
	adapter := NewLocalCSourceAdapter()

	src := `printf("a[i] \"quoted\"\n"); c = 'x'; f = 1.5e-3f; h = 0x1F;`

	tokens, err := adapter.Tokenize(context.Background(), "l.c", []byte(src))
	require.NoError(t, err)

	texts := tokenTexts(tokens)
	assert.Contains(t, texts, `"a[i] \"quoted\"\n"`)
	assert.Contains(t, texts, `'x'`)
	assert.Contains(t, texts, "1.5e-3f")
	assert.Contains(t, texts, "0x1F")
	assert.NotContains(t, texts, "i")
}

func TestLocalCSourceAdapter_Errors(t *testing.T) {
	adapter := NewLocalCSourceAdapter()

	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unterminated comment", "int a;\n/* never closed", 2},
		{"unterminated string", "int a;\nchar *s = \"open\n;", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.Tokenize(context.Background(), "bad.c", []byte(tt.src))
			require.Error(t, err)

			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.line, lexErr.Line)
			assert.Equal(t, "bad.c", lexErr.File)
		})
	}
}

func TestLocalCSourceAdapter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalCSourceAdapter().Tokenize(ctx, "x.c", []byte("int a;"))
	require.ErrorIs(t, err, context.Canceled)
}
