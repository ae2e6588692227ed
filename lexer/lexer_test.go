package lexer

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/reltable-lang/reltablec"
)

func TestTokenCounts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "reltable.lexer")
	defer teardown()

	l, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	cases := []struct {
		src   string
		count int // token count excluding the trailing EOF
	}{
		{"x = 5", 3},
		{`print(x)`, 4},
		{"for i in 1..3 { print(i) }", 12},
		{`f = (y) => y + x`, 9},
	}
	for _, c := range cases {
		stream, err := l.Scan("test", []byte(c.src))
		if err != nil {
			t.Fatalf("Scan(%q) failed: %v", c.src, err)
		}
		n := 0
		for {
			tok, err := stream.Next()
			if err != nil {
				t.Fatalf("Next() failed: %v", err)
			}
			if tok.Kind == EOF {
				break
			}
			n++
		}
		if n != c.count {
			t.Errorf("Scan(%q): got %d tokens, want %d", c.src, n, c.count)
		}
	}
}

func TestKeywordsWinOverIdent(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	stream, err := l.Scan("test", []byte("create_table"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	tok, err := stream.Next()
	if err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	if tok.Kind != CREATE_TABLE {
		t.Errorf("expected CREATE_TABLE, got %s", TypeName(tok.Kind))
	}
}

func TestStringLiteralStripsQuotes(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	stream, err := l.Scan("test", []byte(`"hello world"`))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	tok, err := stream.Next()
	if err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	if tok.Val.(string) != "hello world" {
		t.Errorf("Val = %q, want %q", tok.Val, "hello world")
	}
}

var _ reltable.Token = Tok{}
