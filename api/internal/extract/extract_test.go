package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFencedCode(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantOK   bool
		wantLang string
		wantCode string
	}{
		{"tagged", "```python\nprint(1)\n```", true, "python", "print(1)"},
		{"untagged", "look:\n```\n  x := 1  \n```\nbye", true, "", "x := 1"},
		{"inline untagged", "```print(1)```", true, "", "print(1)"},
		{"crlf", "```go\r\nfmt.Println()\r\n```", true, "go", "fmt.Println()"},
		{"first of many", "```js\na()\n```\n```py\nb()\n```", true, "js", "a()"},
		{"empty body", "```\n\n```", false, "", ""},
		{"no fence", "draw a cat", false, "", ""},
		{"unclosed", "```python\nprint(1)", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := ExtractFencedCode(tt.in)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLang, f.Language)
			assert.Equal(t, tt.wantCode, f.Code)
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"<div>hi</div>":                 "html",
		"function f() { return 1 }":     "javascript",
		"console.log('x')":              "javascript",
		"const f = (a) => a * 2":        "javascript",
		"def f(x):\n    return x":       "python",
		"import numpy from somewhere":   "python",
		"#include <stdio.h>":            "c",
		"int main(void) { return 0; }":  "c",
		"SELECT * FROM users":           "unknown",
		"":                              "unknown",
		"  <p>leading space</p>":        "html",
		"def handler(): console.log(1)": "javascript",
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectLanguage(in), in)
	}
}

func TestExtractHTMLSnippet(t *testing.T) {
	t.Run("no tag", func(t *testing.T) {
		for _, in := range []string{"plain text", "a < b > c", "1 <2", ""} {
			_, ok := ExtractHTMLSnippet(in)
			assert.False(t, ok, in)
		}
	})

	t.Run("balanced pair", func(t *testing.T) {
		got, ok := ExtractHTMLSnippet(`make this: <div class="a"><b>hi</b></div> please`)
		require.True(t, ok)
		assert.Equal(t, `<div class="a"><b>hi</b></div>`, got)
	})

	t.Run("non-greedy", func(t *testing.T) {
		got, ok := ExtractHTMLSnippet("<p>one</p> and <p>two</p>")
		require.True(t, ok)
		assert.Equal(t, "<p>one</p>", got)
	})

	t.Run("first closed tag wins", func(t *testing.T) {
		got, ok := ExtractHTMLSnippet("<br><span>x</SPAN>")
		require.True(t, ok)
		assert.Equal(t, "<span>x</SPAN>", got)
	})

	t.Run("falls back to first lt to last gt", func(t *testing.T) {
		got, ok := ExtractHTMLSnippet(`use <img src="a.png"> then compare x > y`)
		require.True(t, ok)
		assert.Equal(t, `<img src="a.png"> then compare x >`, got)
	})

	t.Run("close before open is ignored", func(t *testing.T) {
		got, ok := ExtractHTMLSnippet("</li> <ul><li>a</li></ul>")
		require.True(t, ok)
		assert.Equal(t, "<ul><li>a</li></ul>", got)
	})

	t.Run("many unclosed tags", func(t *testing.T) {
		in := strings.Repeat("<a>", 350000)
		start := time.Now()
		got, ok := ExtractHTMLSnippet(in)
		assert.Less(t, time.Since(start), 5*time.Second)
		require.True(t, ok)
		assert.Equal(t, in, got)
	})

	t.Run("many unclosed tags then one pair", func(t *testing.T) {
		in := strings.Repeat("<i>", 100000) + "<b>x</b>"
		start := time.Now()
		got, ok := ExtractHTMLSnippet(in)
		assert.Less(t, time.Since(start), 5*time.Second)
		require.True(t, ok)
		assert.Equal(t, "<b>x</b>", got)
	})
}

func TestBestEffortTagSpan(t *testing.T) {
	got, ok := BestEffortTagSpan("x <a> y <b> z")
	require.True(t, ok)
	assert.Equal(t, "<a> y <b>", got)

	_, ok = BestEffortTagSpan("> then <")
	assert.False(t, ok)
}

func TestExtractImageURL(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"![a](https://x.png)", "https://x.png", true},
		{`![cat](https://cdn.example.com/cat.JPG "title")`, "https://cdn.example.com/cat.JPG", true},
		{"see https://example.com/pic.png", "https://example.com/pic.png", true},
		{"see https://example.com/pic.png.", "https://example.com/pic.png", true},
		{"(https://a.io/x.webp) and https://a.io/y.gif", "https://a.io/x.webp", true},
		{"icon at https://a.io/i.svg?v=2 now", "https://a.io/i.svg", true},
		{"https://example.com/page.html", "", false},
		{"draw a cat", "", false},
		{"https://a.io/y.gif ![m](https://a.io/md.png)", "https://a.io/md.png", true},
	}
	for _, tt := range tests {
		got, ok := ExtractImageURL(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestWrapCodeAsCommentStyle(t *testing.T) {
	assert.Equal(t, "", WrapCodeAsCommentStyle(""))
	assert.Equal(t, "print(1)", WrapCodeAsCommentStyle("print(1)"))
	assert.Equal(t, "<!-- <b>x</b> -->", WrapCodeAsCommentStyle("<b>x</b>"))
	assert.Equal(t, "<!-- <b>x</b> -->", WrapCodeAsCommentStyle("<!-- <b>x</b> -->"))

	wrapped := WrapCodeAsCommentStyle("<p>hi</p>")
	assert.Equal(t, wrapped, WrapCodeAsCommentStyle(wrapped))
	assert.Equal(t, "<p>hi</p>", StripCommentStyle(wrapped))
	assert.Equal(t, "print(1)", StripCommentStyle("print(1)"))
}

func TestHeuristic(t *testing.T) {
	t.Run("nothing found", func(t *testing.T) {
		r := Heuristic("draw a cat")
		assert.Nil(t, r.Code)
		assert.Nil(t, r.Language)
		assert.Nil(t, r.Text)
		assert.Nil(t, r.ImageURL)
		assert.False(t, r.HasCode())
	})

	t.Run("fenced with detected language", func(t *testing.T) {
		r := Heuristic("```\nconsole.log(1)\n```")
		require.True(t, r.HasCode())
		assert.Equal(t, "console.log(1)", Value(r.Code))
		assert.Equal(t, "javascript", Value(r.Language))
	})

	t.Run("fence beats html", func(t *testing.T) {
		r := Heuristic("<b>x</b>\n```python\nprint(1)\n```")
		assert.Equal(t, "print(1)", Value(r.Code))
		assert.Equal(t, "python", Value(r.Language))
	})

	t.Run("html snippet", func(t *testing.T) {
		r := Heuristic("center this <div>box</div>")
		assert.Equal(t, "<div>box</div>", Value(r.Code))
		assert.Equal(t, "html", Value(r.Language))
	})

	t.Run("image", func(t *testing.T) {
		r := Heuristic("see https://example.com/pic.png")
		assert.Equal(t, "https://example.com/pic.png", Value(r.ImageURL))
		assert.Nil(t, r.Code)
	})
}

func TestCodeStyle(t *testing.T) {
	s, ok := ParseCodeStyle(" WRAP ")
	require.True(t, ok)
	assert.Equal(t, CodeStyleWrap, s)
	assert.Equal(t, "<!-- <i>a</i> -->", s.Apply("<i>a</i>"))

	s, ok = ParseCodeStyle("")
	require.True(t, ok)
	assert.Equal(t, "<!-- <i>a</i> -->", s.Apply("<!-- <i>a</i> -->"))

	assert.Equal(t, "<i>a</i>", CodeStyleStrip.Apply("<!-- <i>a</i> -->"))

	_, ok = ParseCodeStyle("shout")
	assert.False(t, ok)
}
