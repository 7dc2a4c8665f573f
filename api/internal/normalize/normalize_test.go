package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-extract/api/internal/extract"
)

var inputPolicy = Policy{DefaultText: TextFromInput}

func TestParse_CanonicalRoundTrip(t *testing.T) {
	out := `{"Code":"<p>x</p>","Language":"html","Text":"a paragraph","ImageUrl":"https://img.example/p.png"}`
	r, src := Parse(out, "```python\nprint(1)\n``` https://other.example/o.png", inputPolicy)

	assert.Equal(t, SourceJSON, src)
	assert.Equal(t, "<p>x</p>", extract.Value(r.Code))
	assert.Equal(t, "html", extract.Value(r.Language))
	assert.Equal(t, "a paragraph", extract.Value(r.Text))
	assert.Equal(t, "https://img.example/p.png", extract.Value(r.ImageURL))
}

func TestParse_EmbeddedObject(t *testing.T) {
	out := "Here you go:\n```json\n{\"Code\": null, \"Language\": null, \"Text\": \"a cat\", \"ImageUrl\": null}\n```"
	r, src := Parse(out, "draw a cat", inputPolicy)

	assert.Equal(t, SourceEmbedded, src)
	assert.Equal(t, "a cat", extract.Value(r.Text))
	assert.Nil(t, r.Code)
	assert.Nil(t, r.Language)
	assert.Nil(t, r.ImageURL)
}

func TestParse_FencedObjectIsWholeOutput(t *testing.T) {
	out := "```json\n{\"Code\": \"x = 1\", \"Language\": \"python\", \"Text\": \"assign\", \"ImageUrl\": null}\n```"
	r, src := Parse(out, "set x", inputPolicy)

	assert.Equal(t, SourceJSON, src)
	assert.Equal(t, "x = 1", extract.Value(r.Code))
	assert.Equal(t, "python", extract.Value(r.Language))
	assert.Equal(t, "assign", extract.Value(r.Text))

	_, src = Parse("```\n{\"Text\": \"bare fence\"}\n```", "x", inputPolicy)
	assert.Equal(t, SourceJSON, src)
}

func TestParse_EmbeddedAfterUnclosedBrace(t *testing.T) {
	out := `Here it is { {"Code":"x=1","Language":"python","Text":"assign","ImageUrl":null}`
	r, src := Parse(out, "set x", inputPolicy)

	assert.Equal(t, SourceEmbedded, src)
	assert.Equal(t, "x=1", extract.Value(r.Code))
	assert.Equal(t, "python", extract.Value(r.Language))
}

func TestParse_PlainTextFallback(t *testing.T) {
	out := "I cannot produce JSON today."
	r, src := Parse(out, "draw a cat", inputPolicy)

	assert.Equal(t, SourcePlainText, src)
	assert.Equal(t, out, extract.Value(r.Text))
	assert.Nil(t, r.Code)
	assert.Nil(t, r.Language)
	assert.Nil(t, r.ImageURL)
}

func TestParse_SchemaMismatchIsTreatedAsText(t *testing.T) {
	out := `{"Code": 42, "Text": ["not", "a", "string"]}`
	r, src := Parse(out, "x", inputPolicy)

	assert.Equal(t, SourcePlainText, src)
	assert.Equal(t, out, extract.Value(r.Text))
	assert.Nil(t, r.Code)
}

func TestParse_FillsCodeFromOriginalInput(t *testing.T) {
	out := `{"Code": null, "Language": null, "Text": "prints one", "ImageUrl": null}`
	r, _ := Parse(out, "```python\nprint(1)\n```", inputPolicy)

	assert.Equal(t, "print(1)", extract.Value(r.Code))
	assert.Equal(t, "python", extract.Value(r.Language))
	assert.Equal(t, "prints one", extract.Value(r.Text))
}

func TestParse_KeepsModelLanguageWhenFillingCode(t *testing.T) {
	out := `{"Language": "python3", "Text": "t"}`
	r, _ := Parse(out, "```\ndef f(): pass\n```", inputPolicy)

	assert.Equal(t, "def f(): pass", extract.Value(r.Code))
	assert.Equal(t, "python3", extract.Value(r.Language))
}

func TestParse_HeuristicsUseOriginalNotModelOutput(t *testing.T) {
	out := "see ```go\nfmt.Println()\n``` and https://model.example/m.png"
	r, src := Parse(out, "draw a cat", inputPolicy)

	assert.Equal(t, SourcePlainText, src)
	assert.Nil(t, r.Code)
	assert.Nil(t, r.Language)
	assert.Nil(t, r.ImageURL)
}

func TestParse_ModelCodeIsNotOverridden(t *testing.T) {
	out := `{"Code": "console.log(2)", "Language": "javascript", "Text": "t", "ImageUrl": null}`
	r, _ := Parse(out, "```python\nprint(1)\n```", inputPolicy)

	assert.Equal(t, "console.log(2)", extract.Value(r.Code))
	assert.Equal(t, "javascript", extract.Value(r.Language))
}

func TestParse_ImageFromOriginal(t *testing.T) {
	r, _ := Parse(`{"Text": "a picture"}`, "see https://example.com/pic.png", inputPolicy)
	assert.Equal(t, "https://example.com/pic.png", extract.Value(r.ImageURL))
}

func TestParse_DefaultTextPolicy(t *testing.T) {
	out := `{"Code": "x = 1", "Language": "python", "Text": null, "ImageUrl": null}`

	r, _ := Parse(out, "set x", inputPolicy)
	assert.Equal(t, "set x", extract.Value(r.Text))

	r, _ = Parse(out, "set x", Policy{DefaultText: TextPlaceholder, Placeholder: "(none)"})
	assert.Equal(t, "(none)", extract.Value(r.Text))

	r, _ = Parse(out, "set x", Policy{DefaultText: TextPlaceholder})
	assert.Equal(t, DefaultPlaceholder, extract.Value(r.Text))
}

func TestParse_BlankStringsAreAbsent(t *testing.T) {
	r, _ := Parse(`{"Code": "  ", "Language": "", "Text": "", "ImageUrl": ""}`, "hello", inputPolicy)
	assert.Nil(t, r.Code)
	assert.Nil(t, r.Language)
	assert.Nil(t, r.ImageURL)
	assert.Equal(t, "hello", extract.Value(r.Text))
}

func TestNormalize_Idempotent(t *testing.T) {
	cases := [][2]string{
		{`{"Text":"x"}`, "```js\na()\n```"},
		{"plain words", "see https://example.com/pic.png"},
		{`noise {"Code":"<b>x</b>"} noise`, "<b>x</b>"},
	}
	for _, c := range cases {
		a := Normalize(c[0], c[1], inputPolicy)
		b := Normalize(c[0], c[1], inputPolicy)
		require.Equal(t, a, b)
	}
}

func TestNormalize_EmptyOutput(t *testing.T) {
	r := Normalize("", "draw a cat", inputPolicy)
	assert.Nil(t, r.Code)
	assert.Nil(t, r.Language)
	assert.Nil(t, r.ImageURL)
	assert.Equal(t, "draw a cat", extract.Value(r.Text))
}
