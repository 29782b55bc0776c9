package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromHTML(t *testing.T) {
	page := `<html><head><title> Daily Claims </title><script>var x = "The script text should never appear here.";</script></head>
<body>
<nav>Home About Contact and a long navigation sentence that is ignored.</nav>
<p>Vaccines contain demons according to a viral post this week.</p>
<p>The committee published its annual budget report on Monday.</p>
<p>Short one.</p>
<style>.a { color: red; } and this style text is also ignored here.</style>
<p>vaccines contain demons according to a viral post this week.</p>
</body></html>`

	got, err := FromHTML(page)
	if err != nil {
		t.Fatalf("FromHTML failed: %v", err)
	}

	want := []string{
		"Vaccines contain demons according to a viral post this week.",
		"The committee published its annual budget report on Monday.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestFromHTML_PrefersArticle(t *testing.T) {
	page := `<html><body>
<div>This sidebar sentence should not be extracted at all.</div>
<article><p>The article body is the only part that gets classified.</p></article>
</body></html>`

	got, err := FromHTML(page)
	if err != nil {
		t.Fatalf("FromHTML failed: %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "The article body") {
		t.Errorf("expected only article text, got %v", got)
	}
}

func TestExtractor_Bounds(t *testing.T) {
	e := &Extractor{MinLength: 5, MaxLength: 40, MaxStatements: 2}
	page := `<p>One two three. Four five six. This sentence is far too long to be kept by the bounds. Seven eight nine.</p>`

	got, err := e.FromHTML(page)
	if err != nil {
		t.Fatalf("FromHTML failed: %v", err)
	}
	want := []string{"One two three.", "Four five six."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestTitle(t *testing.T) {
	if got := Title(`<html><head><title> Fact Check </title></head></html>`); got != "Fact Check" {
		t.Errorf("expected Fact Check, got %q", got)
	}
	if got := Title(`<p>no title</p>`); got != "" {
		t.Errorf("expected empty title, got %q", got)
	}
}

func TestFromLines(t *testing.T) {
	input := `# statements to check
The sky is blue.

  Vaccines contain demons  
The sky is blue.
# trailing comment
ok
`
	got, err := FromLines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FromLines failed: %v", err)
	}
	want := []string{"The sky is blue.", "Vaccines contain demons", "ok"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.txt")
	if err := os.WriteFile(path, []byte("a b\nc d\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a b", "c d"}, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
