package search

import (
	"testing"
)

func docs(texts ...string) []Document {
	out := make([]Document, len(texts))
	for i, t := range texts {
		out[i] = Document{ID: t, Text: t}
	}
	return out
}

// ---------- Options + defaultConfig ----------
func TestOptionsAndDefaults(t *testing.T) {
	def := defaultConfig()
	if def.minDocRunes != 0 || def.stopwords != nil || def.maxDocs != 0 {
		t.Fatalf("defaultConfig unexpected: %#v", def)
	}

	cfg := def
	WithMinDocRunes(10)(&cfg)
	if cfg.minDocRunes != 10 {
		t.Fatalf("WithMinDocRunes failed: %d", cfg.minDocRunes)
	}
	WithMinDocRunes(-5)(&cfg) // no-op
	if cfg.minDocRunes != 10 {
		t.Fatalf("negative minDocRunes should be ignored")
	}

	WithStopwords([]string{"  The ", "", "An"})(&cfg)
	if _, ok := cfg.stopwords["the"]; !ok {
		t.Fatalf("WithStopwords failed (missing 'the'): %#v", cfg.stopwords)
	}
	if _, ok := cfg.stopwords["an"]; !ok {
		t.Fatalf("WithStopwords failed (missing 'an'): %#v", cfg.stopwords)
	}

	cfg2 := def
	WithStopwords(nil)(&cfg2)
	if cfg2.stopwords != nil {
		t.Fatalf("empty stopwords should remain nil")
	}

	WithMaxDocs(2)(&cfg)
	if cfg.maxDocs != 2 {
		t.Fatalf("WithMaxDocs failed: %d", cfg.maxDocs)
	}
	WithMaxDocs(0)(&cfg) // no-op
	if cfg.maxDocs != 2 {
		t.Fatalf("non-positive maxDocs should be ignored")
	}
}

func TestNewIndex_FiltersAndMaxDocs(t *testing.T) {
	in := docs(
		"",
		" \t \r  ",
		"plank",
		"the and a",
		"Wall Push-ups upper body",
		"Bodyweight squats lower body strength",
	)
	idx := NewIndex(in, WithMinDocRunes(6), WithStopwords([]string{"the", "and", "a"}))
	if idx.Len() != 2 {
		t.Fatalf("expected 2 docs, got %d", idx.Len())
	}

	capped := NewIndex(in, WithMaxDocs(1))
	if capped.Len() != 1 {
		t.Fatalf("maxDocs cap failed, got %d", capped.Len())
	}
}

func TestTopK_ReturnsDocumentIDs(t *testing.T) {
	idx := NewIndex([]Document{
		{ID: "ex-1", Text: "Push-ups upper body strength"},
		{ID: "ex-2", Text: "Squats lower body strength"},
		{ID: "ex-3", Text: "Hamstring stretch flexibility"},
	}, WithStopwords(DefaultStopwords))

	got := idx.TopK("push upper", 5)
	if len(got) != 1 || got[0].ID != "ex-1" {
		t.Fatalf("unexpected results: %+v", got)
	}

	got = idx.TopK("body strength", 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %+v", got)
	}
	for _, r := range got {
		if r.ID == "ex-3" {
			t.Fatalf("zero-overlap document should be excluded")
		}
	}
}

func TestTopK_BranchesAndSorting(t *testing.T) {
	empty := &index{cfg: defaultConfig(), docs: nil}
	if res := empty.TopK("x", 3); res != nil {
		t.Fatalf("empty index should return nil")
	}

	idx := NewIndex(docs("alpha beta", "alpha beta gamma"))
	if out := idx.TopK("   ", 2); out != nil {
		t.Fatalf("blank query should return nil")
	}

	idxStop := NewIndex(docs("alpha beta gamma"), WithStopwords([]string{"alpha", "beta"}))
	if out := idxStop.TopK("alpha beta", 2); out != nil {
		t.Fatalf("query becoming empty should yield nil")
	}

	idx2 := NewIndex(docs(
		"alpha beta",
		"alpha beta gamma",
		"beta alpha",
		"delta epsilon",
	))
	got := idx2.TopK("alpha beta", 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 results (k default), got %d", len(got))
	}
	if got[0].Snippet != "alpha beta" || got[1].Snippet != "beta alpha" || got[2].Snippet != "alpha beta gamma" {
		t.Fatalf("unexpected order: %#v", got)
	}
}

func TestTopK_KGreaterThanLen_And_LenRunesTieBreak(t *testing.T) {
	idx := NewIndex(docs("alpha beta", "alpha beta!!"))

	out := idx.TopK("alpha beta", 10)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Snippet != "alpha beta" || out[1].Snippet != "alpha beta!!" {
		t.Fatalf("lenRunes tie-break failed: %#v", out)
	}
	if out[0].Score != 1.0 || out[1].Score != 1.0 {
		t.Fatalf("expected scores 1.0, got %+v", out)
	}
}

func TestTopK_NoOverlap_ReturnsNil(t *testing.T) {
	idx := NewIndex(docs("delta epsilon", "zeta eta theta"))
	if out := idx.TopK("alpha", 5); out != nil {
		t.Fatalf("expected nil for no-overlap case, got %+v", out)
	}
}

func TestTopK_UnionNonPositive_ForcesContinue(t *testing.T) {
	ii := buildIndex(docs("alpha"), defaultConfig())
	if len(ii.docs) != 1 {
		t.Fatalf("setup failed: %#v", ii)
	}
	ii.docs[0].tLen = 0

	if out := ii.TopK("alpha", 5); out != nil {
		t.Fatalf("expected nil results due to union<=0 path, got %+v", out)
	}
}

func TestHelpers_TokenizeOverlapWhitespace(t *testing.T) {
	toks := tokenize("Hello HELLO 123 world", nil)
	if _, ok := toks["hello"]; !ok {
		t.Fatalf("tokenize(lower) missing 'hello': %#v", toks)
	}
	if _, ok := toks["world"]; !ok {
		t.Fatalf("tokenize(lower) missing 'world': %#v", toks)
	}

	toks2 := tokenize("Hello world", map[string]struct{}{"hello": {}})
	if _, ok := toks2["hello"]; ok {
		t.Fatalf("tokenize(stopwords) should have removed 'hello': %#v", toks2)
	}

	if toks3 := tokenize("$$$ !!!", nil); toks3 != nil {
		t.Fatalf("tokenize should return nil when no words")
	}
	if _, ok := tokenize("foo abc123", nil)["abc123"]; !ok {
		t.Fatalf("expected alphanumeric token 'abc123'")
	}

	if overlap(nil, toks) != 0 || overlap(toks, nil) != 0 {
		t.Fatalf("overlap with nil should be 0")
	}
	a := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	b := map[string]struct{}{"a": {}}
	if got := overlap(a, b); got != 1 {
		t.Fatalf("expected overlap 1 with swap branch, got %d", got)
	}

	if got := normalizeWhitespace("alpha\t beta\r\n  gamma"); got != "alpha beta gamma" {
		t.Fatalf("normalizeWhitespace failed: %q", got)
	}
}
