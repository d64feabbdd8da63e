package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(3))
		if p.ChunkSize() != 3 {
			t.Errorf("expected chunkSize 3, got %d", p.ChunkSize())
		}
	})

	t.Run("zero and negative values ignored", func(t *testing.T) {
		for _, size := range []int{0, -4} {
			p := New(WithChunkSize(size))
			if p.chunkSize != DefaultChunkSize {
				t.Errorf("size %d: expected default chunkSize, got %d", size, p.chunkSize)
			}
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestUnits_FiltersShortFragments(t *testing.T) {
	text := "Deep learning changed vision research. Fig. 3. Page 12. " +
		"Transformers scale with data and compute.   ok.  "

	got := Units(text)
	want := []string{
		"Deep learning changed vision research",
		"Transformers scale with data and compute",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Units() = %q, want %q", got, want)
	}
}

func TestUnits_LengthBoundary(t *testing.T) {
	// Exactly ten characters after trimming is dropped, eleven is kept.
	ten := "abcdefghij"
	eleven := "abcdefghijk"

	got := Units("  " + ten + " ." + eleven + ".")
	if len(got) != 1 || got[0] != eleven {
		t.Errorf("Units() = %q, want only %q", got, eleven)
	}
}

func TestUnits_CountsRunesNotBytes(t *testing.T) {
	// Nine runes, eighteen bytes: must be dropped.
	short := "ééééééééé"
	if got := Units(short + "."); len(got) != 0 {
		t.Errorf("expected rune-length filtering, got %q", got)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	p := New()

	for _, text := range []string{"", "   ", "a. b. c.", "Short one."} {
		if chunks := p.Segment(text); len(chunks) != 0 {
			t.Errorf("Segment(%q) = %q, want empty", text, chunks)
		}
	}
}

func TestSegment_FewerUnitsThanChunkSize(t *testing.T) {
	p := New(WithChunkSize(5))
	text := "The first sentence is here. The second sentence is here."

	chunks := p.Segment(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "The first sentence is here The second sentence is here"
	if chunks[0] != want {
		t.Errorf("chunk = %q, want %q", chunks[0], want)
	}
}

func TestSegment_NonOverlappingWindows(t *testing.T) {
	p := New(WithChunkSize(2))
	var sentences []string
	for i := 0; i < 5; i++ {
		sentences = append(sentences, "Sentence number "+string(rune('A'+i))+" is long enough")
	}
	text := strings.Join(sentences, ". ") + "."

	chunks := p.Segment(text)

	want := []string{
		sentences[0] + " " + sentences[1],
		sentences[2] + " " + sentences[3],
		sentences[4],
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("Segment() = %q, want %q", chunks, want)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	p := New(WithChunkSize(3))
	text := strings.Repeat("A reasonably long sentence about novelty. ", 20)

	first := p.Segment(text)
	second := p.Segment(text)
	if !reflect.DeepEqual(first, second) {
		t.Error("segmenting the same text twice produced different chunks")
	}
}

func TestSegment_RecoversEveryUnitOnce(t *testing.T) {
	p := New(WithChunkSize(3))
	text := "Alpha unit number one here. Beta unit number two here. Gamma unit number three. " +
		"Delta unit number four here. Epsilon unit number five."

	units := Units(text)
	joined := strings.Join(p.Segment(text), " ")

	if joined != strings.Join(units, " ") {
		t.Errorf("rejoined chunks %q do not match units %q", joined, units)
	}
}

func TestChunks_TagsDocumentAndPosition(t *testing.T) {
	p := New(WithChunkSize(1))
	chunks := p.Chunks("ref.txt", "First long sentence here. Second long sentence here.")

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.DocumentID != "ref.txt" {
			t.Errorf("chunk %d: DocumentID = %q", i, c.DocumentID)
		}
		if c.Position != i {
			t.Errorf("chunk %d: Position = %d", i, c.Position)
		}
	}
	if chunks[1].Text != "Second long sentence here" {
		t.Errorf("unexpected second chunk %q", chunks[1].Text)
	}
}
