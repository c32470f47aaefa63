package classify

import (
	"testing"
)

func TestRun_StaticFastPath(t *testing.T) {
	classifier := NewClassifier()

	category, hints := classifier.Run("2", "Herhangi bir başlık", "herhangi bir içerik", nil)
	if category != "spor" {
		t.Errorf("Expected 'spor' for code 2, got '%s'", category)
	}
	if len(hints) != 0 {
		t.Errorf("Fast path should not produce hints, got %v", hints)
	}
}

func TestRun_KeywordFallback(t *testing.T) {
	classifier := NewClassifier()

	// Unmapped code forces keyword scoring; both economy keywords appear in
	// the title.
	category, hints := classifier.Run("99", "Merkez Bankası faiz kararı", "", nil)
	if category != "ekonomi" {
		t.Errorf("Expected 'ekonomi', got '%s'", category)
	}
	if len(hints) == 0 || hints[0] != "ekonomi" {
		t.Errorf("Expected 'ekonomi' as top hint, got %v", hints)
	}
}

func TestRun_TitleOutweighsContent(t *testing.T) {
	classifier := NewClassifier()

	// One sports keyword in the title (weight 2) beats one economy keyword in
	// the content (weight 1).
	category, _ := classifier.Run("99", "Derbide üç gol", "faiz tartışması sürüyor", nil)
	if category != "spor" {
		t.Errorf("Expected 'spor', got '%s'", category)
	}
}

func TestRun_KeywordsParameterScores(t *testing.T) {
	classifier := NewClassifier()

	category, _ := classifier.Run("99", "Açıklama", "", []string{"yapay zeka", "yazılım"})
	if category != "teknoloji" {
		t.Errorf("Expected 'teknoloji' from keyword list, got '%s'", category)
	}
}

func TestRun_Totality(t *testing.T) {
	classifier := NewClassifier()

	category, hints := classifier.Run("unmapped", "", "", nil)
	if category != DefaultCategory {
		t.Errorf("Expected default '%s' for empty input, got '%s'", DefaultCategory, category)
	}
	if category == "" {
		t.Error("Resolved category must never be empty")
	}
	if len(hints) != 0 {
		t.Errorf("Expected no hints for empty input, got %v", hints)
	}
}

func TestRun_Determinism(t *testing.T) {
	classifier := NewClassifier()

	inputs := []struct {
		code, title, content string
	}{
		{"99", "Merkez Bankası faiz kararı", ""},
		{"1", "Son dakika", "kaza haberi"},
		{"77", "Festivalde konser ve sergi", "tiyatro sanat"},
		{"77", "", "üniversite sınav sonuçları"},
	}

	for _, input := range inputs {
		first, firstHints := classifier.Run(input.code, input.title, input.content, nil)
		for i := 0; i < 10; i++ {
			again, againHints := classifier.Run(input.code, input.title, input.content, nil)
			if again != first {
				t.Fatalf("Non-deterministic result for %q: %s then %s", input.title, first, again)
			}
			if len(againHints) != len(firstHints) {
				t.Fatalf("Non-deterministic hints for %q", input.title)
			}
			for j := range againHints {
				if againHints[j] != firstHints[j] {
					t.Fatalf("Hint order changed for %q: %v vs %v", input.title, firstHints, againHints)
				}
			}
		}
	}
}

func TestRun_TieFallsBackToDefault(t *testing.T) {
	classifier := NewClassifier()

	// One keyword from each of two categories in the content, equal weight,
	// unmapped code: no strict winner, no static mapping, so default.
	category, hints := classifier.Run("99", "", "faiz açıklaması sonrası maç başladı", nil)
	if category != DefaultCategory {
		t.Errorf("Expected tie to degrade to '%s', got '%s'", DefaultCategory, category)
	}
	if len(hints) != 2 {
		t.Errorf("Expected 2 tied hints, got %v", hints)
	}
}

func TestKnownCategory(t *testing.T) {
	if !KnownCategory("ekonomi") {
		t.Error("'ekonomi' should be a known category")
	}
	if KnownCategory("3") {
		t.Error("Raw upstream codes are not output categories")
	}
}

func TestUpstreamCode(t *testing.T) {
	if code, ok := UpstreamCode("spor"); !ok || code != "2" {
		t.Errorf("Expected 'spor' to map to code '2', got %q (%v)", code, ok)
	}
	for code, name := range codeTable {
		got, ok := UpstreamCode(name)
		if !ok || got != code {
			t.Errorf("Category %q should round-trip to code %q, got %q", name, code, got)
		}
	}
	if _, ok := UpstreamCode("bilinmeyen"); ok {
		t.Error("Unknown category should have no upstream code")
	}
}
