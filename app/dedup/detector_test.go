package dedup

import (
	"errors"
	"testing"
	"time"
)

func newTestDetector() *Detector {
	return NewDetector(0.5, 0.7, 0.3, 500)
}

func TestSimilarity_Symmetry(t *testing.T) {
	detector := newTestDetector()

	pairs := [][2]Item{
		{
			{Title: "Galatasaray 2-1 Fenerbahçe", Content: "derbi sonucu"},
			{Title: "Galatasaray Fenerbahçe'yi 2-1 yendi", Content: "derbi sonucu"},
		},
		{
			{Title: "Merkez Bankası faiz kararı", Content: "faiz sabit kaldı"},
			{Title: "teknoloji yatırımı", Content: "yeni fabrika"},
		},
		{
			{Title: "", Content: ""},
			{Title: "başlık", Content: "içerik"},
		},
	}

	for _, pair := range pairs {
		ab := detector.Similarity(pair[0], pair[1])
		ba := detector.Similarity(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Similarity not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestRun_GroupsDerbyReports(t *testing.T) {
	detector := newTestDetector()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	items := []Item{
		{
			ID:          "aa:2",
			Title:       "Galatasaray Fenerbahçe'yi 2-1 yendi",
			Content:     "derbide kazanan galatasaray oldu maç 2-1 sona erdi",
			PublishedAt: base.Add(10 * time.Minute),
		},
		{
			ID:          "aa:1",
			Title:       "Galatasaray 2-1 Fenerbahçe",
			Content:     "derbide kazanan galatasaray oldu maç 2-1 sona erdi",
			PublishedAt: base,
		},
		{
			ID:          "aa:3",
			Title:       "Yeni teknoloji yatırımı açıklandı",
			Content:     "fabrika yatırımı için imzalar atıldı",
			PublishedAt: base.Add(5 * time.Minute),
		},
	}

	groups, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(groups))
	}

	group := groups[0]
	if len(group.Members) != 2 {
		t.Fatalf("Expected 2 members, got %v", group.Members)
	}
	for _, member := range group.Members {
		if member == "aa:3" {
			t.Error("Unrelated item must not join the group")
		}
	}
	if group.CanonicalID != "aa:1" {
		t.Errorf("Expected earliest item 'aa:1' as canonical, got '%s'", group.CanonicalID)
	}
	if group.TitleSimilarity <= 0 || group.TitleSimilarity > 1 {
		t.Errorf("Title similarity out of range: %f", group.TitleSimilarity)
	}
	if group.ContentSimilarity <= 0 || group.ContentSimilarity > 1 {
		t.Errorf("Content similarity out of range: %f", group.ContentSimilarity)
	}
}

func TestRun_TransitiveGrouping(t *testing.T) {
	// A~B and B~C must share a group even when A and C individually score
	// below the threshold.
	detector := NewDetector(0.75, 0.7, 0.3, 500)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "a", Title: "bir iki üç dört beş", Content: "ortak gövde metni", PublishedAt: base},
		{ID: "b", Title: "bir iki üç dört altı", Content: "ortak gövde metni", PublishedAt: base.Add(time.Minute)},
		{ID: "c", Title: "bir iki üç yedi altı", Content: "ortak gövde metni", PublishedAt: base.Add(2 * time.Minute)},
	}

	if sim := detector.Similarity(items[0], items[2]); sim >= 0.75 {
		t.Fatalf("Test premise broken: a and c directly similar (%f)", sim)
	}

	groups, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("Expected 1 transitive group, got %d", len(groups))
	}
	if len(groups[0].Members) != 3 {
		t.Errorf("Expected all 3 items grouped, got %v", groups[0].Members)
	}
	if groups[0].CanonicalID != "a" {
		t.Errorf("Expected canonical 'a', got '%s'", groups[0].CanonicalID)
	}
}

func TestRun_SingleItemsNotMaterialized(t *testing.T) {
	detector := newTestDetector()

	items := []Item{
		{ID: "a", Title: "tamamen farklı birinci haber", Content: "birinci gövde"},
		{ID: "b", Title: "alakasız ikinci konu başlığı", Content: "ikinci metin"},
	}

	groups, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Dissimilar items must not form groups, got %v", groups)
	}

	groups, err = detector.Run(items[:1])
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Single-item batch must produce no groups, got %v", groups)
	}
}

func TestRun_Idempotence(t *testing.T) {
	detector := newTestDetector()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "x1", Title: "aynı haber farklı kaynak", Content: "ortak içerik burada", PublishedAt: base},
		{ID: "x2", Title: "aynı haber farklı kaynak", Content: "ortak içerik burada", PublishedAt: base.Add(time.Minute)},
		{ID: "y1", Title: "bambaşka bir gelişme", Content: "ilgisiz içerik", PublishedAt: base},
	}

	first, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Group count differs between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].CanonicalID != second[i].CanonicalID {
			t.Errorf("Canonical differs between runs: %s vs %s", first[i].CanonicalID, second[i].CanonicalID)
		}
		if len(first[i].Members) != len(second[i].Members) {
			t.Errorf("Members differ between runs")
		}
	}
}

func TestRun_CanonicalTieBreaksOnID(t *testing.T) {
	detector := newTestDetector()
	same := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "zz", Title: "eşzamanlı haber metni", Content: "aynı gövde", PublishedAt: same},
		{ID: "aa", Title: "eşzamanlı haber metni", Content: "aynı gövde", PublishedAt: same},
	}

	groups, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(groups))
	}
	if groups[0].CanonicalID != "aa" {
		t.Errorf("Equal timestamps must tie-break to smallest id, got '%s'", groups[0].CanonicalID)
	}
}

func TestRun_EmptyContentDecidedByTitle(t *testing.T) {
	detector := NewDetector(0.8, 0.7, 0.3, 500)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "aa:1", Title: "Merkez Bankası faiz kararını açıkladı", PublishedAt: base},
		{ID: "aa:2", Title: "Merkez Bankası faiz kararını açıkladı", PublishedAt: base.Add(5 * time.Minute)},
		{ID: "aa:3", Title: "Derbi maçı ertelendi", PublishedAt: base},
	}

	groups, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("Expected identical titles with no content to group, got %d groups", len(groups))
	}
	if len(groups[0].Members) != 2 || groups[0].CanonicalID != "aa:1" {
		t.Errorf("Expected aa:1 and aa:2 grouped with aa:1 canonical, got %+v", groups[0])
	}
}

func TestRun_BlankItemsDoNotGroup(t *testing.T) {
	detector := NewDetector(0.8, 0.7, 0.3, 500)

	items := []Item{
		{ID: "aa:1"},
		{ID: "aa:2"},
	}

	groups, err := detector.Run(items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Expected blank items not to group, got %d groups", len(groups))
	}
}

func TestRun_BatchLimit(t *testing.T) {
	detector := NewDetector(0.8, 0.7, 0.3, 2)

	items := []Item{
		{ID: "a", Title: "bir"},
		{ID: "b", Title: "iki"},
		{ID: "c", Title: "üç"},
	}

	_, err := detector.Run(items)
	if !errors.Is(err, ErrBatchLimitExceeded) {
		t.Errorf("Expected ErrBatchLimitExceeded, got %v", err)
	}
}
