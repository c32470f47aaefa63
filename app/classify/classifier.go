package classify

import (
	"sort"
	"strings"
)

// DefaultCategory is returned whenever neither the static code table nor
// keyword scoring produces a signal. Classification never fails; absence of
// signal degrades to the default.
const DefaultCategory = "gundem"

// Categories is the fixed output taxonomy, in canonical order.
var Categories = []string{
	"gundem",
	"ekonomi",
	"spor",
	"teknoloji",
	"saglik",
	"kultur",
	"dunya",
	"politika",
	"egitim",
}

// codeTable maps the upstream's numeric category codes to output categories.
// This is the single authoritative mapping; no other package defines one.
var codeTable = map[string]string{
	"1": "gundem",
	"2": "spor",
	"3": "ekonomi",
	"4": "saglik",
	"5": "teknoloji",
	"6": "politika",
	"7": "kultur",
	"8": "dunya",
	"9": "egitim",
}

// keywordTable holds the keyword set scored per category when the upstream
// code is unmapped. All entries are lowercase; matching is substring-based.
var keywordTable = map[string][]string{
	"gundem": {
		"son dakika", "gündem", "kaza", "yangın", "deprem", "polis", "soruşturma",
	},
	"ekonomi": {
		"faiz", "merkez bankası", "dolar", "euro", "borsa", "enflasyon", "ekonomi",
		"ihracat", "ithalat", "yatırım", "piyasa", "bütçe", "asgari ücret",
	},
	"spor": {
		"maç", "gol", "transfer", "futbol", "basketbol", "voleybol", "şampiyon",
		"galatasaray", "fenerbahçe", "beşiktaş", "trabzonspor", "lig", "teknik direktör",
	},
	"teknoloji": {
		"teknoloji", "yapay zeka", "yazılım", "uygulama", "internet", "siber",
		"akıllı telefon", "uzay", "robot", "çip",
	},
	"saglik": {
		"sağlık", "hastane", "doktor", "aşı", "tedavi", "salgın", "kanser", "ameliyat",
	},
	"kultur": {
		"kültür", "sanat", "film", "konser", "festival", "sergi", "müze", "tiyatro", "albüm",
	},
	"dunya": {
		"abd", "avrupa birliği", "rusya", "çin", "birleşmiş milletler", "nato",
		"savaş", "ateşkes", "büyükelçi",
	},
	"politika": {
		"cumhurbaşkanı", "meclis", "seçim", "parti", "bakan", "milletvekili",
		"anayasa", "hükümet", "diplomasi",
	},
	"egitim": {
		"eğitim", "okul", "öğrenci", "üniversite", "sınav", "öğretmen", "müfredat",
	},
}

const titleWeight = 2

// Classifier resolves an upstream category code plus free text to one of the
// fixed output categories. It holds no state and performs no I/O, so a single
// instance is safe from any number of goroutines.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Run returns the resolved category and the ordered list of categories that
// scored non-zero during keyword scoring (empty on the static fast path). The
// result is never empty.
func (c *Classifier) Run(categoryCode, title, content string, keywords []string) (string, []string) {
	if mapped, ok := codeTable[categoryCode]; ok {
		return mapped, nil
	}

	titleText := strings.ToLower(title)
	bodyText := strings.ToLower(content + " " + strings.Join(keywords, " "))

	scores := make(map[string]int, len(Categories))
	for _, category := range Categories {
		score := 0
		for _, keyword := range keywordTable[category] {
			score += titleWeight * strings.Count(titleText, keyword)
			score += strings.Count(bodyText, keyword)
		}
		if score > 0 {
			scores[category] = score
		}
	}

	hints := rankedHints(scores)
	if len(hints) == 0 {
		return DefaultCategory, nil
	}

	// A strictly highest score wins. Ties fall back to the static table, and
	// with no mapping there, to the default.
	if len(hints) == 1 || scores[hints[0]] > scores[hints[1]] {
		return hints[0], hints
	}
	if mapped, ok := codeTable[categoryCode]; ok {
		return mapped, hints
	}
	return DefaultCategory, hints
}

// rankedHints orders the non-zero-scoring categories by descending score,
// ties by canonical category order, so the result is stable.
func rankedHints(scores map[string]int) []string {
	hints := make([]string, 0, len(scores))
	rank := make(map[string]int, len(Categories))
	for i, category := range Categories {
		rank[category] = i
	}

	for category := range scores {
		hints = append(hints, category)
	}
	sort.Slice(hints, func(i, j int) bool {
		if scores[hints[i]] != scores[hints[j]] {
			return scores[hints[i]] > scores[hints[j]]
		}
		return rank[hints[i]] < rank[hints[j]]
	})

	return hints
}

var reverseCodeTable = func() map[string]string {
	m := make(map[string]string, len(codeTable))
	for code, name := range codeTable {
		m[name] = code
	}
	return m
}()

// UpstreamCode returns the upstream's numeric code for an output category.
// The upstream search filter speaks codes, not category names.
func UpstreamCode(category string) (string, bool) {
	code, ok := reverseCodeTable[category]
	return code, ok
}

// KnownCategory reports whether name is one of the fixed output categories.
func KnownCategory(name string) bool {
	for _, category := range Categories {
		if category == name {
			return true
		}
	}
	return false
}
