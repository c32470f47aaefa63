package dedup

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrBatchLimitExceeded signals that the batch was too large for pairwise
// grouping. The caller proceeds with ungrouped items instead of failing the
// run.
var ErrBatchLimitExceeded = errors.New("dedup batch exceeds configured limit")

// Item is the slice of a classified document the detector needs. Detection is
// pure: grouping decisions are returned, never applied.
type Item struct {
	ID          string
	Title       string
	Content     string
	PublishedAt time.Time
}

// Group is a set of near-duplicate items with one canonical member.
type Group struct {
	Members           []string
	CanonicalID       string
	TitleSimilarity   float64
	ContentSimilarity float64
}

// Detector groups near-duplicate stories by weighted token-set Jaccard
// similarity. Stateless and safe for concurrent use.
type Detector struct {
	threshold     float64
	titleWeight   float64
	contentWeight float64
	maxBatch      int
}

func NewDetector(threshold, titleWeight, contentWeight float64, maxBatch int) *Detector {
	return &Detector{
		threshold:     threshold,
		titleWeight:   titleWeight,
		contentWeight: contentWeight,
		maxBatch:      maxBatch,
	}
}

// Run compares every pair in the batch and returns the connected components of
// the similarity graph. Pairs at or above the threshold join the same group
// transitively. Groups of size 1 are not materialized.
func (d *Detector) Run(items []Item) ([]Group, error) {
	if d.maxBatch > 0 && len(items) > d.maxBatch {
		return nil, ErrBatchLimitExceeded
	}
	if len(items) < 2 {
		return nil, nil
	}

	titleTokens := make([]map[string]struct{}, len(items))
	contentTokens := make([]map[string]struct{}, len(items))
	for i, item := range items {
		titleTokens[i] = tokenize(item.Title)
		contentTokens[i] = tokenize(item.Content)
	}

	parent := make([]int, len(items))
	for i := range parent {
		parent[i] = i
	}

	// Best pair similarity observed per component root, reported on the group.
	type pairScore struct {
		title   float64
		content float64
	}
	best := make(map[int]pairScore)

	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			titleSim, contentSim, combined := d.score(titleTokens[i], titleTokens[j], contentTokens[i], contentTokens[j])

			if combined < d.threshold {
				continue
			}

			rootI, rootJ := find(parent, i), find(parent, j)
			if rootI != rootJ {
				// Merge the absorbed component's best scores into the
				// surviving root.
				parent[rootJ] = rootI
				absorbed := best[rootJ]
				score := best[rootI]
				if absorbed.title > score.title {
					score.title = absorbed.title
				}
				if absorbed.content > score.content {
					score.content = absorbed.content
				}
				best[rootI] = score
				delete(best, rootJ)
			}

			score := best[rootI]
			if titleSim > score.title {
				score.title = titleSim
			}
			if contentSim > score.content {
				score.content = contentSim
			}
			best[rootI] = score
		}
	}

	components := make(map[int][]int)
	for i := range items {
		root := find(parent, i)
		components[root] = append(components[root], i)
	}

	var groups []Group
	for root, indexes := range components {
		if len(indexes) < 2 {
			continue
		}

		members := make([]string, 0, len(indexes))
		canonical := indexes[0]
		for _, idx := range indexes {
			members = append(members, items[idx].ID)
			if earlier(items[idx], items[canonical]) {
				canonical = idx
			}
		}
		sort.Strings(members)

		score := best[root]
		groups = append(groups, Group{
			Members:           members,
			CanonicalID:       items[canonical].ID,
			TitleSimilarity:   score.title,
			ContentSimilarity: score.content,
		})
	}

	// Stable output order regardless of map iteration.
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Members[0] < groups[j].Members[0]
	})

	return groups, nil
}

// earlier decides canonical precedence: earliest published wins, equal
// timestamps fall back to the smallest id.
func earlier(a, b Item) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.Before(b.PublishedAt)
	}
	return a.ID < b.ID
}

// Similarity returns the combined weighted Jaccard similarity of two items.
// Exposed for introspection endpoints and tests; Run uses the same math.
func (d *Detector) Similarity(a, b Item) float64 {
	_, _, combined := d.score(tokenize(a.Title), tokenize(b.Title),
		tokenize(a.Content), tokenize(b.Content))
	return combined
}

// score computes per-field and combined similarity. When a field is absent on
// both sides (wire stubs often carry no body) the other field decides alone at
// full weight, so two identical titles with empty contents can still clear the
// threshold. Both fields absent on both sides scores 0: blank stubs carry no
// evidence of sameness.
func (d *Detector) score(titleA, titleB, contentA, contentB map[string]struct{}) (titleSim, contentSim, combined float64) {
	titleSim = jaccard(titleA, titleB)
	contentSim = jaccard(contentA, contentB)

	titleAbsent := len(titleA) == 0 && len(titleB) == 0
	contentAbsent := len(contentA) == 0 && len(contentB) == 0
	switch {
	case titleAbsent && contentAbsent:
		combined = 0
	case contentAbsent:
		combined = titleSim
	case titleAbsent:
		combined = contentSim
	default:
		combined = d.titleWeight*titleSim + d.contentWeight*contentSim
	}
	return titleSim, contentSim, combined
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		tokens[field] = struct{}{}
	}
	return tokens
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func find(parent []int, i int) int {
	for parent[i] != i {
		parent[i] = parent[parent[i]]
		i = parent[i]
	}
	return i
}
