package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/text"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// KeywordHit is a lexical match over the indexed chunks, scored by word
// occurrence counts with a flat bonus for a whole-query substring match.
type KeywordHit struct {
	ChunkID string `json:"chunk_id"`
	Preview string `json:"preview"`
	Score   int    `json:"score"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// KeywordSearch scores chunks against the query without touching the
// embedding backend. Useful as a debug mode and when the model is down.
func KeywordSearch(chunks []text.Chunk, query string, topK int) []KeywordHit {
	q := strings.TrimSpace(normalize(query))
	if q == "" {
		return nil
	}

	words := wordRe.FindAllString(q, -1)

	var scored []KeywordHit
	for _, c := range chunks {
		body := normalize(c.Text)

		score := 0
		if strings.Contains(body, q) {
			score = 3
		}
		for _, w := range words {
			score += strings.Count(body, w)
		}

		if score > 0 {
			scored = append(scored, KeywordHit{
				ChunkID: c.ID,
				Preview: preview(c.Text),
				Score:   score,
				Start:   c.Start,
				End:     c.End,
			})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })
	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}

func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
