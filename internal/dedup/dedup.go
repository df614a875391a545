package dedup

import (
	"regexp"
	"sort"
	"strings"

	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// Detector compares a candidate bug against previously filed issues.
// The comparison is purely computational: the same inputs always yield
// the same verdict, in either argument order.
type Detector struct {
	threshold float64
}

func New(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Verdict is the outcome of a duplicate check.
type Verdict struct {
	IsDuplicate bool               `json:"is_duplicate"`
	Similarity  float64            `json:"similarity"`
	MatchedWith *model.IssueRecord `json:"matched_with,omitempty"`
}

var (
	tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)
	// Numbers, hex runs and uuid-ish fragments vary between occurrences
	// of the same bug and would defeat fingerprint matching.
	volatileToken = regexp.MustCompile(`^([0-9]+|0x[0-9a-f]+|[0-9a-f]{8,})$`)
)

// Fingerprint derives the comparison key for an analysis: the category
// followed by the sorted set of stable message tokens.
func Fingerprint(category model.BugCategory, message string) string {
	tokens := normalize(message)
	sort.Strings(tokens)
	return string(category) + ":" + strings.Join(tokens, " ")
}

func normalize(message string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range tokenSplit.Split(strings.ToLower(message), -1) {
		if len(tok) < 3 || volatileToken.MatchString(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Similarity computes the Jaccard index of the two fingerprints' token
// sets. Fingerprints with different categories never match.
func Similarity(a, b string) float64 {
	catA, toksA := splitFingerprint(a)
	catB, toksB := splitFingerprint(b)
	if catA != catB {
		return 0
	}
	if len(toksA) == 0 && len(toksB) == 0 {
		return 1
	}

	setA := make(map[string]struct{}, len(toksA))
	for _, t := range toksA {
		setA[t] = struct{}{}
	}
	intersection := 0
	setB := make(map[string]struct{}, len(toksB))
	for _, t := range toksB {
		if _, dup := setB[t]; dup {
			continue
		}
		setB[t] = struct{}{}
		if _, ok := setA[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func splitFingerprint(fp string) (string, []string) {
	cat, rest, found := strings.Cut(fp, ":")
	if !found {
		return "", nil
	}
	if rest == "" {
		return cat, nil
	}
	return cat, strings.Fields(rest)
}

// Check compares the candidate against every prior issue record and
// returns the best match at or above the threshold, if any.
func (d *Detector) Check(analysis *model.BugAnalysis, record *model.LogRecord, prior []model.IssueRecord) Verdict {
	candidate := Fingerprint(analysis.Category, record.Message)

	best := Verdict{}
	for i := range prior {
		sim := Similarity(candidate, prior[i].Fingerprint)
		if sim > best.Similarity {
			best.Similarity = sim
			best.MatchedWith = &prior[i]
		}
	}

	if best.Similarity >= d.threshold {
		best.IsDuplicate = true
	} else {
		best.MatchedWith = nil
	}
	return best
}
