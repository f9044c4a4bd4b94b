package eval

import (
	"strings"
	"unicode"
)

// rougeScores holds ROUGE-1/2/L F-measures averaged over a reference set.
type rougeScores struct {
	Rouge1 float64
	Rouge2 float64
	RougeL float64
}

// computeRouge scores a hypothesis against each reference and averages the
// per-reference F-measures. Empty hypothesis or reference set scores zero.
func computeRouge(hypothesis string, references []string) rougeScores {
	hyp := rougeTokens(hypothesis)
	if len(hyp) == 0 || len(references) == 0 {
		return rougeScores{}
	}

	var sum rougeScores
	scored := 0
	for _, reference := range references {
		ref := rougeTokens(reference)
		if len(ref) == 0 {
			continue
		}
		sum.Rouge1 += ngramF1(hyp, ref, 1)
		sum.Rouge2 += ngramF1(hyp, ref, 2)
		sum.RougeL += lcsF1(hyp, ref)
		scored++
	}
	if scored == 0 {
		return rougeScores{}
	}
	return rougeScores{
		Rouge1: sum.Rouge1 / float64(scored),
		Rouge2: sum.Rouge2 / float64(scored),
		RougeL: sum.RougeL / float64(scored),
	}
}

// rougeTokens lowercases and splits on non-alphanumeric runs.
func rougeTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ngramF1 computes the clipped n-gram overlap F-measure.
func ngramF1(hyp, ref []string, n int) float64 {
	hypGrams := ngramCounts(hyp, n)
	refGrams := ngramCounts(ref, n)
	if len(hypGrams) == 0 || len(refGrams) == 0 {
		return 0
	}

	overlap := 0
	hypTotal := 0
	for gram, count := range hypGrams {
		hypTotal += count
		if refCount, ok := refGrams[gram]; ok {
			overlap += min(count, refCount)
		}
	}
	refTotal := 0
	for _, count := range refGrams {
		refTotal += count
	}

	precision := float64(overlap) / float64(hypTotal)
	recall := float64(overlap) / float64(refTotal)
	return f1(precision, recall)
}

func ngramCounts(tokens []string, n int) map[string]int {
	if len(tokens) < n {
		return nil
	}
	counts := make(map[string]int, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// lcsF1 computes the longest-common-subsequence F-measure.
func lcsF1(hyp, ref []string) float64 {
	lcs := lcsLength(hyp, ref)
	if lcs == 0 {
		return 0
	}
	precision := float64(lcs) / float64(len(hyp))
	recall := float64(lcs) / float64(len(ref))
	return f1(precision, recall)
}

// lcsLength is the classic dynamic program, rolling over two rows.
func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
