package models

import "sort"

// labelScores is the per-query accumulator: label -> vote count or summed
// confidence. It is built and discarded within a single call.
type labelScores map[float64]float64

func (s labelScores) add(label, w float64) { s[label] += w }

// best returns the highest scoring label. Equal scores go to the smallest
// label, so the winner never depends on map iteration or member order.
func (s labelScores) best() (label, score float64, ok bool) {
	for l, v := range s {
		if !ok || v > score || (v == score && l < label) {
			label, score, ok = l, v, true
		}
	}
	return label, score, ok
}

type LabelScore struct {
	Label float64 `json:"label"`
	Score float64 `json:"score"`
}

// ranked lists the tally best first, in the same order best uses.
func (s labelScores) ranked() []LabelScore {
	out := make([]LabelScore, 0, len(s))
	for l, v := range s {
		out = append(out, LabelScore{Label: l, Score: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	return out
}
