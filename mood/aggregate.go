package mood

// Expressions maps expression labels to probabilities for one face.
// Labels outside the seven moods are ignored.
type Expressions map[Mood]float64

// Scores is a complete score vector indexed in the order of All.
type Scores [7]float64

// Get returns the score for m, or 0 for an unknown label.
func (s Scores) Get(m Mood) float64 {
	i := m.index()
	if i < 0 {
		return 0
	}
	return s[i]
}

// Aggregate collapses every face in a frame into one score vector.
// Each label takes the maximum probability seen across faces, so one
// confident face outweighs several uncertain ones.
func Aggregate(faces []Expressions) Scores {
	var out Scores
	for _, face := range faces {
		for i, m := range All {
			if p, ok := face[m]; ok && p > out[i] {
				out[i] = p
			}
		}
	}
	return out
}
