package recomb

// HistoryDepth is how many previous results the classifier ever inspects.
const HistoryDepth = 3

// dropThreshold is the similarity at or below which leaving an Equal
// window counts as a drop.
const dropThreshold = 0.9

// History is an append-only record of emitted results of which only the
// last HistoryDepth entries are retained. The zero value is empty and ready
// to use. A History belongs to one scan and is not safe for concurrent use.
type History struct {
	ring  [HistoryDepth]Result
	count int
}

// Len returns the number of results ever appended, not the number retained.
func (h *History) Len() int {
	return h.count
}

// Push appends r.
func (h *History) Push(r Result) {
	h.ring[h.count%HistoryDepth] = r
	h.count++
}

// Back returns the n-th most recent result: Back(1) is the last one.
// It panics unless 1 <= n <= min(Len(), HistoryDepth).
func (h *History) Back(n int) Result {
	if n < 1 || n > HistoryDepth || n > h.count {
		panic("recomb: history index out of range")
	}
	return h.ring[(h.count-n)%HistoryDepth]
}

// Classify assigns a recombination category to m given the results that
// preceded it. Rules are evaluated in priority order and the first match
// wins.
func Classify(h *History, m Measurement) Category {
	if h.Len() == 0 {
		return None
	}

	current := m.MoreSimilarTo()
	majorChange := m.MajorChange()
	last := h.Back(1)

	flippedDirectly := current != Equal &&
		last.MoreSimilarTo != Equal &&
		current != last.MoreSimilarTo

	if flippedDirectly && majorChange {
		return Hard
	}

	fromEqualToParentWithDrop := current != Equal &&
		last.MoreSimilarTo == Equal &&
		(m.SimilarityP1 <= dropThreshold || m.SimilarityP2 <= dropThreshold)

	if fromEqualToParentWithDrop && majorChange {
		return Ambiguous
	}

	if h.Len() > 2 {
		secondLast := h.Back(2)

		streakOfTwoBroken := secondLast.MoreSimilarTo == last.MoreSimilarTo && flippedDirectly
		if streakOfTwoBroken {
			return Ambiguous
		}

		flippedAfterEqual := secondLast.MoreSimilarTo != Equal &&
			last.MoreSimilarTo == Equal &&
			current != Equal &&
			secondLast.MoreSimilarTo != current

		if flippedAfterEqual && majorChange {
			return Hard
		}
		if flippedAfterEqual {
			return Ambiguous
		}

		if h.Len() > 3 {
			thirdLast := h.Back(3)

			p1 := [4]float64{thirdLast.SimilarityP1, secondLast.SimilarityP1, last.SimilarityP1, m.SimilarityP1}
			p2 := [4]float64{thirdLast.SimilarityP2, secondLast.SimilarityP2, last.SimilarityP2, m.SimilarityP2}

			similaritySwitching := (increasing(p1) && decreasing(p2)) ||
				(increasing(p2) && decreasing(p1))

			if similaritySwitching && majorChange {
				return Hard
			}

			// Every input matching this rule also matches streakOfTwoBroken,
			// which has priority.
			if brokenStreakOfThree(thirdLast, secondLast, last, current) {
				return Hard
			}
		}
	}

	if flippedDirectly {
		return Ambiguous
	}

	return None
}

func increasing(v [4]float64) bool {
	return v[0] < v[1] && v[1] < v[2] && v[2] < v[3]
}

func decreasing(v [4]float64) bool {
	return v[0] > v[1] && v[1] > v[2] && v[2] > v[3]
}

// brokenStreakOfThree reports three windows leaning to the same parent
// followed by a window leaning to the other one.
func brokenStreakOfThree(third, second, last Result, current SimilarTo) bool {
	streak := last.MoreSimilarTo
	return streak != Equal &&
		third.MoreSimilarTo == streak &&
		second.MoreSimilarTo == streak &&
		current != Equal &&
		current != streak
}

// Classifier turns a stream of measurements into classified results,
// keeping its own history.
type Classifier struct {
	history History
}

// Next classifies m, records the result and returns it.
func (c *Classifier) Next(m Measurement) Result {
	r := Result{
		Start:         m.Start,
		End:           m.End,
		MoreSimilarTo: m.MoreSimilarTo(),
		SimilarityP1:  m.SimilarityP1,
		SimilarityP2:  m.SimilarityP2,
		MajorChange:   m.MajorChange(),
		Recombination: Classify(&c.history, m),
	}
	c.history.Push(r)
	return r
}

// Len returns the number of results classified so far.
func (c *Classifier) Len() int {
	return c.history.Len()
}
