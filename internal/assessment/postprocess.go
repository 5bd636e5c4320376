package assessment

import (
	"fmt"
	"sort"
)

// toLabeledResults pairs each per-condition distribution with its label space,
// picks the arg-max winner, and sorts the full distribution descending for
// display. Ties at arg-max resolve to the lowest class index; the stable sort
// preserves the same ordering among equal probabilities.
func toLabeledResults(distributions [][]float64) (*PredictionResults, error) {
	if len(distributions) != len(conditionOrder) {
		return nil, fmt.Errorf("%w: got %d distributions, expected %d",
			ErrSchemaMismatch, len(distributions), len(conditionOrder))
	}

	var results PredictionResults
	for i, cond := range conditionOrder {
		r, err := labelCondition(cond, distributions[i])
		if err != nil {
			return nil, err
		}
		switch cond {
		case ConditionDepression:
			results.Depression = *r
		case ConditionAnxiety:
			results.Anxiety = *r
		case ConditionStress:
			results.Stress = *r
		}
	}

	return &results, nil
}

func labelCondition(cond Condition, probs []float64) (*ConditionResult, error) {
	labels := Labels(cond)
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("%w: %s distribution has %d classes, expected %d",
			ErrSchemaMismatch, cond, len(probs), len(labels))
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	pairs := make([]ClassProbability, len(labels))
	for i, label := range labels {
		pairs[i] = ClassProbability{Label: label, Probability: probs[i]}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Probability > pairs[b].Probability
	})

	return &ConditionResult{
		Label:         labels[best],
		Probability:   probs[best],
		Probabilities: pairs,
	}, nil
}
