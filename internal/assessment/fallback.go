package assessment

// pssReversedItems are the 0-indexed PSS positions worded in the opposite
// valence; their contribution is inverted against the item maximum.
var pssReversedItems = map[int]bool{3: true, 4: true, 6: true, 7: true}

func SumPHQ9(answers []int) int {
	total := 0
	for _, v := range answers {
		total += v
	}
	return total
}

func SumGAD7(answers []int) int {
	total := 0
	for _, v := range answers {
		total += v
	}
	return total
}

// SumPSS applies reverse scoring at the fixed positions before summing.
func SumPSS(answers []int) int {
	total := 0
	for i, v := range answers {
		if pssReversedItems[i] {
			total += PSSItemMax - v
		} else {
			total += v
		}
	}
	return total
}

func computeRawScores(a Answers) RawScores {
	return RawScores{
		PHQ9: SumPHQ9(a.PHQ9),
		GAD7: SumGAD7(a.GAD7),
		PSS:  SumPSS(a.PSS),
	}
}

// DepressionSeverity maps a PHQ-9 total to its severity class index.
func DepressionSeverity(total int) int {
	switch {
	case total <= 4:
		return 0
	case total <= 9:
		return 1
	case total <= 14:
		return 2
	case total <= 19:
		return 3
	default:
		return 4
	}
}

// AnxietySeverity maps a GAD-7 total to its severity class index.
func AnxietySeverity(total int) int {
	switch {
	case total <= 4:
		return 0
	case total <= 9:
		return 1
	case total <= 14:
		return 2
	default:
		return 3
	}
}

// StressSeverity maps a reverse-scored PSS total to its severity class index.
func StressSeverity(total int) int {
	switch {
	case total <= 13:
		return 0
	case total <= 26:
		return 1
	default:
		return 2
	}
}

// ScoreTraditional is the rule-based scorer used when the model path fails.
// It produces the same closed label spaces as the model path, with certainty
// fixed at 1.0 per condition.
func ScoreTraditional(a Answers) (*PredictionResults, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	scores := computeRawScores(a)

	return &PredictionResults{
		Depression: certainResult(ConditionDepression, DepressionSeverity(scores.PHQ9)),
		Anxiety:    certainResult(ConditionAnxiety, AnxietySeverity(scores.GAD7)),
		Stress:     certainResult(ConditionStress, StressSeverity(scores.PSS)),
	}, nil
}

// certainResult builds a degenerate distribution with all mass on the winning
// class, so downstream rendering stays agnostic to which path produced it.
func certainResult(cond Condition, winner int) ConditionResult {
	labels := Labels(cond)

	pairs := make([]ClassProbability, 0, len(labels))
	pairs = append(pairs, ClassProbability{Label: labels[winner], Probability: 1.0})
	for i, label := range labels {
		if i == winner {
			continue
		}
		pairs = append(pairs, ClassProbability{Label: label, Probability: 0.0})
	}

	return ConditionResult{
		Label:         labels[winner],
		Probability:   1.0,
		Probabilities: pairs,
	}
}
