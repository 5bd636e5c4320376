package journal

import (
	"fmt"
	"sort"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// Analysis is the lightweight NLP summary computed for each entry. It feeds
// the dashboard's journal insights; it is not a clinical signal.
type Analysis struct {
	Keywords  []string
	Sentiment float64
	WordCount int
}

const maxKeywords = 5

// Small valence lexicons for a naive sentiment ratio in [-1, 1].
var positiveWords = map[string]bool{
	"happy": true, "calm": true, "grateful": true, "hopeful": true,
	"proud": true, "relaxed": true, "excited": true, "good": true,
	"better": true, "love": true, "peaceful": true, "rested": true,
}

var negativeWords = map[string]bool{
	"sad": true, "anxious": true, "worried": true, "tired": true,
	"stressed": true, "angry": true, "lonely": true, "bad": true,
	"worse": true, "hopeless": true, "afraid": true, "overwhelmed": true,
}

func Analyze(text string) (*Analysis, error) {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze text: %w", err)
	}

	freq := make(map[string]int)
	var words, positive, negative int

	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if !isWordTag(tok.Tag) {
			continue
		}
		words++

		if positiveWords[word] {
			positive++
		}
		if negativeWords[word] {
			negative++
		}

		// Keywords come from nouns and adjectives only.
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ") {
			if len(word) > 2 {
				freq[word]++
			}
		}
	}

	keywords := make([]string, 0, len(freq))
	for w := range freq {
		keywords = append(keywords, w)
	}
	sort.Slice(keywords, func(a, b int) bool {
		if freq[keywords[a]] != freq[keywords[b]] {
			return freq[keywords[a]] > freq[keywords[b]]
		}
		return keywords[a] < keywords[b]
	})
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	var sentiment float64
	if positive+negative > 0 {
		sentiment = float64(positive-negative) / float64(positive+negative)
	}

	return &Analysis{
		Keywords:  keywords,
		Sentiment: sentiment,
		WordCount: words,
	}, nil
}

func isWordTag(tag string) bool {
	if tag == "" {
		return false
	}
	switch tag[0] {
	case '.', ',', ':', '(', ')', '#', '$', '"', '\'', '`':
		return false
	}
	return true
}
