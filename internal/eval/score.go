package eval

import (
	"strings"
	"unicode"
)

// Faithfulness measures how much of the answer is grounded in the context:
// the fraction of answer sentences whose content tokens substantially overlap
// the context's token set. 1.0 means every sentence is supported.
func Faithfulness(answer string, contexts []string) float64 {
	sentences := splitSentences(answer)
	if len(sentences) == 0 {
		return 0
	}

	contextTokens := make(map[string]struct{})
	for _, c := range contexts {
		for _, tok := range tokenize(c) {
			contextTokens[tok] = struct{}{}
		}
	}

	supported := 0
	for _, sentence := range sentences {
		tokens := tokenize(sentence)
		if len(tokens) == 0 {
			continue
		}
		hits := 0
		for _, tok := range tokens {
			if _, ok := contextTokens[tok]; ok {
				hits++
			}
		}
		if float64(hits)/float64(len(tokens)) >= 0.5 {
			supported++
		}
	}

	return float64(supported) / float64(len(sentences))
}

// AnswerRelevancy measures how much of the question's vocabulary the answer
// engages with: the fraction of question content tokens present in the
// answer.
func AnswerRelevancy(question, answer string) float64 {
	questionTokens := tokenize(question)
	if len(questionTokens) == 0 {
		return 0
	}

	answerTokens := make(map[string]struct{})
	for _, tok := range tokenize(answer) {
		answerTokens[tok] = struct{}{}
	}

	hits := 0
	for _, tok := range questionTokens {
		if _, ok := answerTokens[tok]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(questionTokens))
}

// stopwords are excluded from both metrics so scores track substance, not
// glue words.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "were": {}, "what": {}, "which": {},
	"with": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
