package analyzer

import "strings"

// Default wordlists for the built-in sentiment scorer. Hosts wanting a
// real model supply their own SentimentFunc instead.
var (
	positiveWords = map[string]struct{}{
		"good": {}, "great": {}, "love": {}, "amazing": {}, "awesome": {},
		"win": {}, "winning": {}, "best": {}, "bullish": {}, "up": {},
		"moon": {}, "gain": {}, "gains": {}, "profit": {}, "excited": {},
		"happy": {}, "strong": {}, "huge": {}, "massive": {}, "incredible": {},
	}
	negativeWords = map[string]struct{}{
		"bad": {}, "terrible": {}, "hate": {}, "awful": {}, "scam": {},
		"dump": {}, "crash": {}, "bearish": {}, "down": {}, "loss": {},
		"losses": {}, "rug": {}, "rekt": {}, "sad": {}, "weak": {},
		"fear": {}, "worst": {}, "dead": {}, "broke": {}, "fail": {},
	}
)

// LexiconSentiment is the default sentiment function: the signed fraction
// of opinionated words in the text, in [-1, 1]. Neutral text scores 0.
func LexiconSentiment(text string) float64 {
	var pos, neg int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;'\"()#$@")
		if _, ok := positiveWords[word]; ok {
			pos++
		}
		if _, ok := negativeWords[word]; ok {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}

// clampSentiment bounds an injected sentiment value to [-1, 1].
func clampSentiment(s float64) float64 {
	if s < -1 {
		return -1
	}
	if s > 1 {
		return 1
	}
	return s
}
