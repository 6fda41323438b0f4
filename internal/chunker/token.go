package chunker

import "strings"

const tokensPerWord = 1.33

// EstimateTokens approximates a token count from whitespace-separated words.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return max(1, int(float64(words)*tokensPerWord))
}
