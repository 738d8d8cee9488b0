package translator

// dynamicBatchSize estimates how many texts fit one provider call. The
// per-text token cost is approximated as average rune count times
// tokensPerChar; tokenBudget divided by that estimate gives the raw size,
// clamped to [1, min(ceiling, hardCap)]. Longer average texts therefore
// never increase the batch size.
func dynamicBatchSize(texts []string, ceiling int, tokensPerChar float64, tokenBudget, hardCap int) int {
	limit := ceiling
	if limit <= 0 || limit > hardCap {
		limit = hardCap
	}
	if len(texts) == 0 {
		return limit
	}

	total := 0
	for _, t := range texts {
		total += len([]rune(t))
	}
	avgChars := float64(total) / float64(len(texts))
	estimatedTokens := avgChars * tokensPerChar
	if estimatedTokens <= 0 {
		return limit
	}

	size := int(float64(tokenBudget) / estimatedTokens)
	if size < 1 {
		size = 1
	}
	if size > limit {
		size = limit
	}
	return size
}
