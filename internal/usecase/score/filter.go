package score

// minLinesForFilter is the sentence count from which the length heuristic
// starts judging a pair. Shorter documents fluctuate too much in relative
// length to be filtered reliably.
const minLinesForFilter = 10

// defaultFilterFraction is the share-imbalance cut of the length heuristic.
const defaultFilterFraction = 0.3

// skipByLength reports whether a pair should be pruned before scoring:
// always when either document is empty; otherwise, when either side has at
// least minLinesForFilter sentences and the two documents' shares of the
// combined sentence count differ by fraction or more. Genuine translations
// have proportionally similar lengths.
func skipByLength(srcLines, trgLines int, fraction float64) bool {
	if srcLines == 0 || trgLines == 0 {
		return true
	}
	if srcLines < minLinesForFilter && trgLines < minLinesForFilter {
		return false
	}

	total := float64(srcLines + trgLines)
	srcShare := float64(srcLines) / total
	trgShare := float64(trgLines) / total

	diff := srcShare - trgShare
	if diff < 0 {
		diff = -diff
	}
	return diff >= fraction
}
