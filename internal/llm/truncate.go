package llm

// maxWindowChars is the capped input window of spec.md §4.2 ("~25k
// characters"); text exceeding it is sampled from the front, middle, and
// tail rather than hard-truncated, so the judges/holding near the end of an
// opinion aren't silently dropped.
const maxWindowChars = 25000

const (
	headFraction = 0.40
	midFraction  = 0.35
	tailFraction = 0.25
)

// Truncate samples the first 40%, a middle 35%, and the last 25% of the
// capped window out of text exceeding maxWindowChars (spec.md §4.2).
func Truncate(text string, cap int) string {
	if len(text) <= cap {
		return text
	}

	headLen := int(float64(cap) * headFraction)
	midLen := int(float64(cap) * midFraction)
	tailLen := cap - headLen - midLen

	head := text[:headLen]

	midStart := (len(text) - midLen) / 2
	mid := text[midStart : midStart+midLen]

	tail := text[len(text)-tailLen:]

	return head + "\n...\n" + mid + "\n...\n" + tail
}
