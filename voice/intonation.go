package voice

// MaxGlideSemitones is the pitch distance covered by a full-strength
// intonation glide (coefficient ±1) across an utterance.
const MaxGlideSemitones = 3.0

// OffsetAt computes the intonation pitch offset in semitones for the symbol
// at position (0-based) within an utterance of total symbols. The offset
// ramps linearly from 0 at the first symbol to coeff × MaxGlideSemitones at
// the last. Positive coefficients rise toward the sentence end (question-
// like), negative ones fall (statement-like). Single-symbol utterances have
// no glide.
//
// The offset is added to the profile's base shift before the random
// variation draw, so intonation and randomization compose additively.
func OffsetAt(position, total int, coeff float64) float64 {
	if total <= 1 || coeff == 0 {
		return 0
	}
	if position <= 0 {
		return 0
	}
	if position > total-1 {
		position = total - 1
	}
	return coeff * MaxGlideSemitones * float64(position) / float64(total-1)
}
