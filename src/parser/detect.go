package parser

import "errors"

// ErrUnrecognised is returned by Detect when no parser recognises anything in the sample.
var ErrUnrecognised = errors.New("couldn't recognise the format of the input")

// Detect guesses which registered parser understands the given sample of input.
// Only parsers implementing Scorer take part. The parser recognising the most diagnostics
// wins; ties go to the lowest ID so the result is deterministic.
func Detect(r *Registry, sample []byte) (Parser, error) {
	var best Parser
	bestScore := 0
	for _, p := range r.Parsers() {
		scorer, ok := p.(Scorer)
		if !ok {
			continue
		}
		if score := scorer.Score(sample); score > bestScore {
			best = p
			bestScore = score
		}
	}
	if best == nil {
		return nil, ErrUnrecognised
	}
	log.Debug("Detected input as %s output (%d diagnostics in sample)", best.ID(), bestScore)
	return best, nil
}
