package canvas

// Status text shown under the poster.
var quirky = [...]string{
	"Scratch to reveal the mystery!",
	"Keep scratching, movie buff!",
	"Peek-a-boo, I see a movie!",
	"Almost there, film fanatic!",
	"The plot thickens... scratch more!",
	"Lights, camera, scratch!",
	"That's a wrap! Fully revealed!",
	"Voilà! Movie magic uncovered!",
	"Scratch limit reached!",
}

// StatusText picks the message for the current scratch state. outcome is
// "playing", "won" or "lost".
func StatusText(s State, reveal int, outcome string) string {
	switch outcome {
	case "won":
		return "Ta-da! Mystery solved!"
	case "lost":
		return "Oh no! Better luck next time!"
	}
	if !s.Loaded {
		return "Loading poster..."
	}
	if s.Remaining <= 0 {
		return quirky[8]
	}
	switch sp := s.Scratched; {
	case sp > 90:
		return quirky[7]
	case sp > 70:
		return quirky[6]
	case sp > 50:
		return quirky[4]
	case sp > 30:
		return quirky[2]
	}
	switch {
	case reveal >= 100:
		return quirky[7]
	case reveal >= 70:
		return quirky[5]
	case reveal >= 50:
		return quirky[3]
	case reveal >= 30:
		return quirky[1]
	}
	return quirky[0]
}
