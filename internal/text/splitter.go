package text

import "fmt"

// Piece is a bounded slice of a source text. Overlap is the number of leading
// runes the piece shares with its predecessor, so concatenating pieces while
// dropping each declared overlap reproduces the source text exactly.
type Piece struct {
	Content string
	Overlap int
}

// Splitter cuts text into pieces of at most Size runes with Overlap runes of
// carry-over between neighbours. Cut points prefer paragraph breaks, then
// sentence ends, then a hard cut at the length ceiling.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("splitter size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("splitter overlap must be in [0, size), got %d", overlap)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

func (s *Splitter) Split(text string) []Piece {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var pieces []Piece
	pos := 0
	for pos < len(runes) {
		carry := s.overlap
		if carry > pos {
			carry = pos
		}

		// The new segment plus the carried overlap must stay under the ceiling.
		window := s.size - carry
		var cut int
		if pos+window >= len(runes) {
			cut = len(runes)
		} else {
			cut = pos + cutPoint(runes[pos:pos+window])
		}

		pieces = append(pieces, Piece{
			Content: string(runes[pos-carry : cut]),
			Overlap: carry,
		})
		pos = cut
	}
	return pieces
}

// cutPoint picks where to end the next segment inside the window: after the
// last paragraph break if any, else after the last sentence end, else at the
// window edge.
func cutPoint(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' && window[i-1] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		switch window[i-1] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return len(window)
}

// Reconstruct reverses Split: it concatenates pieces while dropping each
// declared overlap prefix.
func Reconstruct(pieces []Piece) string {
	var out []rune
	for _, p := range pieces {
		r := []rune(p.Content)
		out = append(out, r[p.Overlap:]...)
	}
	return string(out)
}
