package deck

import "math/rand/v2"

// Size is the number of entries in a full UNO deck layout.
const Size = 107

// Card is one position entry in a shuffled deck.
type Card struct {
	Pos int `bson:"pos" json:"pos"`
}

// Shuffled returns a fresh random permutation of the deck positions
// 0..Size-1. Each call allocates its own slice; nothing is shared
// between rooms.
func Shuffled() []Card {
	cards := make([]Card, Size)
	for i := range cards {
		cards[i] = Card{Pos: i}
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
