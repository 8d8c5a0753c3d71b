package poker

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrDeckExhausted is returned when drawing from an empty deck. Two-player
// hold'em never uses more than nine cards, so this signals a programming error.
var ErrDeckExhausted = errors.New("deck exhausted")

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck represents a standard 52-card deck consumed from the top
type Deck struct {
	cards [DeckSize]Card
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := NewOrderedDeck()
	d.rng = rng
	d.Shuffle()
	return d
}

// NewOrderedDeck creates an unshuffled deck: clubs two through spades ace.
func NewOrderedDeck() *Deck {
	d := &Deck{}
	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	return d
}

// NewDeckWithTop creates a deck whose first draws are top, in order, followed
// by the remaining cards shuffled with rng. It fails if top contains a
// duplicate or a card outside the standard deck.
func NewDeckWithTop(rng *rand.Rand, top ...Card) (*Deck, error) {
	var seen [DeckSize]bool
	for _, c := range top {
		if !c.Valid() {
			return nil, fmt.Errorf("foreign card %v", c)
		}
		if seen[c.index()] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c.index()] = true
	}

	d := &Deck{rng: rng}
	copy(d.cards[:], top)
	i := len(top)
	for _, c := range NewOrderedDeck().cards {
		if !seen[c.index()] {
			d.cards[i] = c
			i++
		}
	}

	rest := d.cards[len(top):]
	for j := len(rest) - 1; j > 0; j-- {
		k := d.intn(j + 1)
		rest[j], rest[k] = rest[k], rest[j]
	}
	return d, nil
}

// Shuffle shuffles the whole deck using Fisher-Yates and resets it
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) intn(n int) int {
	if d.rng != nil {
		return d.rng.Intn(n)
	}
	return rand.Intn(n)
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// Deal draws n cards. Nothing is drawn if fewer than n remain.
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
