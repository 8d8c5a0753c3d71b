package poker

import (
	"fmt"
	"strings"
)

// Rank is the face value of a card, Two (2) through Ace (14).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// Valid reports whether r is one of the thirteen standard ranks.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// String returns the single-character rank ("2".."9", "T", "J", "Q", "K", "A").
func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Name returns the display name of the rank, spelling out ten.
func (r Rank) Name() string {
	if r == Ten {
		return "10"
	}
	return r.String()
}

// Suit is one of the four French suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s <= Spades
}

// String returns the lowercase suit letter.
func (s Suit) String() string {
	if !s.Valid() {
		return "?"
	}
	return string(suitChars[s])
}

// Symbol returns the unicode suit symbol.
func (s Suit) Symbol() string {
	return [...]string{"♣", "♦", "♥", "♠"}[s&3]
}

// IsRed reports whether the suit is printed in red.
func (s Suit) IsRed() bool {
	return s == Diamonds || s == Hearts
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card from a rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Valid reports whether the card belongs to a standard deck.
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit.Valid()
}

// String returns the two-character notation, e.g. "As" or "Td".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Pretty returns the card with its suit symbol, e.g. "A♠".
func (c Card) Pretty() string {
	return c.Rank.Name() + c.Suit.Symbol()
}

// index maps the card to 0..51, suit-major.
func (c Card) index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// ParseCard parses two-character notation such as "As", "Td" or "2c".
// "10" is accepted for ten.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	ri := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	if ri < 0 {
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}
	si := strings.IndexByte(suitChars, strings.ToLower(s[1:])[0])
	if si < 0 {
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}
	return NewCard(Two+Rank(ri), Suit(si)), nil
}

// ParseCards parses a list of cards separated by spaces or commas, or
// packed together ("AsKd" or "As Kd").
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	var cards []Card
	for _, f := range fields {
		for len(f) > 0 {
			n := 2
			if strings.HasPrefix(f, "10") {
				n = 3
			}
			if len(f) < n {
				return nil, fmt.Errorf("invalid card %q", f)
			}
			c, err := ParseCard(f[:n])
			if err != nil {
				return nil, err
			}
			cards = append(cards, c)
			f = f[n:]
		}
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests
// and fixed tables.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins cards in two-character notation separated by spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// MarshalText encodes the card in two-character notation.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card %d/%d", c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes two-character notation.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
