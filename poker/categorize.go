package poker

// HoleCardCategory represents the preflop strength of two hole cards
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// Score maps the category onto 0 (trash or unknown) through 4 (premium).
func (c HoleCardCategory) Score() int {
	switch c {
	case CategoryPremium:
		return 4
	case CategoryStrong:
		return 3
	case CategoryMedium:
		return 2
	case CategoryWeak:
		return 1
	default:
		return 0
	}
}

// CategorizeHoleCards provides a simple preflop hand categorization.
// Categories: Premium (JJ+, AK), Strong (TT, AQ, AJ), Medium (77-99, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
func CategorizeHoleCards(card1, card2 Card) HoleCardCategory {
	if !card1.Valid() || !card2.Valid() || card1 == card2 {
		return CategoryUnknown
	}

	suited := card1.Suit == card2.Suit
	small, big := card1.Rank, card2.Rank
	if small > big {
		small, big = big, small
	}
	isPair := small == big

	switch {
	case isPair && small >= Jack, small == King && big == Ace:
		return CategoryPremium
	case isPair && small == Ten, big == Ace && (small == Queen || small == Jack):
		return CategoryStrong
	case isPair && small >= Seven, suited && small >= Ten:
		return CategoryMedium
	case isPair, suited && big-small <= 2:
		return CategoryWeak
	}
	return CategoryTrash
}

// CategorizeHole categorizes a dealt hand, returning CategoryUnknown unless
// exactly two cards are given.
func CategorizeHole(cards []Card) HoleCardCategory {
	if len(cards) != 2 {
		return CategoryUnknown
	}
	return CategorizeHoleCards(cards[0], cards[1])
}
