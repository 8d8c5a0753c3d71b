package poker

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidHand is returned when a card set cannot be evaluated.
var ErrInvalidHand = errors.New("invalid hand")

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// EvaluatedHand is the best five-card hand found in a card set. Cards are
// ordered most significant first and are the only tie-break between hands of
// the same category.
type EvaluatedHand struct {
	Category Category
	Cards    [5]Card
}

// String returns e.g. "Full House [Kc Kd Kh 9s 9c]".
func (h EvaluatedHand) String() string {
	return fmt.Sprintf("%s [%s]", h.Category, FormatCards(h.Cards[:]))
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for an exact tie.
func Compare(a, b EvaluatedHand) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	for i := range a.Cards {
		if a.Cards[i].Rank != b.Cards[i].Rank {
			if a.Cards[i].Rank > b.Cards[i].Rank {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Beats reports whether h is strictly stronger than other.
func (h EvaluatedHand) Beats(other EvaluatedHand) bool {
	return Compare(h, other) > 0
}

// Evaluate finds the best five-card hand made from hole cards and the
// community cards dealt so far. Together they must number five to seven.
func Evaluate(hole, community []Card) (EvaluatedHand, error) {
	cards := make([]Card, 0, len(hole)+len(community))
	cards = append(cards, hole...)
	cards = append(cards, community...)
	return EvaluateCards(cards)
}

// EvaluateCards finds the best five-card hand in a set of five to seven
// distinct cards.
func EvaluateCards(cards []Card) (EvaluatedHand, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return EvaluatedHand{}, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrInvalidHand, len(cards))
	}
	var seen [DeckSize]bool
	for _, c := range cards {
		if !c.Valid() {
			return EvaluatedHand{}, fmt.Errorf("%w: foreign card %v", ErrInvalidHand, c)
		}
		if seen[c.index()] {
			return EvaluatedHand{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		seen[c.index()] = true
	}
	return evaluate(cards), nil
}

// rankGroup is every card of one rank in the evaluated set.
type rankGroup struct {
	rank  Rank
	cards []Card
}

// evaluate runs the category cascade, strongest first. cards must be valid
// and distinct.
func evaluate(cards []Card) EvaluatedHand {
	sorted := sortDesc(cards)
	groups := groupByRank(sorted)

	flushCards := flushCandidate(sorted)
	if flushCards != nil {
		if run, ok := findStraight(flushCards); ok {
			if run[0].Rank == Ace {
				return EvaluatedHand{Category: RoyalFlush, Cards: run}
			}
			return EvaluatedHand{Category: StraightFlush, Cards: run}
		}
	}

	for _, g := range groups {
		if len(g.cards) == 4 {
			return makeHand(FourOfAKind, g.cards, kickers(sorted, 1, g.rank))
		}
	}

	if trips, pair, ok := fullHouse(groups); ok {
		return makeHand(FullHouse, trips, pair)
	}

	if flushCards != nil {
		return makeHand(Flush, flushCards[:5])
	}

	if run, ok := findStraight(sorted); ok {
		return EvaluatedHand{Category: Straight, Cards: run}
	}

	for _, g := range groups {
		if len(g.cards) == 3 {
			return makeHand(ThreeOfAKind, g.cards, kickers(sorted, 2, g.rank))
		}
	}

	var pairs []rankGroup
	for _, g := range groups {
		if len(g.cards) >= 2 {
			pairs = append(pairs, g)
		}
	}
	if len(pairs) >= 2 {
		high, low := pairs[0], pairs[1]
		return makeHand(TwoPair, high.cards[:2], low.cards[:2], kickers(sorted, 1, high.rank, low.rank))
	}
	if len(pairs) == 1 {
		return makeHand(OnePair, pairs[0].cards[:2], kickers(sorted, 3, pairs[0].rank))
	}

	return makeHand(HighCard, sorted[:5])
}

func makeHand(category Category, parts ...[]Card) EvaluatedHand {
	h := EvaluatedHand{Category: category}
	i := 0
	for _, part := range parts {
		for _, c := range part {
			h.Cards[i] = c
			i++
		}
	}
	return h
}

// sortDesc returns a copy of cards ordered by rank then suit, highest first.
func sortDesc(cards []Card) []Card {
	sorted := slices.Clone(cards)
	slices.SortFunc(sorted, func(a, b Card) int {
		if a.Rank != b.Rank {
			return int(b.Rank) - int(a.Rank)
		}
		return int(b.Suit) - int(a.Suit)
	})
	return sorted
}

// groupByRank splits rank-sorted cards into groups, highest rank first.
func groupByRank(sorted []Card) []rankGroup {
	var groups []rankGroup
	for _, c := range sorted {
		if n := len(groups); n > 0 && groups[n-1].rank == c.Rank {
			groups[n-1].cards = append(groups[n-1].cards, c)
			continue
		}
		groups = append(groups, rankGroup{rank: c.Rank, cards: []Card{c}})
	}
	return groups
}

// flushCandidate returns the cards of a suit holding five or more cards,
// still sorted highest first, or nil. Seven cards hold at most one such suit.
func flushCandidate(sorted []Card) []Card {
	var bySuit [4][]Card
	for _, c := range sorted {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}
	for _, suited := range bySuit {
		if len(suited) >= 5 {
			return suited
		}
	}
	return nil
}

// findStraight returns the highest five-card run in rank-sorted cards. An ace
// also plays low, below the two, and is then placed last (5-4-3-2-A).
func findStraight(sorted []Card) ([5]Card, bool) {
	var unique []Card
	for _, c := range sorted {
		if len(unique) == 0 || unique[len(unique)-1].Rank != c.Rank {
			unique = append(unique, c)
		}
	}

	values := make([]int, len(unique))
	for i, c := range unique {
		values[i] = int(c.Rank)
	}
	if len(unique) > 0 && unique[0].Rank == Ace {
		unique = append(unique, unique[0])
		values = append(values, 1)
	}

	var run [5]Card
	for i := 0; i+4 < len(values); i++ {
		if values[i]-values[i+4] == 4 {
			copy(run[:], unique[i:i+5])
			return run, true
		}
	}
	return run, false
}

// fullHouse picks three cards of the highest rank holding three or more and
// two cards of the highest other rank holding two or more.
func fullHouse(groups []rankGroup) (trips, pair []Card, ok bool) {
	tripIdx := -1
	for i, g := range groups {
		if len(g.cards) >= 3 {
			tripIdx = i
			break
		}
	}
	if tripIdx < 0 {
		return nil, nil, false
	}
	for i, g := range groups {
		if i != tripIdx && len(g.cards) >= 2 {
			return groups[tripIdx].cards[:3], g.cards[:2], true
		}
	}
	return nil, nil, false
}

// kickers returns the n highest cards whose rank is not excluded.
func kickers(sorted []Card, n int, exclude ...Rank) []Card {
	out := make([]Card, 0, n)
	for _, c := range sorted {
		if len(out) == n {
			break
		}
		if !slices.Contains(exclude, c.Rank) {
			out = append(out, c)
		}
	}
	return out
}

// Describe returns a short phrase for the hand, e.g. "Two Pair, Kings and Queens".
func (h EvaluatedHand) Describe() string {
	c := h.Cards
	switch h.Category {
	case RoyalFlush:
		return h.Category.String()
	case StraightFlush, Straight:
		return fmt.Sprintf("%s, %s high", h.Category, rankWord(c[0].Rank))
	case FourOfAKind, ThreeOfAKind, OnePair:
		return fmt.Sprintf("%s, %s", h.Category, rankPlural(c[0].Rank))
	case FullHouse:
		return fmt.Sprintf("%s, %s full of %s", h.Category, rankPlural(c[0].Rank), rankPlural(c[3].Rank))
	case TwoPair:
		return fmt.Sprintf("%s, %s and %s", h.Category, rankPlural(c[0].Rank), rankPlural(c[2].Rank))
	default:
		return fmt.Sprintf("%s, %s high", h.Category, rankWord(c[0].Rank))
	}
}

var rankWords = map[Rank]string{
	Two: "Two", Three: "Three", Four: "Four", Five: "Five", Six: "Six",
	Seven: "Seven", Eight: "Eight", Nine: "Nine", Ten: "Ten",
	Jack: "Jack", Queen: "Queen", King: "King", Ace: "Ace",
}

func rankWord(r Rank) string {
	return rankWords[r]
}

func rankPlural(r Rank) string {
	w := rankWord(r)
	if r == Six {
		return w + "es"
	}
	return w + "s"
}

// Best returns the strongest of the given hands.
func Best(hands ...EvaluatedHand) (EvaluatedHand, bool) {
	if len(hands) == 0 {
		return EvaluatedHand{}, false
	}
	best := hands[0]
	for _, h := range hands[1:] {
		if h.Beats(best) {
			best = h
		}
	}
	return best, true
}
