package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeHoleCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    string
		expected HoleCardCategory
	}{
		{"Pocket Aces", "As Ah", CategoryPremium},
		{"Pocket Jacks", "Jh Jd", CategoryPremium},
		{"Ace King offsuit", "Ac Kh", CategoryPremium},
		{"King Ace reversed", "Kh Ac", CategoryPremium},

		{"Pocket Tens", "Tc Th", CategoryStrong},
		{"Ace Queen suited", "As Qs", CategoryStrong},
		{"Ace Jack offsuit", "Ad Jc", CategoryStrong},

		{"Pocket Nines", "9c 9h", CategoryMedium},
		{"Pocket Sevens", "7h 7c", CategoryMedium},
		{"King Queen suited", "Ks Qs", CategoryMedium},
		{"Queen Ten suited", "Qd Td", CategoryMedium},

		{"Pocket Sixes", "6c 6h", CategoryWeak},
		{"Pocket Twos", "2c 2h", CategoryWeak},
		{"Suited connectors 76s", "7h 6h", CategoryWeak},
		{"Suited one-gapper 53s", "5d 3d", CategoryWeak},

		{"Seven Two offsuit", "7c 2h", CategoryTrash},
		{"King Queen offsuit", "Kc Qh", CategoryTrash},
		{"Jack Four offsuit", "Jh 4c", CategoryTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := MustParseCards(tt.cards)
			require.Len(t, cards, 2)
			assert.Equal(t, tt.expected, CategorizeHoleCards(cards[0], cards[1]))
			assert.Equal(t, tt.expected, CategorizeHole(cards))
		})
	}
}

func TestCategorizeHoleRejectsBadInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategoryUnknown, CategorizeHole(MustParseCards("As")))
	assert.Equal(t, CategoryUnknown, CategorizeHole(MustParseCards("As Ah Ac")))
	assert.Equal(t, CategoryUnknown, CategorizeHoleCards(Card{}, NewCard(Ace, Spades)))
	assert.Equal(t, CategoryUnknown, CategorizeHoleCards(NewCard(Ace, Spades), NewCard(Ace, Spades)))
}

func TestCategoryScoreOrdering(t *testing.T) {
	t.Parallel()

	order := []HoleCardCategory{CategoryTrash, CategoryWeak, CategoryMedium, CategoryStrong, CategoryPremium}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Score(), order[i-1].Score(), order[i])
	}
	assert.Equal(t, 0, CategoryUnknown.Score())
}
