// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// REFERENCE DECK
// =============================================================================

// DeckSize is the number of cards in the reference deck.
const DeckSize = 78

// Suit identifies a card's suit in the reference deck.
type Suit string

const (
	SuitMajor     Suit = "major"
	SuitWands     Suit = "wands"
	SuitCups      Suit = "cups"
	SuitSwords    Suit = "swords"
	SuitPentacles Suit = "pentacles"
)

// CardInfo is a static reference entry for one of the 78 cards.
// IDs are dense: 0-21 major arcana, then wands, cups, swords,
// pentacles in 14-card blocks.
type CardInfo struct {
	ID   int
	Name string
	Suit Suit
	// Number is the card's rank within its suit (0 for court cards,
	// 0-21 for the major arcana trump number).
	Number int
}

var majorNames = []string{
	"The Fool", "The Magician", "The High Priestess", "The Empress",
	"The Emperor", "The Hierophant", "The Lovers", "The Chariot",
	"Strength", "The Hermit", "Wheel of Fortune", "Justice",
	"The Hanged Man", "Death", "Temperance", "The Devil",
	"The Tower", "The Star", "The Moon", "The Sun",
	"Judgement", "The World",
}

var minorRanks = []string{
	"Ace", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Page", "Knight", "Queen", "King",
}

var minorSuits = []struct {
	suit Suit
	name string
}{
	{SuitWands, "Wands"},
	{SuitCups, "Cups"},
	{SuitSwords, "Swords"},
	{SuitPentacles, "Pentacles"},
}

// Deck is the full 78-card reference table, indexed by card ID.
var Deck = buildDeck()

func buildDeck() []CardInfo {
	deck := make([]CardInfo, 0, DeckSize)

	for i, name := range majorNames {
		deck = append(deck, CardInfo{ID: i, Name: name, Suit: SuitMajor, Number: i})
	}

	id := len(majorNames)
	for _, s := range minorSuits {
		for rank, rankName := range minorRanks {
			number := rank + 1
			if rank >= 10 {
				// Court cards carry no rank number.
				number = 0
			}
			deck = append(deck, CardInfo{
				ID:     id,
				Name:   rankName + " of " + s.name,
				Suit:   s.suit,
				Number: number,
			})
			id++
		}
	}

	return deck
}

// CardByID returns the reference entry for a card ID, or false when the
// ID is outside the deck.
func CardByID(id int) (CardInfo, bool) {
	if id < 0 || id >= len(Deck) {
		return CardInfo{}, false
	}
	return Deck[id], true
}

// CardName returns the reference name for a card ID, falling back to the
// name the backend supplied when the ID is unknown.
func CardName(card TarotCard) string {
	if info, ok := CardByID(card.CardID); ok {
		return info.Name
	}
	return card.CardName
}
