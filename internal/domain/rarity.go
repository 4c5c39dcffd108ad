package domain

// Rarity tiers attached to minted achievement NFTs.
const (
	RarityLegendary = "Legendary"
	RarityEpic      = "Epic"
	RarityRare      = "Rare"
	RarityUncommon  = "Uncommon"
	RarityCommon    = "Common"
)

// RarityForScore maps a completion score to its rarity tier. Thresholds are
// inclusive, so a score sitting exactly on a boundary gets the higher tier.
func RarityForScore(score int) string {
	switch {
	case score >= 95:
		return RarityLegendary
	case score >= 90:
		return RarityEpic
	case score >= 80:
		return RarityRare
	case score >= 70:
		return RarityUncommon
	default:
		return RarityCommon
	}
}

// StatusForScore derives the completion status recorded for a form score.
func StatusForScore(score int) string {
	switch {
	case score >= 70:
		return StatusCompleted
	case score >= 40:
		return StatusNeedsImprovement
	default:
		return StatusFailed
	}
}
