package domain

// RankBand is one tier of the scoring rubric.
type RankBand struct {
	Min    int
	Max    int
	Tier   string
	Titles []string
}

// Rubric is the fixed four-band scoring rubric the model is instructed to
// apply. Band boundaries are inclusive.
var Rubric = []RankBand{
	{Min: 0, Max: 39, Tier: "Consumer Trap", Titles: []string{"Consumer Trap", "Rat Race Runner"}},
	{Min: 40, Max: 59, Tier: "Break-Even Battler", Titles: []string{"Break-Even Battler"}},
	{Min: 60, Max: 79, Tier: "Asset Builder", Titles: []string{"Smart Saver", "Asset Builder"}},
	{Min: 80, Max: 100, Tier: "Cashflow Master", Titles: []string{"Cashflow Master", "Financial Freedom Fighter"}},
}

// BandForScore returns the rubric band containing score. Scores outside
// [0,100] return false.
func BandForScore(score int) (RankBand, bool) {
	for _, b := range Rubric {
		if score >= b.Min && score <= b.Max {
			return b, true
		}
	}
	return RankBand{}, false
}
