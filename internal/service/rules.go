package service

import "github.com/shopspring/decimal"

// BonusRules owns every constant the settlement math depends on. One
// instance is shared by the settlement and earnings services so the two can
// never disagree on rates.
type BonusRules struct {
	tier1Rate      decimal.Decimal
	tier2Rate      decimal.Decimal
	pointsPerLevel int64
}

// NewBonusRules takes tier rates in percent (10 means 10%).
func NewBonusRules(tier1Percent, tier2Percent, pointsPerLevel int64) BonusRules {
	hundred := decimal.NewFromInt(100)
	return BonusRules{
		tier1Rate:      decimal.NewFromInt(tier1Percent).Div(hundred),
		tier2Rate:      decimal.NewFromInt(tier2Percent).Div(hundred),
		pointsPerLevel: pointsPerLevel,
	}
}

func DefaultBonusRules() BonusRules {
	return NewBonusRules(10, 2, 100)
}

// Tier1Bonus is floor(points * tier1Rate). Computed from the base task
// points, not from any previously floored amount.
func (r BonusRules) Tier1Bonus(points int64) int64 {
	return decimal.NewFromInt(points).Mul(r.tier1Rate).Floor().IntPart()
}

// Tier2Bonus is floor(points * tier2Rate), again from the base points.
func (r BonusRules) Tier2Bonus(points int64) int64 {
	return decimal.NewFromInt(points).Mul(r.tier2Rate).Floor().IntPart()
}

// Level derives the level for a lifetime earnings total.
func (r BonusRules) Level(totalEarned int64) int {
	if totalEarned < 0 {
		return 1
	}
	return int(totalEarned/r.pointsPerLevel) + 1
}
