package domain

import "github.com/shopspring/decimal"

const (
	RankStarter  = "STARTER"
	RankBronze   = "BRONZE"
	RankSilver   = "SILVER"
	RankGold     = "GOLD"
	RankPlatinum = "PLATINUM"
	RankDiamond  = "DIAMOND"
)

// RankRate is one row of the fixed commission table.
type RankRate struct {
	Rank    string          `json:"rank"`
	Percent decimal.Decimal `json:"percent"`
}

// RankTable lists ranks in ascending order.
var RankTable = []RankRate{
	{Rank: RankStarter, Percent: decimal.NewFromInt(5)},
	{Rank: RankBronze, Percent: decimal.NewFromInt(7)},
	{Rank: RankSilver, Percent: decimal.NewFromInt(10)},
	{Rank: RankGold, Percent: decimal.NewFromInt(12)},
	{Rank: RankPlatinum, Percent: decimal.NewFromInt(15)},
	{Rank: RankDiamond, Percent: decimal.NewFromInt(20)},
}

func IsRank(rank string) bool {
	for _, r := range RankTable {
		if r.Rank == rank {
			return true
		}
	}
	return false
}

// CommissionPercent returns the percentage for rank; unknown ranks earn the STARTER rate.
func CommissionPercent(rank string) decimal.Decimal {
	for _, r := range RankTable {
		if r.Rank == rank {
			return r.Percent
		}
	}
	return RankTable[0].Percent
}

// Commission computes amount * rate for the rank, rounded to AmountPlaces.
func Commission(rank string, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(CommissionPercent(rank)).Div(decimal.NewFromInt(100)).Round(AmountPlaces)
}
