package fundval

import (
	"math"

	"github.com/stvnw/fundval/date"
)

// NetWorthSnapshot is the stored point-in-time view of liquid wealth that
// cash reconciliation runs against. Amounts are minor units.
type NetWorthSnapshot struct {
	Date           date.Date `json:"date"`
	CashEasyAccess float64   `json:"cashEasyAccess"` // cash in bank at the snapshot
	Stocks         float64   `json:"stocks"`         // stocks aggregate, including cash held on platform
}

// CashComponents labels what went into a cash breakdown.
type CashComponents struct {
	CashAtSnapshot      float64 `json:"cashAtSnapshot"`
	InvestmentsSince    float64 `json:"investmentsSince"`
	SpendingSince       float64 `json:"spendingSince"`
	StocksIncludingCash float64 `json:"stocksIncludingCash"`
	StockValue          float64 `json:"stockValue"`
}

// CashBreakdown reconciles the snapshot with what has happened since.
type CashBreakdown struct {
	CashInBank   float64        `json:"cashInBank"`
	CashToInvest float64        `json:"cashToInvest"`
	Breakdown    CashComponents `json:"breakdown"`
}

// ComputeCashBreakdown derives available cash as of today from the last net
// worth snapshot, the fund flow since it, and non-fund spending since it.
//
// Cash in bank is the snapshot cash minus money moved into funds and money
// spent, clamped at zero: reconciliation can lag reality but never reports
// negative cash. Cash to invest is that bank cash plus the stocks aggregate
// not currently marked to market in funds, again clamped at zero, so an
// overdrawn position takes from bank cash before reporting shortfall.
func ComputeCashBreakdown(snap NetWorthSnapshot, funds []Fund, cache *PriceCache, spendingSince float64, today date.Date) CashBreakdown {
	investmentsSince := FundsCostToDate(today, funds) - FundsCostToDate(snap.Date, funds)
	stockValue := StockValue(funds, cache, today)

	cashInBank := math.Max(0, snap.CashEasyAccess-investmentsSince-spendingSince)
	cashToInvest := math.Max(0, cashInBank+snap.Stocks-stockValue)

	return CashBreakdown{
		CashInBank:   cashInBank,
		CashToInvest: cashToInvest,
		Breakdown: CashComponents{
			CashAtSnapshot:      snap.CashEasyAccess,
			InvestmentsSince:    investmentsSince,
			SpendingSince:       spendingSince,
			StocksIncludingCash: snap.Stocks,
			StockValue:          stockValue,
		},
	}
}
