// Package fundval is a fund valuation and returns-analysis engine for a
// personal finance tracker. It turns irregular transaction histories, stock
// splits and segmented price scrapes into the derived figures a portfolio
// view needs, and never reads the clock: every entry point takes an explicit
// as-of time, so a given evaluation is internally consistent.
//
// The core functionalities include:
//   - Price Rebasing: Normalizing segmented per-fund price history and stock
//     split events into a continuous series comparable in current share terms.
//   - Returns Calculation: Combining transactions and rebased prices into
//     paper value, realised value, cost basis, gain and day gain per fund.
//   - Time-Series Lines: Projecting per-fund return records into chart lines
//     (absolute value, ROI, price, normalized price, allocation) and an
//     aggregate line across all funds, respecting segment boundaries from
//     sell-and-re-buy gaps.
//   - Portfolio Aggregation: Date-scoped cost and value totals, investment
//     flow between dates, cash breakdown against a net worth snapshot, and
//     allocation target validation.
//   - Budget Buckets: Reconciling expected against actual spend per category
//     and deriving a budget health signal.
//
// Expected missing data is reported as value-level nil or zero results, never
// as errors; errors are reserved for upstream contract breaches such as a
// non-monotonic price cache or a category without its catch-all bucket.
//
// This package is the foundational logic for the `fv` command-line tool and
// the JSON API server.
package fundval
