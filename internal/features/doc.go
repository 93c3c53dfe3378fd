// Package features derives the analytical columns of the market dataset:
// per-ticker daily simple returns, trailing-window annualized volatility,
// rule-based headline sentiment, and the merge of prices, returns and
// headlines into one denormalized table.
//
// Everything here is a pure in-memory transform over dataset rows. Inputs
// are never mutated; each function returns fresh slices.
package features
