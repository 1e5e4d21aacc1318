// Package account models client and agent balances and the postings that move them.
//
// Ledger identity: total = available + withheld, with both sub-balances never negative.
package account
