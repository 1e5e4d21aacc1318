// Package services provides domain services that span the order and account
// aggregates of the fulfillment system.
//
// The package includes:
//   - Settlement: maps an applied status change to the ledger postings it requires
//   - AgentHoldPolicy: computes the guarantee withheld from an agent taking an order
package services
