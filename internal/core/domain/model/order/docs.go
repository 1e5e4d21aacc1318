// Package order implements the Order aggregate and the fulfillment state machine.
//
// The package includes:
//   - Order: the aggregate root owning its items and status history
//   - Status and PaymentStatus: closed enums persisted by name
//   - Transition: the transition table (predecessors -> target) with guard messages,
//     default history notes and the inventory/payment effect of each step
//   - Item and HistoryEntry: immutable children of the aggregate
//
// Key business rules:
//   - subtotal = Σ item.total_price and total = subtotal + tax + delivery fee
//   - a transition whose guard fails leaves the order untouched
//   - each applied transition appends exactly one history entry
package order
