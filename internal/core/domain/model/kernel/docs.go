// Package kernel holds the value objects shared by every aggregate of the
// fulfillment domain: identifiers, currencies and the acting party.
package kernel
