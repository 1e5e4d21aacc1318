package services

import (
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AgentHoldPolicy computes the guarantee an agent must have withheld before
// taking an order: a percentage of the order total, rounded to cents.
type AgentHoldPolicy struct {
	percentage decimal.Decimal
}

func NewAgentHoldPolicy(percentage decimal.Decimal) (AgentHoldPolicy, error) {
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return AgentHoldPolicy{}, errs.NewValueIsOutOfRangeError("agent hold percentage", percentage, 0, 100)
	}
	return AgentHoldPolicy{percentage: percentage}, nil
}

func (p AgentHoldPolicy) HoldFor(total decimal.Decimal) decimal.Decimal {
	return total.Mul(p.percentage).Div(hundred).Round(2)
}
