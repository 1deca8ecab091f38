package domain

import (
	"fmt"
	"time"
)

type Strategy int

const (
	StrategyBecomeFirst Strategy = iota + 1
	StrategyEqualPrice
)

const DefaultStep Money = 1

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "become-first":
		return StrategyBecomeFirst, nil
	case "equal-price":
		return StrategyEqualPrice, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

func (s Strategy) String() string {
	switch s {
	case StrategyBecomeFirst:
		return "become-first"
	case StrategyEqualPrice:
		return "equal-price"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (s Strategy) Valid() bool {
	return s == StrategyBecomeFirst || s == StrategyEqualPrice
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PricingConfig holds the bot settings of one catalog item.
type PricingConfig struct {
	ProductID string
	CostPrice Money
	BotActive bool
	Strategy  Strategy
	MinProfit Money
	MaxProfit Money
	Step      Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveStep returns the undercut increment, falling back to DefaultStep
// when none was configured.
func (c PricingConfig) EffectiveStep() Money {
	if c.Step == 0 {
		return DefaultStep
	}
	return c.Step
}

func (c PricingConfig) LowBound() Money  { return c.CostPrice + c.MinProfit }
func (c PricingConfig) HighBound() Money { return c.CostPrice + c.MaxProfit }

// Validate reports the first problem that makes the config unusable for
// pricing. The returned error lists the offending field.
func (c PricingConfig) Validate() error {
	switch {
	case c.CostPrice < 0:
		return &ConfigError{Field: "costPrice", Reason: "must be non-negative"}
	case c.MinProfit < 0:
		return &ConfigError{Field: "minProfit", Reason: "must be non-negative"}
	case c.MaxProfit < 0:
		return &ConfigError{Field: "maxProfit", Reason: "must be non-negative"}
	case c.Step < 0:
		return &ConfigError{Field: "step", Reason: "must be non-negative"}
	case c.MinProfit > c.MaxProfit:
		return &ConfigError{Field: "minProfit", Reason: "must not exceed maxProfit"}
	case !c.Strategy.Valid():
		return &ConfigError{Field: "strategy", Reason: "must be become-first or equal-price"}
	}
	return nil
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid pricing config: %s %s", e.Field, e.Reason)
}
