package nl2sql

import (
	"fmt"
	"strings"
)

// Strategy selects how much schema context goes into a generation prompt.
type Strategy string

const (
	StrategyZeroShot     Strategy = "zero-shot"
	StrategySingleDomain Strategy = "single-domain"
	StrategyCrossDomain  Strategy = "cross-domain"
)

func Strategies() []Strategy {
	return []Strategy{StrategyZeroShot, StrategySingleDomain, StrategyCrossDomain}
}

func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case StrategyZeroShot:
		return StrategyZeroShot, nil
	case StrategySingleDomain:
		return StrategySingleDomain, nil
	case StrategyCrossDomain:
		return StrategyCrossDomain, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", raw)
	}
}

func (s Strategy) String() string {
	return string(s)
}
