package gen

import (
	"fmt"
	"strings"
)

// Location is a parsed element locator: a strategy and its selector
// value, split out of a recorded "strategy=value" target.
type Location struct {
	Strategy string
	Value    string
}

// Locator strategies understood by the built-in formats.
const (
	StrategyID              = "id"
	StrategyName            = "name"
	StrategyCSS             = "css"
	StrategyXPath           = "xpath"
	StrategyLinkText        = "linkText"
	StrategyPartialLinkText = "partialLinkText"
)

// ParseLocation splits a recorded element target into strategy and
// value. Targets starting with "//" are implicit xpath, matching the
// recorder's shorthand. The legacy "link=" prefix maps to linkText.
func ParseLocation(target string) (Location, error) {
	if strings.HasPrefix(target, "//") {
		return Location{Strategy: StrategyXPath, Value: target}, nil
	}

	idx := strings.Index(target, "=")
	if idx <= 0 {
		return Location{}, fmt.Errorf("malformed locator %q", target)
	}

	strategy, value := target[:idx], target[idx+1:]

	switch strategy {
	case "link":
		strategy = StrategyLinkText
	case StrategyID, StrategyName, StrategyCSS, StrategyXPath,
		StrategyLinkText, StrategyPartialLinkText:
	default:
		return Location{}, fmt.Errorf("unknown locator strategy %q in %q", strategy, target)
	}

	return Location{Strategy: strategy, Value: value}, nil
}

// OptionLocator is a parsed select-option locator. Unprefixed values
// select by visible label, the recorder's default.
type OptionLocator struct {
	Strategy string
	Value    string
}

// Option locator strategies.
const (
	OptionLabel = "label"
	OptionValue = "value"
	OptionIndex = "index"
)

// ParseOptionLocator splits a recorded option locator. It never fails:
// anything without a known prefix selects by label.
func ParseOptionLocator(s string) OptionLocator {
	idx := strings.Index(s, "=")
	if idx > 0 {
		switch strategy := s[:idx]; strategy {
		case OptionLabel, OptionValue, OptionIndex:
			return OptionLocator{Strategy: strategy, Value: s[idx+1:]}
		}
	}

	return OptionLocator{Strategy: OptionLabel, Value: s}
}
