package merge

import (
	"encoding/json"
	"fmt"
)

// rulesFile is the on-disk shape of a rule set:
//
//	{"rules": [{"element_type": "I-SIGNAL", "conflict_kind": "duplicate_element",
//	            "action": "merge_attributes", "priority": 10}]}
type rulesFile struct {
	Rules []Rule `json:"rules"`
}

// ParseRules decodes a JSON rule set for the rule_based strategy. Reading the
// file is the caller's job; the engine never touches the file system.
func ParseRules(data []byte) ([]Rule, error) {
	var f rulesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("merge: invalid rules JSON: %w", err)
	}
	if err := validateOptions(Options{Strategy: StrategyRuleBased, Rules: f.Rules}); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// DefaultRules mirrors the rule set the product ships with: signals keep
// their first definition, interfaces merge attribute sets, primitive types
// take the latest definition.
func DefaultRules() []Rule {
	return []Rule{
		{ElementType: "I-SIGNAL", Kind: KindDuplicateElement, Action: ActionKeepFirst, Priority: 10},
		{ElementType: "SENDER-RECEIVER-INTERFACE", Kind: KindDuplicateElement, Action: ActionMergeAttributes, Priority: 8},
		{ElementType: "PRIMITIVE-TYPE", Kind: KindDuplicateElement, Action: ActionKeepLast, Priority: 5},
	}
}
