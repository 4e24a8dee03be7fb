package domain

import (
	"strings"

	m "securehls.dev/pkg/securehls/internal/model"
)

// ClassifierRule maps case-insensitive keywords to one bug type.
type ClassifierRule struct {
	BugType  m.BugType `mapstructure:"bug_type" yaml:"bug_type"`
	Keywords []string  `mapstructure:"keywords" yaml:"keywords"`
}

// DefaultClassifierRules is the built-in keyword table. Order matters: the
// first rule with a matching keyword wins.
var DefaultClassifierRules = []ClassifierRule{
	{
		BugType:  m.BugOOBRead,
		Keywords: []string{"out of bounds", "array index out of bounds", "out-of-bounds", "buffer overrun"},
	},
	{
		BugType:  m.BugOOBWrite,
		Keywords: []string{"out of bounds", "buffer overflow", "array index out of bounds", "out-of-bounds"},
	},
	{
		BugType:  m.BugNullDeref,
		Keywords: []string{"null pointer", "dereference of null", "null dereference"},
	},
}

// BugClassifier maps a diagnostic message to a bug type.
type BugClassifier interface {
	Classify(message string) m.BugType
	BugTypes() []m.BugType
}

type bugClassifier struct {
	rules []ClassifierRule
}

// NewBugClassifier builds a classifier from an ordered rule table. An empty
// table selects DefaultClassifierRules.
func NewBugClassifier(rules []ClassifierRule) BugClassifier {
	if len(rules) == 0 {
		rules = DefaultClassifierRules
	}

	normalized := make([]ClassifierRule, 0, len(rules))

	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))

		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}

		normalized = append(normalized, ClassifierRule{BugType: rule.BugType, Keywords: keywords})
	}

	return &bugClassifier{rules: normalized}
}

// Classify returns the first matching rule's bug type, or m.Unrelated.
func (c *bugClassifier) Classify(message string) m.BugType {
	lower := strings.ToLower(message)

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.BugType
			}
		}
	}

	return m.Unrelated
}

// BugTypes lists the distinct bug types of the table in declaration order.
func (c *bugClassifier) BugTypes() []m.BugType {
	seen := m.BugTypeSet{}
	out := make([]m.BugType, 0, len(c.rules))

	for _, rule := range c.rules {
		if !seen.Has(rule.BugType) {
			seen.Add(rule.BugType)
			out = append(out, rule.BugType)
		}
	}

	return out
}
