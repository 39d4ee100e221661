// Package rules answers a few trigger phrases with canned replies before any
// retrieval or completion happens.
package rules

import "strings"

// Rule maps a trigger substring to a canned reply.
type Rule struct {
	Trigger string `yaml:"trigger"`
	Reply   string `yaml:"reply"`
}

// Defaults is the built-in rule set. Order matters: first match wins.
var Defaults = []Rule{
	{Trigger: "hi", Reply: "Hello! How can I help you today?"},
	{Trigger: "hello", Reply: "Hi there! What would you like to know?"},
	{Trigger: "bye", Reply: "Goodbye! Have a great day!"},
}

// Matcher checks queries against an ordered rule list.
type Matcher struct {
	rules []Rule
}

// NewMatcher copies rules, lower-casing triggers and dropping empty ones.
// A nil slice selects Defaults.
func NewMatcher(rules []Rule) *Matcher {
	if rules == nil {
		rules = Defaults
	}
	m := &Matcher{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		trigger := strings.ToLower(strings.TrimSpace(r.Trigger))
		if trigger == "" {
			continue
		}
		m.rules = append(m.rules, Rule{Trigger: trigger, Reply: r.Reply})
	}
	return m
}

// Match returns the reply of the first rule whose trigger occurs anywhere in
// query, case-insensitively.
func (m *Matcher) Match(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, r := range m.rules {
		if strings.Contains(q, r.Trigger) {
			return r.Reply, true
		}
	}
	return "", false
}

// Rules returns the normalized rule list.
func (m *Matcher) Rules() []Rule {
	return append([]Rule(nil), m.rules...)
}
