package rules

import "testing"

func TestMatch(t *testing.T) {
	m := NewMatcher(nil)
	cases := []struct {
		query string
		reply string
		ok    bool
	}{
		{"hi there", Defaults[0].Reply, true},
		{"HELLO", Defaults[1].Reply, true},
		{"ok, bye now", Defaults[2].Reply, true},
		{"hi and bye", Defaults[0].Reply, true},
		{"What is the refund policy?", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		reply, ok := m.Match(tc.query)
		if ok != tc.ok || reply != tc.reply {
			t.Errorf("Match(%q) = %q, %v; want %q, %v", tc.query, reply, ok, tc.reply, tc.ok)
		}
	}
}

func TestMatchFirstInOrderWins(t *testing.T) {
	m := NewMatcher([]Rule{
		{Trigger: "BYE", Reply: "first"},
		{Trigger: "hi", Reply: "second"},
	})
	for i := 0; i < 5; i++ {
		if reply, _ := m.Match("hi, bye"); reply != "first" {
			t.Fatalf("iteration %d: got %q", i, reply)
		}
	}
}

func TestNewMatcherDropsEmptyTriggers(t *testing.T) {
	m := NewMatcher([]Rule{{Trigger: "  ", Reply: "never"}, {Trigger: "Thanks", Reply: "You're welcome!"}})
	if got := len(m.Rules()); got != 1 {
		t.Fatalf("expected 1 rule, got %d", got)
	}
	if _, ok := m.Match("anything"); ok {
		t.Fatal("empty trigger must not match everything")
	}
	if reply, ok := m.Match("thanks a lot"); !ok || reply != "You're welcome!" {
		t.Fatalf("unexpected match %q %v", reply, ok)
	}
}
