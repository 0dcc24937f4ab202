package domain

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEventOptionsKeepOrder(t *testing.T) {
	ev := Event{
		ID: "e1",
		Options: []Option{
			{Key: "no", Label: "No", Odds: decimal.RequireFromString("2.2")},
			{Key: "yes", Label: "Yes", Odds: decimal.RequireFromString("1.8")},
		},
	}
	if got := ev.Keys(); !reflect.DeepEqual(got, []string{"no", "yes"}) {
		t.Errorf("keys = %v", got)
	}
	o, ok := ev.Option("yes")
	if !ok || o.Label != "Yes" {
		t.Errorf("Option(yes) = %+v, %v", o, ok)
	}
	if _, ok := ev.Option("maybe"); ok {
		t.Error("Option(maybe) should not exist")
	}
}

func TestBetIsSkip(t *testing.T) {
	tests := []struct {
		name string
		bet  Bet
		want bool
	}{
		{"sentinel", SkipBet("e1"), true},
		{"zero amount", Bet{OptionKey: "yes", Amount: decimal.Zero}, true},
		{"sentinel with amount", Bet{OptionKey: NoPick, Amount: decimal.NewFromInt(10)}, true},
		{"real bet", Bet{OptionKey: "yes", Amount: decimal.NewFromInt(10)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bet.IsSkip(); got != tt.want {
				t.Errorf("IsSkip = %v, want %v", got, tt.want)
			}
		})
	}
}
