package betting

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/radieske/party-bet/internal/game/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testEvent(deadline int) domain.Event {
	return domain.Event{
		ID:       "pk-1",
		Question: "Will the penalty kick succeed?",
		Options: []domain.Option{
			{Key: "yes", Label: "Yes", Odds: dec("1.8")},
			{Key: "no", Label: "No", Odds: dec("2.2")},
		},
		DeadlineSeconds: deadline,
	}
}

func testPlayer() domain.Player {
	return domain.Player{ID: 0, Name: "Player 1", Balance: dec("1000")}
}

func TestConfirmValid(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		amount string
	}{
		{"small", "yes", "1"},
		{"fractional", "no", "12.5"},
		{"whole balance", "yes", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testEvent(20), testPlayer())
			if err := c.Confirm(tt.key, dec(tt.amount)); err != nil {
				t.Fatalf("Confirm: %v", err)
			}
			if c.State() != StateConfirmed {
				t.Errorf("state = %s, want CONFIRMED", c.State())
			}
			bet, ok := c.Confirmed()
			if !ok || bet.OptionKey != tt.key || !bet.Amount.Equal(dec(tt.amount)) || bet.EventID != "pk-1" {
				t.Errorf("confirmed = %+v, %v", bet, ok)
			}
			if c.LastError() != nil {
				t.Errorf("last error = %v", c.LastError())
			}
		})
	}
}

func TestConfirmValidation(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		amount decimal.Decimal
		want   error
	}{
		{"no option", "", dec("100"), ErrNoOption},
		{"sentinel option", domain.NoPick, dec("100"), ErrNoOption},
		{"unknown option", "maybe", dec("100"), ErrNoOption},
		{"zero amount", "yes", decimal.Zero, ErrInvalidAmount},
		{"negative amount", "yes", dec("-5"), ErrInvalidAmount},
		{"exceeds balance", "yes", dec("1000.01"), ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testEvent(20), testPlayer())
			err := c.Confirm(tt.key, tt.amount)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !IsValidation(err) {
				t.Errorf("%v should be a validation error", err)
			}
			if c.State() != StateCollecting {
				t.Errorf("state = %s, want COLLECTING", c.State())
			}
			if _, ok := c.Confirmed(); ok {
				t.Error("nothing should be confirmed")
			}
			if _, ok := c.Result(); ok {
				t.Error("nothing should be finalized")
			}
			if c.LastError() != tt.want {
				t.Errorf("last error = %v", c.LastError())
			}
		})
	}
}

func TestValidationErrorClearsOnSuccess(t *testing.T) {
	c := New(testEvent(20), testPlayer())
	_ = c.Confirm("yes", dec("5000"))
	if c.LastError() == nil {
		t.Fatal("expected error to be kept")
	}
	if err := c.Confirm("yes", dec("50")); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if c.LastError() != nil {
		t.Errorf("last error = %v, want nil", c.LastError())
	}
}

func TestModifyKeepsCountdownAndPending(t *testing.T) {
	c := New(testEvent(20), testPlayer())
	c.Tick()
	c.Tick()
	if err := c.Confirm("no", dec("200")); err != nil {
		t.Fatal(err)
	}
	if err := c.Modify(); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if c.State() != StateCollecting {
		t.Errorf("state = %s", c.State())
	}
	if c.Remaining() != 18 {
		t.Errorf("remaining = %d, want 18", c.Remaining())
	}
	key, amount := c.Pending()
	if key != "no" || !amount.Equal(dec("200")) {
		t.Errorf("pending = %s %s", key, amount)
	}
	if err := c.Confirm("yes", dec("300")); err != nil {
		t.Fatalf("re-confirm: %v", err)
	}
	bet, _ := c.Confirmed()
	if bet.OptionKey != "yes" || !bet.Amount.Equal(dec("300")) {
		t.Errorf("confirmed = %+v", bet)
	}
}

func TestInvalidTransitions(t *testing.T) {
	c := New(testEvent(20), testPlayer())
	if err := c.Modify(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Modify from COLLECTING: %v", err)
	}
	_ = c.Confirm("yes", dec("10"))
	if err := c.Confirm("no", dec("10")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Confirm from CONFIRMED: %v", err)
	}
	if err := c.Select("no"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Select from CONFIRMED: %v", err)
	}
	if _, err := c.Skip(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Skip(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Skip from SUBMITTED: %v", err)
	}
	if c.Tick() {
		t.Error("Tick after SUBMITTED should be a no-op")
	}
}

func TestSkipFromEitherState(t *testing.T) {
	for _, confirmFirst := range []bool{false, true} {
		c := New(testEvent(20), testPlayer())
		if confirmFirst {
			_ = c.Confirm("yes", dec("100"))
		}
		pb, err := c.Skip()
		if err != nil {
			t.Fatal(err)
		}
		if c.State() != StateSubmitted {
			t.Errorf("state = %s", c.State())
		}
		if !pb.IsSkip() || pb.OptionKey != domain.NoPick || !pb.Amount.IsZero() {
			t.Errorf("result = %+v, want skip", pb)
		}
	}
}

func TestTimeoutFinalizesConfirmedBet(t *testing.T) {
	c := New(testEvent(3), testPlayer())
	_ = c.Confirm("yes", dec("200"))

	if c.Tick() || c.Tick() {
		t.Fatal("finalized too early")
	}
	if !c.Tick() {
		t.Fatal("expected finalization on third tick")
	}
	pb, ok := c.Result()
	if !ok || pb.OptionKey != "yes" || !pb.Amount.Equal(dec("200")) || pb.PlayerID != 0 {
		t.Errorf("result = %+v, %v", pb, ok)
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining = %d", c.Remaining())
	}
}

func TestTimeoutWithoutConfirmationIsSkip(t *testing.T) {
	c := New(testEvent(2), testPlayer())
	_ = c.Select("yes")
	_ = c.SetAmount(dec("100"))
	c.Tick()
	if !c.Tick() {
		t.Fatal("expected finalization")
	}
	pb, _ := c.Result()
	if !pb.IsSkip() {
		t.Errorf("result = %+v, want skip", pb)
	}
}

func TestTimeoutAfterModifyIsSkip(t *testing.T) {
	c := New(testEvent(1), testPlayer())
	_ = c.Confirm("yes", dec("100"))
	_ = c.Modify()
	if !c.Tick() {
		t.Fatal("expected finalization")
	}
	pb, _ := c.Result()
	if !pb.IsSkip() {
		t.Errorf("result = %+v, want skip", pb)
	}
}

func TestSetAmountTextRecordsParseError(t *testing.T) {
	c := New(testEvent(20), testPlayer())
	if err := c.SetAmountText("150"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetAmountText("abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v", err)
	}
	if c.LastError() != ErrInvalidAmount {
		t.Errorf("last error = %v", c.LastError())
	}
	if _, amount := c.Pending(); !amount.Equal(dec("150")) {
		t.Errorf("pending amount = %s, want previous value kept", amount)
	}

	if err := c.SetAmountText("90"); err != nil {
		t.Fatal(err)
	}
	if c.LastError() != nil {
		t.Errorf("last error = %v, want nil", c.LastError())
	}

	_, _ = c.Skip()
	if err := c.SetAmountText("10"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("after skip: %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"200", "200", false},
		{" 12.75 ", "12.75", false},
		{"", "", true},
		{"abc", "", true},
		{"1.2.3", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("ParseAmount(%q) err = %v", tt.in, err)
			}
			continue
		}
		if err != nil || !got.Equal(dec(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, %v", tt.in, got, err)
		}
	}
}
