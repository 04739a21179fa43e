package prizes

import (
	"strings"
	"testing"
)

func redemption(t *testing.T, points int, kind Kind) Redemption {
	t.Helper()
	out, err := Allocate(points, []Kind{kind})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d redemptions, want 1", len(out))
	}
	return out[0]
}

func TestAllocateDonation(t *testing.T) {
	r := redemption(t, 1000, Donation)
	if !r.Collectable() {
		t.Fatal("1000 points cannot afford a 1000-point donation")
	}
	if r.Total() != 1 {
		t.Errorf("total = %d EUR, want 1", r.Total())
	}

	r = redemption(t, 999, Donation)
	if r.Collectable() {
		t.Error("999 points afforded a 1000-point donation")
	}
}

func TestAllocateDiscardsRemainder(t *testing.T) {
	r := redemption(t, 10000, GamepassPC)
	if r.Total() != 1 {
		t.Fatalf("total = %d months, want 1", r.Total())
	}
	// 10000 - 7750 leaves 2250, below any Gamepass PC denomination.
	if got := r.Amounts[0].Count; got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestAllocateLargestDenominationFirst(t *testing.T) {
	// 16000 points on Xbox Live Gold: one 3-month at 15000, the leftover
	// 1000 cannot pay the 6800-point single month.
	r := redemption(t, 16000, XboxLiveGold)
	if r.Total() != 3 {
		t.Fatalf("total = %d months, want 3", r.Total())
	}
	if r.Amounts[0].Value != 3 || r.Amounts[0].Count != 1 {
		t.Errorf("largest denomination: value %d count %d, want 3 and 1", r.Amounts[0].Value, r.Amounts[0].Count)
	}
	if r.Amounts[1].Count != 0 {
		t.Errorf("single month count = %d, want 0", r.Amounts[1].Count)
	}

	// 21800 affords the 3-month and then a single month with the remainder.
	r = redemption(t, 21800, XboxLiveGold)
	if r.Total() != 4 {
		t.Errorf("total = %d months, want 4", r.Total())
	}
}

func TestAllocateKindsAreIndependent(t *testing.T) {
	out, err := Allocate(2000, []Kind{Donation, ThirdPartyGiftcard})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got := out[0].Total(); got != 2 {
		t.Errorf("donation total = %d EUR, want 2", got)
	}
	if got := out[1].Total(); got != 1 {
		t.Errorf("third-party total = %d EUR, want 1 (not reduced by the donation)", got)
	}
}

func TestAllocateEmptyMaskUsesCatalog(t *testing.T) {
	out, err := Allocate(5000, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(out) != len(AllKinds()) {
		t.Errorf("got %d redemptions, want %d", len(out), len(AllKinds()))
	}
}

func TestParseMask(t *testing.T) {
	kinds, err := ParseMask([]string{"donation", " gamepass_pc "})
	if err != nil {
		t.Fatalf("ParseMask: %v", err)
	}
	if kinds[0] != Donation || kinds[1] != GamepassPC {
		t.Errorf("kinds = %v", kinds)
	}

	if _, err := ParseMask([]string{"free_money"}); err == nil {
		t.Error("unknown kind accepted")
	}

	kinds, err = ParseMask(nil)
	if err != nil {
		t.Fatalf("ParseMask(nil): %v", err)
	}
	if len(kinds) != len(AllKinds()) {
		t.Errorf("empty mask: got %d kinds, want the whole catalog", len(kinds))
	}
}

func TestFormatRedeemable(t *testing.T) {
	s, err := FormatRedeemable(1000, []Kind{Donation, GamepassPC})
	if err != nil {
		t.Fatalf("FormatRedeemable: %v", err)
	}
	if want := "You can redeem: 1 EUR of DONATION"; s != want {
		t.Errorf("got %q, want %q", s, want)
	}

	s, err = FormatRedeemable(100, nil)
	if err != nil {
		t.Fatalf("FormatRedeemable: %v", err)
	}
	if !strings.Contains(s, "NOTHING") {
		t.Errorf("got %q, want a NOTHING summary", s)
	}
}
