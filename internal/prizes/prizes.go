// Package prizes computes which rewards a points balance can redeem. The
// catalog tracks what the rewards store currently offers; there is no API
// for it, so the amounts live here.
package prizes

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies one redeemable prize family.
type Kind string

const (
	Donation Kind = "DONATION"

	MicrosoftGiftcard Kind = "MICROSOFT_GIFTCARD"
	XboxStoreGiftcard Kind = "XBOX_STORE_GIFTCARD"

	XboxLiveGold     Kind = "XBOX_LIVE_GOLD"
	GamepassUltimate Kind = "GAMEPASS_ULTIMATE"
	GamepassPC       Kind = "GAMEPASS_PC"

	EsselungaGiftcard  Kind = "ESSELUNGA_GIFT_CARD"
	IkeaGiftcard       Kind = "IKEA_GIFT_CARD"
	OvsGiftcard        Kind = "OVS_GIFT_CARD"
	Q8Giftcard         Kind = "Q8_GIFT_CARD"
	ZalandoGiftcard    Kind = "ZALANDO_GIFT_CARD"
	DecathlonGiftcard  Kind = "DECATHLON_GIFT_CARD"
	FootLockerGiftcard Kind = "FOOT_LOCKER_GIFT_CARD"
	MangoGiftcard      Kind = "MANGO_GIFT_CARD"
	MondadoriGiftcard  Kind = "MONDADORI_GIFT_CARD"
	SpotifyGiftcard    Kind = "SPOTIFY_GIFT_CARD"
	VolagratisGiftcard Kind = "VOLAGRATIS_GIFT_CARD"

	ThirdPartyGiftcard Kind = "THIRD_PARTY_GIFTCARD"
)

// Unit is what a prize amount is measured in.
type Unit string

const (
	EUR   Unit = "EUR"
	Month Unit = "MONTH"
)

// Amount is one denomination of a prize: its store price in points and its
// face value.
type Amount struct {
	PricePoints int
	Value       int
	Unit        Unit
}

// Collected is a denomination with how many of it a balance affords.
type Collected struct {
	Amount
	Count int
}

// Redemption is the allocation result for one prize kind.
type Redemption struct {
	Kind    Kind
	Amounts []Collected
}

// Collectable reports whether at least one denomination was afforded.
func (r Redemption) Collectable() bool {
	for _, a := range r.Amounts {
		if a.Count > 0 {
			return true
		}
	}
	return false
}

// Total is the summed face value of everything afforded, in the kind's unit.
func (r Redemption) Total() int {
	total := 0
	for _, a := range r.Amounts {
		total += a.Count * a.Value
	}
	return total
}

func eur(price, value int) Amount { return Amount{PricePoints: price, Value: value, Unit: EUR} }
func mon(price, value int) Amount { return Amount{PricePoints: price, Value: value, Unit: Month} }

func eurs(price int, values ...int) []Amount {
	out := make([]Amount, len(values))
	for i, v := range values {
		out[i] = eur(price*v, v)
	}
	return out
}

// Third-party gift cards all share the same points-per-euro rate; donations
// and Microsoft's own cards are cheaper.
const (
	donationPricePerEUR   = 1000
	microsoftPricePerEUR  = 930
	thirdPartyPricePerEUR = 1500
)

var catalog = map[Kind][]Amount{
	Donation: eurs(donationPricePerEUR, 1, 3, 5),

	MicrosoftGiftcard: eurs(microsoftPricePerEUR, 2, 5, 10),
	XboxStoreGiftcard: eurs(microsoftPricePerEUR, 2, 5, 10),

	XboxLiveGold:     {mon(6800, 1), mon(15000, 3)},
	GamepassUltimate: {mon(12000, 1), mon(35000, 3)},
	GamepassPC:       {mon(7750, 1)},

	EsselungaGiftcard:  eurs(thirdPartyPricePerEUR, 10),
	IkeaGiftcard:       eurs(thirdPartyPricePerEUR, 50),
	OvsGiftcard:        eurs(thirdPartyPricePerEUR, 10),
	Q8Giftcard:         eurs(thirdPartyPricePerEUR, 10),
	ZalandoGiftcard:    eurs(thirdPartyPricePerEUR, 5, 10),
	DecathlonGiftcard:  eurs(thirdPartyPricePerEUR, 5, 10, 25),
	FootLockerGiftcard: eurs(thirdPartyPricePerEUR, 10, 25, 50),
	MangoGiftcard:      eurs(thirdPartyPricePerEUR, 25, 50, 100),
	MondadoriGiftcard:  eurs(thirdPartyPricePerEUR, 5, 10, 25),
	SpotifyGiftcard:    eurs(thirdPartyPricePerEUR, 10, 30, 60),
	VolagratisGiftcard: eurs(thirdPartyPricePerEUR, 25, 50, 100),

	ThirdPartyGiftcard: eurs(thirdPartyPricePerEUR, 1),
}

// allKinds is the catalog in a stable order for output.
var allKinds = []Kind{
	Donation,
	MicrosoftGiftcard, XboxStoreGiftcard,
	XboxLiveGold, GamepassUltimate, GamepassPC,
	EsselungaGiftcard, IkeaGiftcard, OvsGiftcard, Q8Giftcard,
	ZalandoGiftcard, DecathlonGiftcard, FootLockerGiftcard,
	MangoGiftcard, MondadoriGiftcard, SpotifyGiftcard, VolagratisGiftcard,
	ThirdPartyGiftcard,
}

// AllKinds returns every catalog kind in display order.
func AllKinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// ParseMask validates user-provided prize names, case-insensitively. An
// empty mask selects the whole catalog.
func ParseMask(names []string) ([]Kind, error) {
	if len(names) == 0 {
		return AllKinds(), nil
	}
	out := make([]Kind, 0, len(names))
	for _, name := range names {
		kind := Kind(strings.ToUpper(strings.TrimSpace(name)))
		if _, ok := catalog[kind]; !ok {
			return nil, fmt.Errorf("unknown prize kind %q", name)
		}
		out = append(out, kind)
	}
	return out, nil
}

// Allocate computes, independently for each masked kind, how many of its
// denominations the balance affords. Denominations are taken largest face
// value first; the remainder carries to the next smaller one. Kinds do not
// share the balance, each starts from the full points figure.
func Allocate(points int, mask []Kind) ([]Redemption, error) {
	if len(mask) == 0 {
		mask = AllKinds()
	}

	out := make([]Redemption, 0, len(mask))
	for _, kind := range mask {
		amounts, ok := catalog[kind]
		if !ok {
			return nil, fmt.Errorf("unknown prize kind %q", kind)
		}

		sorted := append([]Amount(nil), amounts...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

		remaining := points
		collected := make([]Collected, len(sorted))
		for i, a := range sorted {
			collected[i] = Collected{Amount: a, Count: remaining / a.PricePoints}
			remaining %= a.PricePoints
		}
		out = append(out, Redemption{Kind: kind, Amounts: collected})
	}
	return out, nil
}

// FormatRedeemable renders a one-line summary of what a balance can redeem,
// skipping kinds it cannot afford at all.
func FormatRedeemable(points int, mask []Kind) (string, error) {
	redemptions, err := Allocate(points, mask)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, r := range redemptions {
		if !r.Collectable() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s of %s", r.Total(), r.Amounts[0].Unit, r.Kind))
	}
	if len(parts) == 0 {
		return "You can redeem: NOTHING", nil
	}
	return "You can redeem: " + strings.Join(parts, ", "), nil
}
