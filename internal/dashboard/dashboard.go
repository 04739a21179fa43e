// Package dashboard models the rewards dashboard snapshot and the pure
// decisions made over it: which promotions remain completable and how many
// searches are still worth points.
package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// PointsPerSearch is the fixed point value one search awards.
const PointsPerSearch = 3

type Level string

const (
	Level1 Level = "Level1"
	Level2 Level = "Level2"
)

type PromotionType string

const (
	PromotionURLReward PromotionType = "urlreward"
	PromotionQuiz      PromotionType = "quiz"
	PromotionSearch    PromotionType = "search"
	PromotionWelcome   PromotionType = "welcometour"
	PromotionStreak    PromotionType = "streak"
	PromotionEmpty     PromotionType = ""
)

type Promotion struct {
	Name           string        `json:"name"`
	OfferID        string        `json:"offerId"`
	Complete       bool          `json:"complete"`
	PointProgress  int           `json:"pointProgress"`
	PointMax       int           `json:"pointProgressMax"`
	Type           PromotionType `json:"promotionType"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	DestinationURL string        `json:"destinationUrl"`
	IsHidden       bool          `json:"isHidden"`
	IsTestOnly     bool          `json:"isTestOnly"`
}

// Enabled reports whether the promotion is shown to real users at all.
func (p Promotion) Enabled() bool {
	return !p.IsHidden && !p.IsTestOnly
}

// Completable reports whether the promotion is still worth attempting:
// enabled, not complete, and of a kind the engine knows how to finish.
func (p Promotion) Completable() bool {
	if !p.Enabled() || p.Complete {
		return false
	}
	return p.Type == PromotionURLReward || p.Type == PromotionQuiz
}

type SearchCounter struct {
	Name          string `json:"name"`
	Complete      bool   `json:"complete"`
	PointProgress int    `json:"pointProgress"`
	PointMax      int    `json:"pointProgressMax"`
}

type Counters struct {
	PCSearch     []SearchCounter `json:"pcSearch"`
	MobileSearch []SearchCounter `json:"mobileSearch"`
}

type UserStatus struct {
	LevelInfo struct {
		ActiveLevel Level `json:"activeLevel"`
	} `json:"levelInfo"`
	AvailablePoints int      `json:"availablePoints"`
	Counters        Counters `json:"counters"`
}

type Dashboard struct {
	UserStatus UserStatus `json:"userStatus"`

	// DailySetPromotions is keyed by "MM/DD/YYYY" date strings; only the
	// current day's entry is ever actionable.
	DailySetPromotions map[string][]Promotion `json:"dailySetPromotions"`
	MorePromotions     []Promotion            `json:"morePromotions"`
}

func (d *Dashboard) Level() Level { return d.UserStatus.LevelInfo.ActiveLevel }
func (d *Dashboard) Points() int  { return d.UserStatus.AvailablePoints }

// DailySet returns the daily-set promotions for the given day.
func (d *Dashboard) DailySet(day time.Time) []Promotion {
	return d.DailySetPromotions[day.Format("01/02/2006")]
}

// Completable returns every promotion still worth attempting on the given
// day, daily set first.
func (d *Dashboard) Completable(day time.Time) []Promotion {
	var out []Promotion
	for _, p := range d.DailySet(day) {
		if p.Completable() {
			out = append(out, p)
		}
	}
	for _, p := range d.MorePromotions {
		if p.Completable() {
			out = append(out, p)
		}
	}
	return out
}

// searchQuota converts a points counter into a number of searches left.
func searchQuota(c SearchCounter) int {
	missing := c.PointMax - c.PointProgress
	if missing <= 0 {
		return 0
	}
	return int(math.Ceil(float64(missing) / float64(PointsPerSearch)))
}

// PCSearchQuota returns how many desktop searches still earn points.
func (d *Dashboard) PCSearchQuota() int {
	if len(d.UserStatus.Counters.PCSearch) == 0 {
		return 0
	}
	return searchQuota(d.UserStatus.Counters.PCSearch[0])
}

// MobileSearchQuota returns how many mobile searches still earn points.
// Accounts below level 2 earn no mobile search points at all.
func (d *Dashboard) MobileSearchQuota() int {
	if d.Level() != Level2 {
		return 0
	}
	if len(d.UserStatus.Counters.MobileSearch) == 0 {
		return 0
	}
	return searchQuota(d.UserStatus.Counters.MobileSearch[0])
}

var (
	pointsRe    = regexp.MustCompile(`"availablePoints":\s*(\d+)`)
	dashboardRe = regexp.MustCompile(`(?s)var dashboard\s*=\s*(\{.*?\});`)
)

// ExtractPoints pulls the available points out of a raw dashboard page.
func ExtractPoints(pageSource string) (int, error) {
	m := pointsRe.FindStringSubmatch(pageSource)
	if m == nil {
		return 0, fmt.Errorf("no availablePoints marker in page source")
	}
	points, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse availablePoints: %w", err)
	}
	return points, nil
}

// Parse decodes a dashboard JSON document.
func Parse(data []byte) (*Dashboard, error) {
	var d Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dashboard: %w", err)
	}
	return &d, nil
}

// ExtractDashboard finds and decodes the dashboard object embedded in the
// rewards page source.
func ExtractDashboard(pageSource string) (*Dashboard, error) {
	m := dashboardRe.FindStringSubmatch(pageSource)
	if m == nil {
		return nil, fmt.Errorf("no dashboard object in page source")
	}
	return Parse([]byte(m[1]))
}
