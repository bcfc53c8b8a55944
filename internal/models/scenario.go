package models

import (
	"fmt"
	"time"
)

// Category classifies a scenario into one of the fixed navigation domains.
type Category string

const (
	CategoryRouteGuidance  Category = "경로안내"
	CategoryTrafficInfo    Category = "교통정보"
	CategoryNearbyPlaces   Category = "주변시설"
	CategoryParking        Category = "주차안내"
	CategoryWeatherRoad    Category = "날씨/도로"
	CategoryVehicleControl Category = "차량제어"
	CategorySchedule       Category = "일정관리"
	CategoryEmergency      Category = "긴급상황"
)

// Categories is the closed set of valid scenario categories, in display order.
var Categories = []Category{
	CategoryRouteGuidance,
	CategoryTrafficInfo,
	CategoryNearbyPlaces,
	CategoryParking,
	CategoryWeatherRoad,
	CategoryVehicleControl,
	CategorySchedule,
	CategoryEmergency,
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// OrDefault returns c when it is a known category and the first category
// otherwise. Used on display paths so an out-of-set value degrades instead of
// crashing; storage never applies this coercion.
func (c Category) OrDefault() Category {
	if c.Valid() {
		return c
	}
	return Categories[0]
}

// ScenarioQuery is the structured breakdown of a user utterance.
type ScenarioQuery struct {
	Raw         string `json:"raw"`
	Context     string `json:"context"`
	Intent      string `json:"intent"`
	Expectation string `json:"expectation"`
	Action      string `json:"action"`
}

// ScenarioResponse is the structured breakdown of the assistant's answer.
type ScenarioResponse struct {
	Trigger    string `json:"trigger"`
	Phenomenon string `json:"phenomenon"`
	Impact     string `json:"impact"`
	Offer      string `json:"offer"`
}

// Scenario is one "user utterance → AI response" training example for the
// navigation assistant. ID is immutable after creation and serves as the
// store key. CreatedAt is a display-normalized KST timestamp string
// ("YYYY-MM-DD HH:mm" or date-only for legacy records).
type Scenario struct {
	ID        string           `json:"id"`
	Category  Category         `json:"category"`
	Query     ScenarioQuery    `json:"query"`
	Response  ScenarioResponse `json:"response"`
	Tags      []string         `json:"tags"`
	CreatedAt string           `json:"createdAt"`
}

// ScenarioDraft is an analyzer result that has not been assigned an identity
// yet. The core assigns ID and CreatedAt after the boundary returns.
type ScenarioDraft struct {
	Category Category         `json:"category"`
	Query    ScenarioQuery    `json:"query"`
	Response ScenarioResponse `json:"response"`
	Tags     []string         `json:"tags"`
}

// AnalyzerConfig selects the external LLM provider for one analysis request.
// It is passed through to the provider boundary without validation.
type AnalyzerConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey,omitempty"`
}

// Timestamps are presented in fixed-offset Korea time regardless of the
// server's local zone.
var kst = time.FixedZone("KST", 9*60*60)

const (
	displayTimeLayout = "2006-01-02 15:04"
	displayDateLayout = "2006-01-02"
)

// FormatDisplayTime renders t in the canonical KST "YYYY-MM-DD HH:mm" form.
func FormatDisplayTime(t time.Time) string {
	return t.In(kst).Format(displayTimeLayout)
}

// ParseDisplayTime parses a CreatedAt string in either supported granularity.
// Callers decide how to handle failure; the stats aggregator treats a parse
// error as "not recent".
func ParseDisplayTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(displayTimeLayout, s, kst); err == nil {
		return t, nil
	}
	return time.ParseInLocation(displayDateLayout, s, kst)
}

// NewScenarioID generates an id for a manually created scenario.
func NewScenarioID(t time.Time) string {
	return fmt.Sprintf("NAV_%d", t.UnixMilli())
}

// NewBatchScenarioID generates an id for the index-th draft of an analysis
// batch stamped at t. Ids within one batch differ only by index.
func NewBatchScenarioID(t time.Time, index int) string {
	return fmt.Sprintf("NAV_%d_%d", t.UnixMilli(), index)
}
