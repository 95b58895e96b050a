package models

import "time"

// Market impact values for an affected asset.
const (
	ImpactBullish = "bullish"
	ImpactBearish = "bearish"
	ImpactNeutral = "neutral"
)

// AffectedAsset ties a news event to a ticker with an expected impact.
type AffectedAsset struct {
	Ticker string `json:"ticker" validate:"required,uppercase"`
	Impact string `json:"impact" validate:"required,oneof=bullish bearish neutral"`
}

// News is an editor-authored market news event.
type News struct {
	ID             string          `json:"id" badgerhold:"key"`
	Title          string          `json:"title" validate:"required,max=200"`
	Event          string          `json:"event" validate:"required,max=1000"`
	AffectedAssets []AffectedAsset `json:"affectedAssets" validate:"max=10,dive"`
	Expectations   string          `json:"expectations" validate:"required,max=2000"`
	IsPublished    bool            `json:"isPublished"`
	PublishedAt    *time.Time      `json:"publishedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	CreatedBy      string          `json:"createdBy" validate:"required"`
}

// ResearchNote is a personal per-ticker trade analysis authored by an admin.
type ResearchNote struct {
	ID          string    `json:"id" badgerhold:"key"`
	Ticker      string    `json:"ticker" validate:"required,uppercase"`
	AssetName   string    `json:"assetName" validate:"required"`
	Tendency    string    `json:"tendency" validate:"required,oneof=bullish bearish neutral"`
	TimeFrame   string    `json:"timeFrame" validate:"required,oneof=short-term mid-term long-term"`
	Description string    `json:"description,omitempty" validate:"max=500"`
	Explanation string    `json:"explanation,omitempty" validate:"max=2000"`
	TargetPrice *float64  `json:"targetPrice,omitempty" validate:"omitempty,gte=0"`
	StopLoss    *float64  `json:"stopLoss,omitempty" validate:"omitempty,gte=0"`
	Confidence  int       `json:"confidence" validate:"required,gte=1,lte=10"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedBy   string    `json:"createdBy" validate:"required"`
}
