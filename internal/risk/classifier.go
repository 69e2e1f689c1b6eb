// Package risk maps credit scores onto the ordered credit risk bands.
package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/sirupsen/logrus"
)

// ErrInvalidBands is returned for an empty or unordered band list
var ErrInvalidBands = errors.New("invalid credit risk bands")

// Band assigns Category to scores below UpperBound
type Band struct {
	UpperBound float64
	Category   models.RiskCategory
}

// DefaultBands is the standard five-band ladder
var DefaultBands = []Band{
	{UpperBound: 500, Category: models.RiskVeryHigh},
	{UpperBound: 600, Category: models.RiskHigh},
	{UpperBound: 700, Category: models.RiskMedium},
	{UpperBound: 800, Category: models.RiskLow},
	{UpperBound: math.Inf(1), Category: models.RiskVeryLow},
}

// Score domain bureau scores are expected to lie in
const (
	DefaultScoreMin = 300
	DefaultScoreMax = 850
)

var rank = map[models.RiskCategory]int{
	models.RiskVeryLow:  0,
	models.RiskLow:      1,
	models.RiskMedium:   2,
	models.RiskHigh:     3,
	models.RiskVeryHigh: 4,
}

// Rank orders categories from least (0) to most risky. Unknown categories
// rank -1.
func Rank(c models.RiskCategory) int {
	if r, ok := rank[c]; ok {
		return r
	}
	return -1
}

// IsHighRisk reports whether c counts towards the high-risk customer total
func IsHighRisk(c models.RiskCategory) bool {
	return c == models.RiskVeryHigh || c == models.RiskHigh
}

// ClassifyCreditRisk classifies score with DefaultBands
func ClassifyCreditRisk(score float64) models.RiskCategory {
	return classify(DefaultBands, score)
}

func classify(bands []Band, score float64) models.RiskCategory {
	for _, b := range bands {
		if score < b.UpperBound {
			return b.Category
		}
	}
	// the last band is open-ended
	return bands[len(bands)-1].Category
}

// Classifier classifies scores with a configurable band ladder and flags
// scores outside the expected domain.
type Classifier struct {
	bands    []Band
	scoreMin float64
	scoreMax float64
	log      logrus.FieldLogger
}

// NewClassifier validates bands and builds a classifier. Bands must be
// non-empty with strictly increasing upper bounds, and risk must not rise as
// scores rise.
func NewClassifier(bands []Band, scoreMin, scoreMax float64, log logrus.FieldLogger) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	for i := 1; i < len(bands); i++ {
		if !(bands[i].UpperBound > bands[i-1].UpperBound) {
			return nil, fmt.Errorf("%w: upper bound %v does not exceed %v", ErrInvalidBands, bands[i].UpperBound, bands[i-1].UpperBound)
		}
	}
	for i, b := range bands {
		if Rank(b.Category) < 0 {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidBands, b.Category)
		}
		if i > 0 && Rank(b.Category) > Rank(bands[i-1].Category) {
			return nil, fmt.Errorf("%w: %q above %v is riskier than %q below it", ErrInvalidBands, b.Category, bands[i-1].UpperBound, bands[i-1].Category)
		}
	}
	if scoreMin > scoreMax {
		return nil, fmt.Errorf("%w: score domain [%v, %v] is empty", ErrInvalidBands, scoreMin, scoreMax)
	}

	return &Classifier{
		bands:    append([]Band(nil), bands...),
		scoreMin: scoreMin,
		scoreMax: scoreMax,
		log:      log.WithField("component", "risk"),
	}, nil
}

// NewClassifierFromConfig builds a classifier from the analytics config
func NewClassifierFromConfig(cfg config.AnalyticsConfig, log logrus.FieldLogger) (*Classifier, error) {
	bands := make([]Band, len(cfg.CreditRiskBands))
	for i, b := range cfg.CreditRiskBands {
		bands[i] = Band{UpperBound: b.UpperBound, Category: models.RiskCategory(b.Category)}
	}
	return NewClassifier(bands, cfg.ScoreMin, cfg.ScoreMax, log)
}

// Classify maps score to its band. The score is not clamped.
func (c *Classifier) Classify(score float64) models.RiskCategory {
	return classify(c.bands, score)
}

// InRange reports whether score lies within the expected score domain
func (c *Classifier) InRange(score float64) bool {
	return score >= c.scoreMin && score <= c.scoreMax
}

// Assess builds the risk profile of one customer. Out-of-range scores keep
// the band their value falls in, are flagged on the profile and logged.
func (c *Classifier) Assess(customerID int64, score float64) models.RiskProfile {
	profile := models.RiskProfile{
		CustomerID:   customerID,
		CreditScore:  score,
		RiskCategory: c.Classify(score),
	}

	if !c.InRange(score) {
		profile.OutOfRange = true
		c.log.WithFields(logrus.Fields{
			"customer_id": customerID,
			"score":       score,
			"min":         c.scoreMin,
			"max":         c.scoreMax,
		}).Warn("Credit score outside expected domain")
	}

	return profile
}

// Profiles assesses every credit score, preserving input order
func (c *Classifier) Profiles(scores []models.CreditScore) []models.RiskProfile {
	profiles := make([]models.RiskProfile, 0, len(scores))
	for _, s := range scores {
		profiles = append(profiles, c.Assess(s.CustomerID, s.Score))
	}
	return profiles
}

// Categories lists the band categories from lowest to highest score
func (c *Classifier) Categories() []models.RiskCategory {
	out := make([]models.RiskCategory, len(c.bands))
	for i, b := range c.bands {
		out[i] = b.Category
	}
	return out
}
