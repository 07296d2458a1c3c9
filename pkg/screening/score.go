package screening

import (
	"math"

	"github.com/mouthwatch/platform/pkg/common/models"
)

// maxFactorTotal is the sum of every worst-case single answer.
const maxFactorTotal = 125.0

// Weights is keyed "<question>_<value>".
var Weights = map[string]float64{
	"tobacco_none":       0,
	"tobacco_occasional": 15,
	"tobacco_daily":      30,
	"alcohol_none":       0,
	"alcohol_occasional": 10,
	"alcohol_heavy":      25,
	"hpv_yes":            25,
	"hpv_no":             0,
	"hpv_unknown":        5,
	"prior_cancer_yes":   30,
	"prior_cancer_no":    0,
	"symptoms_pain":      10,
	"symptoms_bleeding":  15,
	"symptoms_numbness":  10,
	"symptoms_sore":      15,
	"symptoms_none":      0,
}

// FactorScore maps answers onto 0-100. Unknown keys weigh nothing.
func FactorScore(a Answers) float64 {
	total := 0.0
	for id, values := range a {
		for _, v := range values {
			total += Weights[id+"_"+v]
		}
	}
	return math.Min(total/maxFactorTotal*100, 100)
}

const (
	mlWeight     = 0.7
	factorWeight = 0.3
)

// Combine blends the image model's risk score with the intake score.
func Combine(mlRiskScore, factorScore float64) float64 {
	return mlRiskScore*mlWeight + factorScore*factorWeight
}

type Band struct {
	Color   models.RiskLevel `json:"color"`
	Label   string           `json:"label"`
	Message string           `json:"message"`
	Urgency string           `json:"urgency"`
}

const (
	yellowFrom = 35.0
	redFrom    = 65.0
)

func BandFor(score float64) Band {
	switch {
	case score < yellowFrom:
		return Band{
			Color:   models.RiskGreen,
			Label:   "Low Risk",
			Message: "No immediate concern detected. Continue monitoring and maintain regular dental visits.",
			Urgency: "Routine checkup recommended",
		}
	case score < redFrom:
		return Band{
			Color:   models.RiskYellow,
			Label:   "Moderate Risk",
			Message: "Some indicators detected. We recommend booking a dental appointment within the next 2-4 weeks.",
			Urgency: "Non-urgent dental visit recommended",
		}
	default:
		return Band{
			Color:   models.RiskRed,
			Label:   "High Risk",
			Message: "High risk indicators detected. Please seek dental attention as soon as possible.",
			Urgency: "Urgent dental visit recommended",
		}
	}
}

// Assessment is the intake-only estimate shown before an image is analysed.
type Assessment struct {
	FactorScore float64 `json:"factorScore"`
	Band
}

func Assess(a Answers) (Assessment, error) {
	if err := a.Validate(); err != nil {
		return Assessment{}, err
	}
	score := round1(FactorScore(a))
	return Assessment{FactorScore: score, Band: BandFor(score)}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
