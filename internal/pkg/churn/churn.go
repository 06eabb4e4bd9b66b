// Package churn scores the risk that a pausing customer will cancel
// outright. The heuristic favors explainability over accuracy; it is
// not a trained model.
package churn

import "strings"

// Risk labels.
const (
	LabelLow    = "low"
	LabelMedium = "medium"
	LabelHigh   = "high"
)

// Input describes one pause request to score.
type Input struct {
	Reason               string
	PauseLengthDays      int
	PlanPrice            float64
	TenureDays           int
	FailedPaymentsLast90 int
}

// Prediction is the computed churn risk.
type Prediction struct {
	RiskScore float64 `json:"riskScore"`
	Label     string  `json:"label"`
}

var costSignals = []string{"cost", "price", "expensive", "switch"}

// Predict computes a risk score in [0, 1] with a coarse label.
func Predict(in Input) Prediction {
	score := 0.0

	reason := strings.ToLower(in.Reason)
	for _, signal := range costSignals {
		if strings.Contains(reason, signal) {
			score += 0.3
			break
		}
	}

	if in.PauseLengthDays > 30 {
		score += 0.2
	}
	if in.FailedPaymentsLast90 >= 1 {
		score += 0.2
	}
	if in.TenureDays < 60 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	// Two decimal places keep the API response stable across runs.
	score = float64(int(score*100+0.5)) / 100

	label := LabelLow
	switch {
	case score > 0.7:
		label = LabelHigh
	case score > 0.4:
		label = LabelMedium
	}

	return Prediction{RiskScore: score, Label: label}
}
