package screening

import "github.com/mouthwatch/platform/pkg/common/models"

type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

type Trend struct {
	Direction Direction `json:"direction"`
	Message   string    `json:"message"`
}

var trendMessages = map[Direction]string{
	Increasing: "Your risk has been increasing, consider booking a dentist visit.",
	Decreasing: "Your risk has been decreasing, keep up the good work!",
	Stable:     "Your risk has been stable. Keep monitoring regularly.",
}

// TrendOf compares the two newest scans of a newest-first history.
func TrendOf(history []models.Scan) Trend {
	dir := Stable
	if len(history) >= 2 {
		switch newest, previous := history[0].Score, history[1].Score; {
		case newest > previous:
			dir = Increasing
		case newest < previous:
			dir = Decreasing
		}
	}
	return Trend{Direction: dir, Message: trendMessages[dir]}
}
