// Package game computes the points and levels awarded for citizen
// contributions. Points are a pure function of the report type; the
// server keeps the authoritative tally, this mirrors it for display.
package game

import "github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/models"

// Point awards per report type. Fire reports score highest because
// early detection matters most.
var pointsByType = map[models.ReportType]int{
	models.ReportTypeFire:           50,
	models.ReportTypeIllegalLogging: 40,
	models.ReportTypePollution:      30,
	models.ReportTypeDumping:        25,
	models.ReportTypeOther:          10,
}

// eventPoints is the award for attending a community event.
const eventPoints = 20

// levelThresholds[i] is the minimum total for level i+1.
var levelThresholds = []int{0, 100, 300, 700, 1500, 3000}

// PointsFor returns the award for a report type. Unknown types score
// as "other".
func PointsFor(t models.ReportType) int {
	if p, ok := pointsByType[t]; ok {
		return p
	}
	return pointsByType[models.ReportTypeOther]
}

// EventPoints returns the award for an event attendance.
func EventPoints() int {
	return eventPoints
}

// LevelFor returns the level reached with the given total points,
// starting at level 1.
func LevelFor(points int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if points >= threshold {
			level = i + 1
		}
	}
	return level
}

// Progress describes how far a total is through its current level.
type Progress struct {
	Level       int `json:"level"`
	Points      int `json:"points"`
	NextLevelAt int `json:"next_level_at"`
	Remaining   int `json:"remaining"`
}

// ProgressFor summarizes a point total for display. At the top level
// NextLevelAt and Remaining are zero.
func ProgressFor(points int) Progress {
	level := LevelFor(points)

	p := Progress{Level: level, Points: points}
	if level < len(levelThresholds) {
		p.NextLevelAt = levelThresholds[level]
		p.Remaining = p.NextLevelAt - points
	}
	return p
}
