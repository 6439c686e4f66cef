package grading

import (
	"math"

	"github.com/taba-id/taba/internal/quiz"
)

// Grade is the presentation of a score on the result and report screens.
type Grade struct {
	Letter  string    `json:"letter"`
	Message string    `json:"message"`
	Colors  [2]string `json:"colors"`
	Passed  bool      `json:"passed"`
	Stars   int       `json:"stars"`
	Status  string    `json:"status"`
}

type band struct {
	min     int
	letter  string
	message string
	colors  [2]string
}

// bands is ordered by descending threshold; the last entry catches the rest.
var bands = []band{
	{90, "A", "Excellent!", [2]string{"#4ADE80", "#10B981"}},
	{80, "B", "Great Job!", [2]string{"#60A5FA", "#06B6D4"}},
	{70, "C", "Good Work!", [2]string{"#FACC15", "#FB923C"}},
	{60, "D", "Keep Practicing", [2]string{"#FB923C", "#F87171"}},
	{math.MinInt, "E", "Try Again", [2]string{"#F87171", "#EC4899"}},
}

const (
	StatusPassed = "LULUS"
	StatusFailed = "GAGAL"
)

// Classify maps a 0..100 score to its grade. Scores outside the range are
// clamped first.
func Classify(score int) Grade {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	g := Grade{Passed: score >= quiz.PassingScore, Stars: Stars(score), Status: StatusFailed}
	if g.Passed {
		g.Status = StatusPassed
	}
	for _, b := range bands {
		if score >= b.min {
			g.Letter, g.Message, g.Colors = b.letter, b.message, b.colors
			break
		}
	}
	return g
}

// Stars is ceil(score/33.33), between 0 and 3.
func Stars(score int) int {
	n := int(math.Ceil(float64(score) / 33.33))
	if n < 0 {
		return 0
	}
	if n > 3 {
		return 3
	}
	return n
}
