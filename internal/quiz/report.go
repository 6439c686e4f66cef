package quiz

import "math"

// PassingScore is the minimum score counted as passed.
const PassingScore = 70

// CategoryStats summarizes a learner's attempts at one topic.
type CategoryStats struct {
	TotalAttempts int           `json:"total_attempts"`
	AverageScore  int           `json:"average_score"`
	BestScore     int           `json:"best_score"`
	LastAttempt   HistoryRecord `json:"last_attempt"`
}

// TopicStats computes stats over records (newest first) for course/topic.
// ok is false when there are no attempts.
func TopicStats(records []HistoryRecord, course, topic string) (stats CategoryStats, ok bool) {
	sum := 0
	for _, r := range records {
		if r.Course != course || r.Topic != topic {
			continue
		}
		if stats.TotalAttempts == 0 {
			stats.LastAttempt = r
			stats.BestScore = r.Score
		}
		stats.TotalAttempts++
		sum += r.Score
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
	}
	if stats.TotalAttempts == 0 {
		return CategoryStats{}, false
	}
	stats.AverageScore = int(math.Round(float64(sum) / float64(stats.TotalAttempts)))
	return stats, true
}

// Report is the aggregate shown on the report card.
type Report struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	AvgScore int `json:"avg_score"`
}

func Summarize(records []HistoryRecord) Report {
	rep := Report{Total: len(records)}
	if rep.Total == 0 {
		return rep
	}
	sum := 0
	for _, r := range records {
		sum += r.Score
		if r.Score >= PassingScore {
			rep.Passed++
		}
	}
	rep.AvgScore = int(math.Round(float64(sum) / float64(rep.Total)))
	return rep
}
