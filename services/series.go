package services

import "facility-maintenance/microservices/statistics-service/models"

// countByMonth groups tasks by calendar month and status.
func countByMonth(tasks []models.Task) map[string]map[models.TaskStatus]int {
	counts := make(map[string]map[models.TaskStatus]int)
	for _, task := range tasks {
		task = task.WithDefaults()
		key := models.MonthKey(task.Date)
		byStatus, ok := counts[key]
		if !ok {
			byStatus = make(map[models.TaskStatus]int, len(models.Statuses))
			counts[key] = byStatus
		}
		byStatus[task.Status]++
	}
	return counts
}

// reshapeSeries turns (month, status) counts into one MonthlySeries per window
// month and one series per status, both aligned with the window's month labels.
// Months or statuses without tasks are zero.
func reshapeSeries(w Window, counts map[string]map[models.TaskStatus]int) ([]models.MonthlySeries, map[models.TaskStatus][]int) {
	keys := w.MonthKeys()

	chart := make([]models.MonthlySeries, len(keys))
	series := make(map[models.TaskStatus][]int, len(models.Statuses))
	for _, status := range models.Statuses {
		series[status] = make([]int, len(keys))
	}

	for i, key := range keys {
		month := models.MonthlySeries{
			Month:  w.MonthLabels[i],
			Counts: make(map[models.TaskStatus]int, len(models.Statuses)),
		}
		for _, status := range models.Statuses {
			n := counts[key][status]
			month.Counts[status] = n
			series[status][i] = n
		}
		chart[i] = month
	}
	return chart, series
}

// calculatePerformance is the share of completed tasks over everything in the
// series, "0.0%" when the series is empty.
func calculatePerformance(series map[models.TaskStatus][]int) string {
	total, completed := 0, 0
	for status, values := range series {
		for _, v := range values {
			total += v
			if status == models.StatusCompleted {
				completed += v
			}
		}
	}
	if total == 0 {
		return formatPercent(0)
	}
	return formatPercent(float64(completed) / float64(total) * 100)
}
