package services

import "facility-maintenance/microservices/statistics-service/models"

// statusTrend compares the current and prior count of one status. A higher
// count is an improvement for Completed and a regression for every other
// status, so direction and sign are inverted for those.
func statusTrend(status models.TaskStatus, current, prior int) (models.TrendDirection, float64) {
	if current == 0 && prior == 0 {
		return models.TrendNeutral, 0
	}

	higherIsBetter := status == models.StatusCompleted

	var direction models.TrendDirection
	switch {
	case higherIsBetter && current >= prior:
		direction = models.TrendUp
	case higherIsBetter:
		direction = models.TrendDown
	case current < prior:
		direction = models.TrendUp
	case current > prior:
		direction = models.TrendDown
	default:
		direction = models.TrendNeutral
	}

	if prior == 0 {
		if higherIsBetter {
			return direction, 100
		}
		return direction, -100
	}

	change := float64(current-prior) / float64(prior) * 100
	if !higherIsBetter && change != 0 {
		change = -change
	}
	return direction, change
}

// buildStatusStatistics produces one entry per status, in models.Statuses
// order, whether or not any task carries that status.
func buildStatusStatistics(w Window, current, prior []models.Task) []models.StatusStatistic {
	daily := make(map[models.TaskStatus]map[string]int, len(models.Statuses))
	currentCounts := make(map[models.TaskStatus]int, len(models.Statuses))
	for _, task := range current {
		task = task.WithDefaults()
		byDay, ok := daily[task.Status]
		if !ok {
			byDay = make(map[string]int)
			daily[task.Status] = byDay
		}
		byDay[models.DayKey(task.Date)]++
		currentCounts[task.Status]++
	}

	priorCounts := make(map[models.TaskStatus]int, len(models.Statuses))
	for _, task := range prior {
		priorCounts[task.WithDefaults().Status]++
	}

	interval := w.Interval()
	stats := make([]models.StatusStatistic, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		cur, prev := currentCounts[status], priorCounts[status]
		direction, change := statusTrend(status, cur, prev)

		data := make([]int, len(w.DayKeys()))
		for i, day := range w.DayKeys() {
			data[i] = daily[status][day]
		}

		stats = append(stats, models.StatusStatistic{
			Title:               status,
			Value:               formatCount(cur),
			Previous30DaysCount: formatCount(prev),
			CurrentWindowCount:  cur,
			PriorWindowCount:    prev,
			Interval:            interval,
			Trend:               direction,
			TrendChange:         formatPercent(change),
			TrendChangePercent:  change,
			Data:                data,
		})
	}
	return stats
}
