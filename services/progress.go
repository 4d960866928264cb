package services

import (
	"math"

	"facility-maintenance/microservices/statistics-service/models"
)

func overallProgress(tasks []models.Task) models.OverallProgress {
	progress := models.OverallProgress{TotalTasks: len(tasks)}
	for _, task := range tasks {
		if task.WithDefaults().Status == models.StatusCompleted {
			progress.CompletedTasks++
		}
	}
	if progress.TotalTasks > 0 {
		progress.OverallProgress = int(math.Round(float64(progress.CompletedTasks) / float64(progress.TotalTasks) * 100))
	}
	return progress
}
