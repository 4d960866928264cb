package services

import (
	"fmt"
	"strconv"

	"facility-maintenance/microservices/statistics-service/models"
)

// formatCount abbreviates counts above 999 as thousands ("1.2k").
func formatCount(n int) string {
	if n > 999 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return strconv.Itoa(n)
}

func formatPercent(v float64) string {
	return formatDecimal(v) + "%"
}

func formatDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// completionPerformance is completed/assigned as a one-decimal percentage, or
// the zero Performance when nothing was assigned.
func completionPerformance(completed, assigned int) models.Performance {
	if assigned == 0 {
		return ""
	}
	return models.Performance(formatDecimal(float64(completed) / float64(assigned) * 100))
}
