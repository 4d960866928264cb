package models

import (
	"bytes"
	"encoding/json"
)

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// StatusStatistic compares one status between the current and the prior window.
// Value, Previous30DaysCount and TrendChange are display strings; the raw counts
// are kept alongside them.
type StatusStatistic struct {
	Title               TaskStatus     `json:"title"`
	Value               string         `json:"value"`
	Previous30DaysCount string         `json:"previous30DaysCount"`
	CurrentWindowCount  int            `json:"currentWindowCount"`
	PriorWindowCount    int            `json:"priorWindowCount"`
	Interval            string         `json:"interval"`
	Trend               TrendDirection `json:"trend"`
	TrendChange         string         `json:"trendChange"`
	TrendChangePercent  float64        `json:"trendChangePercent"`
	Data                []int          `json:"data"`
}

// MonthlySeries holds the per-status task counts of one calendar month.
type MonthlySeries struct {
	Month  string             `json:"month"`
	Counts map[TaskStatus]int `json:"counts"`
}

// OverallProgress is the completion summary of a window.
type OverallProgress struct {
	TotalTasks      int `json:"totalTasks"`
	CompletedTasks  int `json:"completedTasks"`
	OverallProgress int `json:"overallProgress"`
}

type CategoriesWorkedOn struct {
	Categories []TaskCategory `json:"categories"`
	Size       int            `json:"size"`
}

// Performance is a completion percentage with one decimal. The zero value is
// encoded as the bare number 0, matching what clients already parse for users
// without assigned tasks.
type Performance string

func (p Performance) MarshalJSON() ([]byte, error) {
	if p == "" {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

func (p *Performance) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("0")) {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Performance(s)
	return nil
}

type LeaderboardEntry struct {
	UserID             string             `json:"_id"`
	FirstName          string             `json:"firstName"`
	LastName           string             `json:"lastName"`
	FullName           string             `json:"fullName"`
	Email              string             `json:"email"`
	AssignedTasks      int                `json:"assignedTasks"`
	CompletedTasks     int                `json:"completedTasks"`
	InProgressTasks    int                `json:"inProgressTasks"`
	PendingTasks       int                `json:"pendingTasks"`
	ToDoTasks          int                `json:"toDoTasks"`
	HighPriority       int                `json:"highPriority"`
	MediumPriority     int                `json:"mediumPriority"`
	LowPriority        int                `json:"lowPriority"`
	CategoriesWorkedOn CategoriesWorkedOn `json:"categoriesWorkedOn"`
	WeightedScore      float64            `json:"weightedScore"`
	Rating             float64            `json:"rating"`
	Prioritization     TaskPriority       `json:"prioritization"`
	Performance        Performance        `json:"performance"`
	Rank               int                `json:"rank"`
	Interval           string             `json:"interval"`
	Last30DaysOverall  OverallProgress    `json:"last30DaysOverall"`
}

// DashboardStatistics is the composite response of the dashboard view.
type DashboardStatistics struct {
	StatData          []StatusStatistic    `json:"statData"`
	ChartData         []MonthlySeries      `json:"chartData"`
	SeriesData        map[TaskStatus][]int `json:"seriesData"`
	LastSixMonths     []string             `json:"lastSixMonths"`
	DaysInLast30      []string             `json:"daysInLast30"`
	Last30DaysOverall OverallProgress      `json:"last30DaysOverall"`
	Performance       string               `json:"performance"`
	Leaderboard       []LeaderboardEntry   `json:"leaderboard"`
}
