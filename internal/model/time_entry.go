package model

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// TimeEntry 一段工时记录
type TimeEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Date      string    `json:"date" gorm:"size:10;index;not null"` // YYYY-MM-DD
	StartTime string    `json:"start_time" gorm:"size:5;not null"`  // HH:MM
	EndTime   string    `json:"end_time" gorm:"size:5;not null"`
	Category  string    `json:"category" gorm:"size:50;not null"`
	Project   string    `json:"project" gorm:"size:100;not null"`
	InfoText  string    `json:"info_text" gorm:"size:300"`
	CreatedAt time.Time `json:"created_at"`
}

// Duration 结束减开始，结束早于开始表示跨过午夜
func (e *TimeEntry) Duration() time.Duration {
	start, err := time.Parse(ClockLayout, e.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse(ClockLayout, e.EndTime)
	if err != nil {
		return 0
	}
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return end.Sub(start)
}

func (e *TimeEntry) DurationString() string {
	return FormatHours(e.Duration())
}

// FormatHours 将时长格式化为 HH:MM
func FormatHours(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
