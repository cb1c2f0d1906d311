// Package model 定义排班核心的数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftType 班次类型（日班/晚班/夜班）
type ShiftType string

const (
	ShiftDay     ShiftType = "day"     // 日班 07:00-15:00
	ShiftEvening ShiftType = "evening" // 晚班 15:00-23:00
	ShiftNight   ShiftType = "night"   // 夜班 23:00-次日07:00
)

// AllShiftTypes 按固定顺序返回全部班次类型
func AllShiftTypes() []ShiftType {
	return []ShiftType{ShiftDay, ShiftEvening, ShiftNight}
}

// IsValid 检查班次类型是否合法
func (t ShiftType) IsValid() bool {
	switch t {
	case ShiftDay, ShiftEvening, ShiftNight:
		return true
	}
	return false
}

// ConstraintCategory 约束类别
type ConstraintCategory string

const (
	ConstraintHard ConstraintCategory = "hard" // 硬约束（必须满足）
	ConstraintSoft ConstraintCategory = "soft" // 软约束（尽量满足）
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// TimeRange 时间范围
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration 返回时间范围的持续时间
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps 检查两个时间范围是否重叠
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// DateRange 日期范围（含两端）
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Days 展开为日期列表（YYYY-MM-DD，按升序）
func (r DateRange) Days() []string {
	start, err1 := time.Parse("2006-01-02", r.StartDate)
	end, err2 := time.Parse("2006-01-02", r.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

// shiftWindow 班次时刻表（起始小时、结束小时、是否跨天）
type shiftWindow struct {
	startHour int
	endHour   int
	nextDay   bool
}

// 固定班次时刻表：日班 07-15，晚班 15-23，夜班 23-次日07
var shiftWindows = map[ShiftType]shiftWindow{
	ShiftDay:     {startHour: 7, endHour: 15},
	ShiftEvening: {startHour: 15, endHour: 23},
	ShiftNight:   {startHour: 23, endHour: 7, nextDay: true},
}

// ShiftTimes 根据日期和班次类型计算起止时间
// 夜班的结束时间落在次日
func ShiftTimes(date string, shiftType ShiftType) (start, end time.Time, err error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	w, ok := shiftWindows[shiftType]
	if !ok {
		w = shiftWindows[ShiftDay]
	}

	start = time.Date(day.Year(), day.Month(), day.Day(), w.startHour, 0, 0, 0, time.UTC)
	endDay := day
	if w.nextDay {
		endDay = day.AddDate(0, 0, 1)
	}
	end = time.Date(endDay.Year(), endDay.Month(), endDay.Day(), w.endHour, 0, 0, 0, time.UTC)
	return start, end, nil
}
