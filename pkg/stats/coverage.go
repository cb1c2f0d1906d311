// Package stats 提供排班统计分析功能
package stats

import (
	"sort"

	"github.com/vardschema/vardschema/pkg/model"
)

// SlotCoverage 单个（日期, 班次类型）槽位的覆盖情况
type SlotCoverage struct {
	Date      string          `json:"date"`
	ShiftType model.ShiftType `json:"shift_type"`
	Assigned  int             `json:"assigned"`
	Required  int             `json:"required"`
	Shortage  int             `json:"shortage"`
}

// DayCoverage 单日覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	Assigned     int     `json:"assigned"`
	Required     int     `json:"required"`
	CoverageRate float64 `json:"coverage_rate"`
	TotalHours   float64 `json:"total_hours"`
}

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	TotalSlots      int                    `json:"total_slots"`
	CoveredSlots    int                    `json:"covered_slots"`
	OverallCoverage float64                `json:"overall_coverage"` // 百分比
	DailyCoverage   map[string]DayCoverage `json:"daily_coverage"`
	Understaffed    []SlotCoverage         `json:"understaffed"`
	TotalHours      float64                `json:"total_hours"`
}

// CoverageAnalyzer 覆盖率分析器
// 以每种班次的最低人数为需求基线统计覆盖情况
type CoverageAnalyzer struct {
	minStaff map[model.ShiftType]int
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer(minStaff map[model.ShiftType]int) *CoverageAnalyzer {
	if minStaff == nil {
		minStaff = map[model.ShiftType]int{
			model.ShiftDay:     3,
			model.ShiftEvening: 3,
			model.ShiftNight:   2,
		}
	}
	return &CoverageAnalyzer{minStaff: minStaff}
}

// Analyze 在日期范围内分析班次列表的覆盖率
// 范围内每个日期的每种班次都计入需求，未出现的槽位按0人统计
func (c *CoverageAnalyzer) Analyze(shifts []*model.Shift, dateRange model.DateRange) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage: make(map[string]DayCoverage),
		Understaffed:  make([]SlotCoverage, 0),
	}

	days := dateRange.Days()
	if len(days) == 0 {
		metrics.OverallCoverage = 100
		return metrics
	}

	type slotKey struct {
		date      string
		shiftType model.ShiftType
	}
	counts := make(map[slotKey]int)
	hoursByDate := make(map[string]float64)
	for _, s := range shifts {
		counts[slotKey{date: s.Date(), shiftType: s.ShiftType}]++
		hoursByDate[s.Date()] += s.WorkingHours()
		metrics.TotalHours += s.WorkingHours()
	}

	for _, date := range days {
		day := DayCoverage{Date: date, TotalHours: hoursByDate[date]}

		for _, shiftType := range model.AllShiftTypes() {
			required := c.minStaff[shiftType]
			if required <= 0 {
				continue
			}
			assigned := counts[slotKey{date: date, shiftType: shiftType}]

			metrics.TotalSlots++
			day.Required += required
			if assigned >= required {
				metrics.CoveredSlots++
				day.Assigned += required
			} else {
				day.Assigned += assigned
				metrics.Understaffed = append(metrics.Understaffed, SlotCoverage{
					Date:      date,
					ShiftType: shiftType,
					Assigned:  assigned,
					Required:  required,
					Shortage:  required - assigned,
				})
			}
		}

		if day.Required > 0 {
			day.CoverageRate = float64(day.Assigned) / float64(day.Required) * 100
		}
		metrics.DailyCoverage[date] = day
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.CoveredSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallCoverage = 100
	}

	sort.Slice(metrics.Understaffed, func(i, j int) bool {
		if metrics.Understaffed[i].Date != metrics.Understaffed[j].Date {
			return metrics.Understaffed[i].Date < metrics.Understaffed[j].Date
		}
		return metrics.Understaffed[i].ShiftType < metrics.Understaffed[j].ShiftType
	})

	return metrics
}
