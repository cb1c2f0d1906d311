// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

// EmployeeStat 单名员工的分布统计
type EmployeeStat struct {
	EmployeeID    uuid.UUID `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	TotalHours    float64   `json:"total_hours"`
	ShiftCount    int       `json:"shift_count"`
	NightShifts   int       `json:"night_shifts"`
	WeekendShifts int       `json:"weekend_shifts"`
	Deviation     float64   `json:"deviation"` // 与人均工时的偏差百分比
}

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	WorkloadGini        float64        `json:"workload_gini"` // 0=完全公平
	WorkloadStdDev      float64        `json:"workload_std_dev"`
	AvgHoursPerEmployee float64        `json:"avg_hours_per_employee"`
	MaxHours            float64        `json:"max_hours"`
	MinHours            float64        `json:"min_hours"`
	NightShiftGini      float64        `json:"night_shift_gini"`
	WeekendShiftGini    float64        `json:"weekend_shift_gini"`
	EmployeeStats       []EmployeeStat `json:"employee_stats"`
	OverallScore        float64        `json:"overall_score"` // 0-100
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析班次分配在员工之间的公平性
// 未被分配任何班次的员工也计入分布（工时为0）
func (f *FairnessAnalyzer) Analyze(shifts []*model.Shift, employees []*model.Employee) *FairnessMetrics {
	if len(employees) == 0 {
		return &FairnessMetrics{EmployeeStats: []EmployeeStat{}, OverallScore: 100}
	}

	statMap := make(map[uuid.UUID]*EmployeeStat, len(employees))
	for _, emp := range employees {
		statMap[emp.ID] = &EmployeeStat{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName(),
		}
	}

	for _, s := range shifts {
		stat, ok := statMap[s.EmployeeID]
		if !ok {
			continue
		}
		stat.TotalHours += s.WorkingHours()
		stat.ShiftCount++
		if s.IsNightShift() {
			stat.NightShifts++
		}
		if isWeekend(s.Date()) {
			stat.WeekendShifts++
		}
	}

	stats := make([]EmployeeStat, 0, len(statMap))
	hours := make([]float64, 0, len(statMap))
	nights := make([]float64, 0, len(statMap))
	weekends := make([]float64, 0, len(statMap))
	for _, emp := range employees {
		stat := statMap[emp.ID]
		stats = append(stats, *stat)
		hours = append(hours, stat.TotalHours)
		nights = append(nights, float64(stat.NightShifts))
		weekends = append(weekends, float64(stat.WeekendShifts))
	}

	avg := mean(hours)
	stdDev := math.Sqrt(variance(hours, avg))
	maxHours, minHours := extremes(hours)

	for i := range stats {
		if avg > 0 {
			stats[i].Deviation = (stats[i].TotalHours - avg) / avg * 100
		}
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TotalHours > stats[j].TotalHours
	})

	workloadGini := gini(hours)
	nightGini := gini(nights)
	weekendGini := gini(weekends)

	return &FairnessMetrics{
		WorkloadGini:        workloadGini,
		WorkloadStdDev:      stdDev,
		AvgHoursPerEmployee: avg,
		MaxHours:            maxHours,
		MinHours:            minHours,
		NightShiftGini:      nightGini,
		WeekendShiftGini:    weekendGini,
		EmployeeStats:       stats,
		OverallScore:        overallScore(workloadGini, nightGini, weekendGini, stdDev, avg),
	}
}

// overallScore 计算综合公平性评分
// 基尼系数越低、工时变异越小评分越高
func overallScore(workloadGini, nightGini, weekendGini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight = 0.4
		nightWeight    = 0.25
		weekendWeight  = 0.25
		cvWeight       = 0.1
	)

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*(1-workloadGini)*100 +
		nightWeight*(1-nightGini)*100 +
		weekendWeight*(1-weekendGini)*100 +
		cvWeight*cvScore

	return math.Max(0, math.Min(100, score))
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance 计算方差
func variance(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// extremes 计算极值
func extremes(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// isWeekend 判断日期是否为周末
func isWeekend(date string) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}
