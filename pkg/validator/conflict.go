// Package validator 提供排班冲突检测
//
// 检测结果作为数据返回给调用方展示，检测器本身不拒绝排班。
package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDuplicateDay ConflictType = "duplicate_day" // 同日多个班次
	ConflictOverlap      ConflictType = "overlap"       // 时间重叠
	ConflictRestTime     ConflictType = "rest_time"     // 休息时间不足
	ConflictConsecutive  ConflictType = "consecutive"   // 连续天数过多
	ConflictAvailability ConflictType = "availability"  // 不可用日被排班
)

// Conflict 冲突信息
type Conflict struct {
	Type       ConflictType `json:"type"`
	Severity   string       `json:"severity"` // error/warning
	EmployeeID uuid.UUID    `json:"employee_id"`
	Date       string       `json:"date"`
	Message    string       `json:"message"`
	Shifts     []uuid.UUID  `json:"shifts,omitempty"` // 相关的班次ID
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	MinRestHours       int  // 班次间最小休息（小时）
	MaxConsecutiveDays int  // 最大连续工作天数
	CheckAvailability  bool // 是否检查周可用性
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		MinRestHours:       11,
		MaxConsecutiveDays: 5,
		CheckAvailability:  true,
	}
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// DetectAll 检测班次列表中的全部冲突
func (d *ConflictDetector) DetectAll(shifts []*model.Shift, employees map[uuid.UUID]*model.Employee) []Conflict {
	var conflicts []Conflict

	for empID, empShifts := range groupByEmployee(shifts) {
		emp := employees[empID]
		if emp == nil {
			emp = &model.Employee{BaseModel: model.BaseModel{ID: empID}}
		}

		conflicts = append(conflicts, d.detectDuplicateDays(emp, empShifts)...)
		conflicts = append(conflicts, d.detectOverlaps(emp, empShifts)...)
		conflicts = append(conflicts, d.detectRestViolations(emp, empShifts)...)
		conflicts = append(conflicts, d.detectConsecutiveOverruns(emp, empShifts)...)
		if d.config.CheckAvailability {
			conflicts = append(conflicts, d.detectUnavailableDays(emp, empShifts)...)
		}
	}

	return conflicts
}

// detectDuplicateDays 检测同一员工同日的多个班次
func (d *ConflictDetector) detectDuplicateDays(emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict

	byDate := make(map[string][]*model.Shift)
	for _, s := range shifts {
		byDate[s.Date()] = append(byDate[s.Date()], s)
	}

	dates := sortedKeys(byDate)
	for _, date := range dates {
		group := byDate[date]
		if len(group) < 2 {
			continue
		}
		ids := make([]uuid.UUID, 0, len(group))
		for _, s := range group {
			ids = append(ids, s.ID)
		}
		conflicts = append(conflicts, Conflict{
			Type:       ConflictDuplicateDay,
			Severity:   "error",
			EmployeeID: emp.ID,
			Date:       date,
			Message:    fmt.Sprintf("员工 %s 在 %s 有 %d 个班次", emp.FullName(), date, len(group)),
			Shifts:     ids,
		})
	}

	return conflicts
}

// detectOverlaps 检测时间重叠的班次
func (d *ConflictDetector) detectOverlaps(emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict

	sorted := sortByStart(shifts)
	for i := 0; i < len(sorted)-1; i++ {
		current, next := sorted[i], sorted[i+1]
		if current.Overlaps(next) {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictOverlap,
				Severity:   "error",
				EmployeeID: emp.ID,
				Date:       current.Date(),
				Message:    fmt.Sprintf("员工 %s 在 %s 存在时间重叠的班次", emp.FullName(), current.Date()),
				Shifts:     []uuid.UUID{current.ID, next.ID},
			})
		}
	}

	return conflicts
}

// detectRestViolations 检测班次间休息不足
func (d *ConflictDetector) detectRestViolations(emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict
	if len(shifts) < 2 {
		return conflicts
	}

	sorted := sortByStart(shifts)
	for i := 0; i < len(sorted)-1; i++ {
		current, next := sorted[i], sorted[i+1]
		restHours := next.StartTime.Sub(current.EndTime).Hours()
		if restHours >= 0 && restHours < float64(d.config.MinRestHours) {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictRestTime,
				Severity:   "error",
				EmployeeID: emp.ID,
				Date:       next.Date(),
				Message:    fmt.Sprintf("员工 %s 班次间休息仅 %.1f 小时，少于要求的 %d 小时", emp.FullName(), restHours, d.config.MinRestHours),
				Shifts:     []uuid.UUID{current.ID, next.ID},
			})
		}
	}

	return conflicts
}

// detectConsecutiveOverruns 检测超过上限的连续工作段
func (d *ConflictDetector) detectConsecutiveOverruns(emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict
	if d.config.MaxConsecutiveDays <= 0 || len(shifts) == 0 {
		return conflicts
	}

	dateSet := make(map[string]bool)
	for _, s := range shifts {
		dateSet[s.Date()] = true
	}
	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	runLen := 1
	runStart := dates[0]
	flush := func(length int, start string) {
		if length > d.config.MaxConsecutiveDays {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictConsecutive,
				Severity:   "error",
				EmployeeID: emp.ID,
				Date:       start,
				Message:    fmt.Sprintf("员工 %s 自 %s 起连续工作 %d 天，超过限制 %d 天", emp.FullName(), start, length, d.config.MaxConsecutiveDays),
			})
		}
	}

	for i := 1; i < len(dates); i++ {
		if isNextDay(dates[i-1], dates[i]) {
			runLen++
			continue
		}
		flush(runLen, runStart)
		runLen = 1
		runStart = dates[i]
	}
	flush(runLen, runStart)

	return conflicts
}

// detectUnavailableDays 检测排到不可用星期的班次
func (d *ConflictDetector) detectUnavailableDays(emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict

	for _, s := range shifts {
		if emp.IsAvailableOn(s.Date()) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:       ConflictAvailability,
			Severity:   "warning",
			EmployeeID: emp.ID,
			Date:       s.Date(),
			Message:    fmt.Sprintf("员工 %s 在不可用日 %s 被排班", emp.FullName(), s.Date()),
			Shifts:     []uuid.UUID{s.ID},
		})
	}

	return conflicts
}

// sortByStart 按开始时间升序复制排序
func sortByStart(shifts []*model.Shift) []*model.Shift {
	sorted := make([]*model.Shift, len(shifts))
	copy(sorted, shifts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}

// groupByEmployee 按员工分组
func groupByEmployee(shifts []*model.Shift) map[uuid.UUID][]*model.Shift {
	result := make(map[uuid.UUID][]*model.Shift)
	for _, s := range shifts {
		result[s.EmployeeID] = append(result[s.EmployeeID], s)
	}
	return result
}

// sortedKeys 返回排序后的日期键
func sortedKeys(m map[string][]*model.Shift) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isNextDay 检查两个日期是否相邻
func isNextDay(date1, date2 string) bool {
	t1, err1 := time.Parse("2006-01-02", date1)
	t2, err2 := time.Parse("2006-01-02", date2)
	if err1 != nil || err2 != nil {
		return false
	}
	return t2.Sub(t1).Hours()/24 == 1
}
