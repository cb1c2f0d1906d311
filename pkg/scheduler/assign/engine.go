// Package assign 实现基于角色亲和的贪心排班引擎
package assign

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/errors"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
	"github.com/vardschema/vardschema/pkg/scheduler/rule"
)

// AffinityEntry 岗位到班次类型的亲和映射
type AffinityEntry struct {
	Role      string          `json:"role"`
	ShiftType model.ShiftType `json:"shift_type"`
}

// DefaultAffinity 默认岗位亲和表（顺序即遍历顺序）
func DefaultAffinity() []AffinityEntry {
	return []AffinityEntry{
		{Role: model.RoleLakare, ShiftType: model.ShiftDay},
		{Role: model.RoleSjukskoterska, ShiftType: model.ShiftEvening},
		{Role: model.RoleUnderskoterska, ShiftType: model.ShiftNight},
		{Role: model.RoleProfessor, ShiftType: model.ShiftDay},
	}
}

// Config 排班引擎配置
type Config struct {
	Affinity           []AffinityEntry
	MinStaff           map[model.ShiftType]int
	OverstaffCap       int
	MaxConsecutiveDays int
	MinRestHours       int
	Department         string
}

// DefaultConfig 返回默认配置（日3/晚3/夜2，连续5天，休息11小时）
func DefaultConfig() Config {
	return Config{
		Affinity: DefaultAffinity(),
		MinStaff: map[model.ShiftType]int{
			model.ShiftDay:     3,
			model.ShiftEvening: 3,
			model.ShiftNight:   2,
		},
		OverstaffCap:       3,
		MaxConsecutiveDays: 5,
		MinRestHours:       11,
	}
}

// Statistics 排班统计
type Statistics struct {
	TotalShifts     int     `json:"total_shifts"`
	FilledSlots     int     `json:"filled_slots"`
	TotalSlots      int     `json:"total_slots"`
	FillRate        float64 `json:"fill_rate"`
	TotalHours      float64 `json:"total_hours"`
	ActiveEmployees int     `json:"active_employees"`
}

// Result 排班引擎输出
type Result struct {
	Shifts     []*model.Shift        `json:"shifts"`
	Issues     []model.StaffingIssue `json:"staffing_issues"`
	Statistics *Statistics           `json:"statistics"`
	Duration   time.Duration         `json:"duration"`
}

// Engine 贪心排班引擎
// 每次 Generate 独立构造运行状态，引擎本身无可变状态，可并发复用
type Engine struct {
	cfg    Config
	logger *logger.SchedulerLogger
}

// New 创建排班引擎
func New(cfg Config) *Engine {
	if len(cfg.Affinity) == 0 {
		cfg.Affinity = DefaultAffinity()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.NewSchedulerLogger(),
	}
}

// Generate 为日期范围生成草稿排班
// 人员不足记录为 StaffingIssue，不视为失败
func (e *Engine) Generate(employees []*model.Employee, dateRange model.DateRange, constraints []*model.ParsedConstraint) (*Result, error) {
	startTime := time.Now()
	runID := uuid.New().String()

	days := dateRange.Days()
	if len(days) == 0 {
		return nil, errors.InvalidTimeRange(dateRange.StartDate, dateRange.EndDate)
	}
	if len(employees) == 0 {
		return nil, errors.ErrNoEmployees
	}

	e.logger.StartRun(runID, len(employees), len(days))

	checker := rule.NewChecker(rule.Config{
		MaxConsecutiveDays: e.cfg.MaxConsecutiveDays,
		MinRestHours:       e.cfg.MinRestHours,
	}, constraints)
	tracker := rule.NewTracker()

	shiftOrder, rolesByShift := e.affinityIndex()

	result := &Result{
		Shifts:     make([]*model.Shift, 0),
		Issues:     make([]model.StaffingIssue, 0),
		Statistics: &Statistics{},
	}

	for _, date := range days {
		for _, shiftType := range shiftOrder {
			result.Statistics.TotalSlots++

			minimum := e.cfg.MinStaff[shiftType]
			candidates := e.eligibleCandidates(employees, rolesByShift[shiftType], checker, tracker, date, shiftType)

			if len(candidates) == 0 {
				result.Issues = append(result.Issues, model.StaffingIssue{
					Date:      date,
					ShiftType: shiftType,
					Current:   0,
					Required:  minimum,
				})
				e.logger.StaffingShortfall(date, string(shiftType), 0, minimum)
				continue
			}

			// 软约束惩罚升序 → 已分配班次数升序 → 经验降序
			e.sortCandidates(candidates, checker, tracker, date, shiftType)

			target := e.targetCount(minimum, len(candidates))
			assigned := 0
			for _, emp := range candidates {
				if assigned >= target {
					break
				}
				shift, err := model.NewShift(emp.ID, date, shiftType, e.department(emp))
				if err != nil {
					continue
				}
				tracker.Record(emp.ID, date, shift.EndTime)
				result.Shifts = append(result.Shifts, shift)
				result.Statistics.TotalHours += shift.WorkingHours()
				assigned++
			}

			if assigned < minimum {
				result.Issues = append(result.Issues, model.StaffingIssue{
					Date:      date,
					ShiftType: shiftType,
					Current:   assigned,
					Required:  minimum,
				})
				e.logger.StaffingShortfall(date, string(shiftType), assigned, minimum)
			} else {
				result.Statistics.FilledSlots++
			}
		}
	}

	result.Statistics.TotalShifts = len(result.Shifts)
	if result.Statistics.TotalSlots > 0 {
		result.Statistics.FillRate = float64(result.Statistics.FilledSlots) / float64(result.Statistics.TotalSlots) * 100
	}
	for _, emp := range employees {
		if tracker.Count(emp.ID) > 0 {
			result.Statistics.ActiveEmployees++
		}
	}
	result.Duration = time.Since(startTime)

	e.logger.RunComplete(runID, len(result.Shifts), len(result.Issues), result.Duration)
	return result, nil
}

// affinityIndex 从亲和表导出班次遍历顺序和每个班次的岗位集合
// 班次顺序取亲和表中首次出现的顺序
func (e *Engine) affinityIndex() ([]model.ShiftType, map[model.ShiftType]map[string]bool) {
	var order []model.ShiftType
	roles := make(map[model.ShiftType]map[string]bool)

	for _, entry := range e.cfg.Affinity {
		if roles[entry.ShiftType] == nil {
			order = append(order, entry.ShiftType)
			roles[entry.ShiftType] = make(map[string]bool)
		}
		roles[entry.ShiftType][entry.Role] = true
	}
	return order, roles
}

// eligibleCandidates 过滤出可分配到（日期, 班次类型）的员工
func (e *Engine) eligibleCandidates(employees []*model.Employee, roles map[string]bool, checker *rule.Checker, tracker *rule.Tracker, date string, shiftType model.ShiftType) []*model.Employee {
	var candidates []*model.Employee
	for _, emp := range employees {
		if !emp.IsActive() {
			continue
		}
		if !roles[emp.Role] {
			continue
		}
		if !checker.Eligible(tracker, emp, date, shiftType) {
			continue
		}
		candidates = append(candidates, emp)
	}
	return candidates
}

// sortCandidates 对候选员工排序
// 软约束命中者降权到队尾，其余按班次数少者优先、同班次数经验高者优先
func (e *Engine) sortCandidates(candidates []*model.Employee, checker *rule.Checker, tracker *rule.Tracker, date string, shiftType model.ShiftType) {
	penalties := make(map[uuid.UUID]int, len(candidates))
	for _, emp := range candidates {
		penalties[emp.ID] = checker.Penalty(tracker, emp, date, shiftType)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := penalties[candidates[i].ID], penalties[candidates[j].ID]
		if pi != pj {
			return pi < pj
		}
		ci, cj := tracker.Count(candidates[i].ID), tracker.Count(candidates[j].ID)
		if ci != cj {
			return ci < cj
		}
		return candidates[i].ExperienceLevel > candidates[j].ExperienceLevel
	})
}

// targetCount 计算目标分配人数
// 候选充足时机会性超配到上限，至少满足该班次的最低人数
func (e *Engine) targetCount(minimum, eligible int) int {
	limit := e.cfg.OverstaffCap
	if limit <= 0 {
		limit = minimum
	}
	target := limit
	if eligible < target {
		target = eligible
	}
	if target < minimum {
		target = minimum
	}
	if target > eligible {
		target = eligible
	}
	return target
}

// department 确定班次所属部门（引擎配置优先，其次员工所在部门）
func (e *Engine) department(emp *model.Employee) string {
	if e.cfg.Department != "" {
		return e.cfg.Department
	}
	return emp.Department
}
