// Package rule 定义排班分配时的资格规则
//
// 硬规则决定员工是否可被分配到某个（日期, 班次）槽位，
// 软规则只产生惩罚值用于候选排序的降权，不否决分配。
package rule

import (
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

// Rule 规则基础接口
type Rule interface {
	// Name 返回规则名称
	Name() string

	// Category 返回规则类别（硬/软）
	Category() model.ConstraintCategory
}

// HardRule 硬规则：不满足即不可分配
type HardRule interface {
	Rule

	// Allows 检查员工是否可分配到（日期, 班次类型）
	Allows(t *Tracker, e *model.Employee, date string, shiftType model.ShiftType) bool
}

// SoftRule 软规则：返回惩罚值，仅影响候选排序
type SoftRule interface {
	Rule

	// Penalty 计算该分配的惩罚值
	Penalty(t *Tracker, e *model.Employee, date string, shiftType model.ShiftType) int
}

// Tracker 一次排班运行的累积状态
// 每次运行独立构造，运行之间不共享任何可变状态
type Tracker struct {
	counts       map[uuid.UUID]int
	lastWorkDay  map[uuid.UUID]string
	lastShiftEnd map[uuid.UUID]time.Time
	consecutive  map[uuid.UUID]int
	assignedOn   map[string]map[uuid.UUID]bool
}

// NewTracker 创建空的运行状态
func NewTracker() *Tracker {
	return &Tracker{
		counts:       make(map[uuid.UUID]int),
		lastWorkDay:  make(map[uuid.UUID]string),
		lastShiftEnd: make(map[uuid.UUID]time.Time),
		consecutive:  make(map[uuid.UUID]int),
		assignedOn:   make(map[string]map[uuid.UUID]bool),
	}
}

// Record 记录一次分配并更新累积状态
// 连续天数计数：新日期紧接上一个工作日则递增，否则重置为1
func (t *Tracker) Record(empID uuid.UUID, date string, shiftEnd time.Time) {
	t.counts[empID]++

	if t.lastWorkDay[empID] == previousDate(date) {
		t.consecutive[empID]++
	} else {
		t.consecutive[empID] = 1
	}
	t.lastWorkDay[empID] = date

	if shiftEnd.After(t.lastShiftEnd[empID]) {
		t.lastShiftEnd[empID] = shiftEnd
	}

	if t.assignedOn[date] == nil {
		t.assignedOn[date] = make(map[uuid.UUID]bool)
	}
	t.assignedOn[date][empID] = true
}

// Count 返回员工的累计班次数
func (t *Tracker) Count(empID uuid.UUID) int {
	return t.counts[empID]
}

// AssignedOn 检查员工在某日期是否已有分配
func (t *Tracker) AssignedOn(empID uuid.UUID, date string) bool {
	return t.assignedOn[date][empID]
}

// AssignedCountOn 返回某日期已分配的员工数
func (t *Tracker) AssignedCountOn(date string) int {
	return len(t.assignedOn[date])
}

// RunEndingAt 返回员工截至指定日期的连续工作天数
// 最后工作日不等于该日期时返回0（连续段未触及该日期）
func (t *Tracker) RunEndingAt(empID uuid.UUID, date string) int {
	if t.lastWorkDay[empID] != date {
		return 0
	}
	return t.consecutive[empID]
}

// LastShiftEnd 返回员工最近一个班次的结束时间
func (t *Tracker) LastShiftEnd(empID uuid.UUID) (time.Time, bool) {
	end, ok := t.lastShiftEnd[empID]
	return end, ok
}

// previousDate 获取前一天日期
func previousDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, -1).Format("2006-01-02")
}

// Config 规则配置
type Config struct {
	MaxConsecutiveDays int
	MinRestHours       int
}

// Checker 规则检查器（固定的硬/软规则集合）
type Checker struct {
	hard []HardRule
	soft []SoftRule
}

// NewChecker 按配置和解析约束构建标准规则集
func NewChecker(cfg Config, constraints []*model.ParsedConstraint) *Checker {
	return &Checker{
		hard: []HardRule{
			&AvailabilityRule{},
			&DoubleBookingRule{},
			NewConsecutiveDaysRule(cfg.MaxConsecutiveDays),
			NewRestRule(cfg.MinRestHours),
			NewBlockedSlotRule(constraints),
		},
		soft: []SoftRule{
			NewSoftConstraintRule(constraints),
		},
	}
}

// Eligible 检查全部硬规则
func (c *Checker) Eligible(t *Tracker, e *model.Employee, date string, shiftType model.ShiftType) bool {
	for _, r := range c.hard {
		if !r.Allows(t, e, date, shiftType) {
			return false
		}
	}
	return true
}

// Penalty 汇总全部软规则的惩罚值
func (c *Checker) Penalty(t *Tracker, e *model.Employee, date string, shiftType model.ShiftType) int {
	total := 0
	for _, r := range c.soft {
		total += r.Penalty(t, e, date, shiftType)
	}
	return total
}
