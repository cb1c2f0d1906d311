// Package rule 定义排班分配时的资格规则
package rule

import (
	"github.com/vardschema/vardschema/pkg/model"
)

// AvailabilityRule 周可用性规则
// 员工的工作偏好限定了可用星期时，其余日期不可分配
type AvailabilityRule struct{}

// Name 返回规则名称
func (r *AvailabilityRule) Name() string { return "周可用性" }

// Category 返回规则类别
func (r *AvailabilityRule) Category() model.ConstraintCategory { return model.ConstraintHard }

// Allows 检查员工当日是否可用
func (r *AvailabilityRule) Allows(t *Tracker, e *model.Employee, date string, _ model.ShiftType) bool {
	return e.IsAvailableOn(date)
}

// DoubleBookingRule 当日唯一分配规则
type DoubleBookingRule struct{}

// Name 返回规则名称
func (r *DoubleBookingRule) Name() string { return "当日唯一分配" }

// Category 返回规则类别
func (r *DoubleBookingRule) Category() model.ConstraintCategory { return model.ConstraintHard }

// Allows 检查员工当日是否尚未分配
func (r *DoubleBookingRule) Allows(t *Tracker, e *model.Employee, date string, _ model.ShiftType) bool {
	return !t.AssignedOn(e.ID, date)
}

// ConsecutiveDaysRule 最大连续工作天数规则
type ConsecutiveDaysRule struct {
	maxDays int
}

// NewConsecutiveDaysRule 创建最大连续工作天数规则
func NewConsecutiveDaysRule(maxDays int) *ConsecutiveDaysRule {
	return &ConsecutiveDaysRule{maxDays: maxDays}
}

// Name 返回规则名称
func (r *ConsecutiveDaysRule) Name() string { return "最大连续工作天数" }

// Category 返回规则类别
func (r *ConsecutiveDaysRule) Category() model.ConstraintCategory { return model.ConstraintHard }

// Allows 检查截至前一天的连续段是否已超过上限
// 只排除已经超限的连续段；上限本身的硬保证由后处理截断负责
func (r *ConsecutiveDaysRule) Allows(t *Tracker, e *model.Employee, date string, _ model.ShiftType) bool {
	if r.maxDays <= 0 {
		return true
	}
	return t.RunEndingAt(e.ID, previousDate(date)) <= r.maxDays
}

// RestRule 班次间最小休息时间规则
type RestRule struct {
	minHours int
}

// NewRestRule 创建班次间最小休息规则
func NewRestRule(minHours int) *RestRule {
	return &RestRule{minHours: minHours}
}

// Name 返回规则名称
func (r *RestRule) Name() string { return "班次间最小休息" }

// Category 返回规则类别
func (r *RestRule) Category() model.ConstraintCategory { return model.ConstraintHard }

// Allows 检查距上一个班次结束是否满足最小休息时长
func (r *RestRule) Allows(t *Tracker, e *model.Employee, date string, shiftType model.ShiftType) bool {
	if r.minHours <= 0 {
		return true
	}
	lastEnd, ok := t.LastShiftEnd(e.ID)
	if !ok {
		return true
	}
	start, _, err := model.ShiftTimes(date, shiftType)
	if err != nil {
		return false
	}
	return start.Sub(lastEnd).Hours() >= float64(r.minHours)
}

// BlockedSlotRule 硬约束封锁规则（来自约束解析器）
type BlockedSlotRule struct {
	constraints []*model.ParsedConstraint
}

// NewBlockedSlotRule 创建硬约束封锁规则
func NewBlockedSlotRule(constraints []*model.ParsedConstraint) *BlockedSlotRule {
	return &BlockedSlotRule{constraints: constraints}
}

// Name 返回规则名称
func (r *BlockedSlotRule) Name() string { return "硬约束封锁" }

// Category 返回规则类别
func (r *BlockedSlotRule) Category() model.ConstraintCategory { return model.ConstraintHard }

// Allows 检查是否存在命中的硬约束
func (r *BlockedSlotRule) Allows(t *Tracker, e *model.Employee, date string, shiftType model.ShiftType) bool {
	for _, c := range r.constraints {
		if c.IsHard() && c.AppliesTo(e.ID, date, shiftType) {
			return false
		}
	}
	return true
}

// SoftConstraintRule 软约束降权规则
// 每命中一条软约束累加1点惩罚，只影响候选排序
type SoftConstraintRule struct {
	constraints []*model.ParsedConstraint
}

// NewSoftConstraintRule 创建软约束降权规则
func NewSoftConstraintRule(constraints []*model.ParsedConstraint) *SoftConstraintRule {
	return &SoftConstraintRule{constraints: constraints}
}

// Name 返回规则名称
func (r *SoftConstraintRule) Name() string { return "软约束降权" }

// Category 返回规则类别
func (r *SoftConstraintRule) Category() model.ConstraintCategory { return model.ConstraintSoft }

// Penalty 计算命中的软约束条数
func (r *SoftConstraintRule) Penalty(t *Tracker, e *model.Employee, date string, shiftType model.ShiftType) int {
	penalty := 0
	for _, c := range r.constraints {
		if !c.IsHard() && c.AppliesTo(e.ID, date, shiftType) {
			penalty++
		}
	}
	return penalty
}
