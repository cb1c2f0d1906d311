// Package model 定义排班核心的数据模型
package model

import "github.com/google/uuid"

// ConstraintType 解析结果类型
type ConstraintType string

const (
	ConstraintBlockedSlot     ConstraintType = "blocked_slot"     // 指定日期+班次的封锁
	ConstraintShiftPreference ConstraintType = "shift_preference" // 无具体日期的长期班次偏好
	ConstraintUnknown         ConstraintType = "unknown"          // 未能提取有效信息
)

// Confidence 解析置信度
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParsedConstraint 自由文本解析出的结构化约束
// 班次类型集合为空表示当日全部班次
type ParsedConstraint struct {
	BaseModel
	Type         ConstraintType     `json:"type" db:"type"`
	Category     ConstraintCategory `json:"category" db:"category"`
	EmployeeID   *uuid.UUID         `json:"employee_id,omitempty" db:"employee_id"`
	EmployeeName string             `json:"employee_name,omitempty" db:"employee_name"`
	ShiftTypes   []ShiftType        `json:"shift_types,omitempty" db:"shift_types"`
	Dates        []string           `json:"dates,omitempty" db:"dates"` // YYYY-MM-DD
	Confidence   Confidence         `json:"confidence" db:"confidence"`
	RawText      string             `json:"raw_text" db:"raw_text"`
	Reason       string             `json:"reason,omitempty" db:"reason"` // 瑞典语说明（面向操作员）
}

// IsHard 检查是否为硬约束
func (c *ParsedConstraint) IsHard() bool {
	return c.Category == ConstraintHard
}

// AppliesTo 检查约束是否命中（员工, 日期, 班次类型）
// 无日期的长期偏好对任意日期生效
func (c *ParsedConstraint) AppliesTo(employeeID uuid.UUID, date string, shiftType ShiftType) bool {
	if c.Type == ConstraintUnknown || c.EmployeeID == nil || *c.EmployeeID != employeeID {
		return false
	}

	if len(c.Dates) > 0 {
		found := false
		for _, d := range c.Dates {
			if d == date {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(c.ShiftTypes) == 0 {
		return true
	}
	for _, t := range c.ShiftTypes {
		if t == shiftType {
			return true
		}
	}
	return false
}
