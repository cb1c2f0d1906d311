// Package model 定义排班核心的数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Shift 班次（排班的物理单元）
// 起止时间由（日期, 班次类型）经固定时刻表唯一确定
type Shift struct {
	BaseModel
	EmployeeID  uuid.UUID `json:"employee_id" db:"employee_id"`
	ShiftType   ShiftType `json:"shift_type" db:"shift_type"`
	Department  string    `json:"department,omitempty" db:"department"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	IsPublished bool      `json:"is_published" db:"is_published"`
}

// NewShift 按固定时刻表创建班次
func NewShift(employeeID uuid.UUID, date string, shiftType ShiftType, department string) (*Shift, error) {
	start, end, err := ShiftTimes(date, shiftType)
	if err != nil {
		return nil, err
	}
	return &Shift{
		BaseModel:  NewBaseModel(),
		EmployeeID: employeeID,
		ShiftType:  shiftType,
		Department: department,
		StartTime:  start,
		EndTime:    end,
	}, nil
}

// Date 返回班次所属的日历日期（以开始时间为准）
func (s *Shift) Date() string {
	return s.StartTime.Format("2006-01-02")
}

// WorkingHours 计算班次时长（小时）
func (s *Shift) WorkingHours() float64 {
	return s.EndTime.Sub(s.StartTime).Hours()
}

// Overlaps 检查两个班次是否时间重叠
func (s *Shift) Overlaps(other *Shift) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}

// IsNightShift 检查是否为夜班
func (s *Shift) IsNightShift() bool {
	return s.ShiftType == ShiftNight
}

// StaffingIssue 人员配置缺口（作为数据记录，不作为错误）
type StaffingIssue struct {
	Date      string    `json:"date"`
	ShiftType ShiftType `json:"shift_type"`
	Current   int       `json:"current"`
	Required  int       `json:"required"`
}

// Shortage 返回缺口人数
func (i StaffingIssue) Shortage() int {
	if i.Required > i.Current {
		return i.Required - i.Current
	}
	return 0
}
