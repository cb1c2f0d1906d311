// Package model 定义排班核心的数据模型
package model

import (
	"strings"
	"time"
)

// 岗位角色（瑞典医疗机构的固定岗位集合）
const (
	RoleLakare        = "Läkare"        // 医生
	RoleSjukskoterska = "Sjuksköterska" // 护士
	RoleUnderskoterska = "Undersköterska" // 护理员
	RoleProfessor     = "Professor"     // 教授（按医生排日班）
)

// Employee 员工（排班期间视为只读值，来源于外部人员目录）
type Employee struct {
	BaseModel
	FirstName       string `json:"first_name" db:"first_name"`
	LastName        string `json:"last_name" db:"last_name"`
	Role            string `json:"role" db:"role"`
	ExperienceLevel int    `json:"experience_level" db:"experience_level"`
	Department      string `json:"department,omitempty" db:"department"`
	Status          string `json:"status" db:"status"` // active/inactive/leave

	// 工作偏好
	WorkPreferences *WorkPreferences `json:"work_preferences,omitempty" db:"work_preferences"`
}

// WorkPreferences 员工工作偏好
type WorkPreferences struct {
	// 可工作的星期（小写英文：monday...sunday），为空表示每天可用
	AvailableDays []string `json:"available_days,omitempty"`
	// 偏好的班次类型
	PreferredShiftTypes []ShiftType `json:"preferred_shift_types,omitempty"`
	// 期望每周最大班次数
	MaxShiftsPerWeek int `json:"max_shifts_per_week,omitempty"`
}

// FullName 返回"名 姓"格式的全名
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IsActive 检查员工是否在职
func (e *Employee) IsActive() bool {
	return e.Status == "" || e.Status == "active"
}

// IsAvailableOn 检查员工在某个日期是否可用
// 未设置偏好或未限定可用日时默认每天可用
func (e *Employee) IsAvailableOn(date string) bool {
	if e.WorkPreferences == nil || len(e.WorkPreferences.AvailableDays) == 0 {
		return true
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return true
	}

	weekday := strings.ToLower(day.Weekday().String())
	for _, d := range e.WorkPreferences.AvailableDays {
		if strings.ToLower(d) == weekday {
			return true
		}
	}
	return false
}

// PrefersShiftType 检查员工是否偏好某班次类型
func (e *Employee) PrefersShiftType(t ShiftType) bool {
	if e.WorkPreferences == nil || len(e.WorkPreferences.PreferredShiftTypes) == 0 {
		return false
	}
	for _, p := range e.WorkPreferences.PreferredShiftTypes {
		if p == t {
			return true
		}
	}
	return false
}
