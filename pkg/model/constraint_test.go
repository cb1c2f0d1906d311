package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestParsedConstraint_AppliesTo(t *testing.T) {
	empID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name       string
		constraint ParsedConstraint
		employeeID uuid.UUID
		date       string
		shiftType  ShiftType
		expected   bool
	}{
		{
			name: "命中日期和班次",
			constraint: ParsedConstraint{
				Type:       ConstraintBlockedSlot,
				EmployeeID: &empID,
				Dates:      []string{"2025-11-20"},
				ShiftTypes: []ShiftType{ShiftNight},
			},
			employeeID: empID,
			date:       "2025-11-20",
			shiftType:  ShiftNight,
			expected:   true,
		},
		{
			name: "日期不匹配",
			constraint: ParsedConstraint{
				Type:       ConstraintBlockedSlot,
				EmployeeID: &empID,
				Dates:      []string{"2025-11-20"},
				ShiftTypes: []ShiftType{ShiftNight},
			},
			employeeID: empID,
			date:       "2025-11-21",
			shiftType:  ShiftNight,
			expected:   false,
		},
		{
			name: "员工不匹配",
			constraint: ParsedConstraint{
				Type:       ConstraintBlockedSlot,
				EmployeeID: &empID,
				Dates:      []string{"2025-11-20"},
			},
			employeeID: otherID,
			date:       "2025-11-20",
			shiftType:  ShiftDay,
			expected:   false,
		},
		{
			name: "空班次集合命中全部班次",
			constraint: ParsedConstraint{
				Type:       ConstraintBlockedSlot,
				EmployeeID: &empID,
				Dates:      []string{"2025-11-20"},
			},
			employeeID: empID,
			date:       "2025-11-20",
			shiftType:  ShiftEvening,
			expected:   true,
		},
		{
			name: "长期偏好对任意日期生效",
			constraint: ParsedConstraint{
				Type:       ConstraintShiftPreference,
				EmployeeID: &empID,
				ShiftTypes: []ShiftType{ShiftNight},
			},
			employeeID: empID,
			date:       "2026-01-15",
			shiftType:  ShiftNight,
			expected:   true,
		},
		{
			name: "未解析员工不生效",
			constraint: ParsedConstraint{
				Type:  ConstraintBlockedSlot,
				Dates: []string{"2025-11-20"},
			},
			employeeID: empID,
			date:       "2025-11-20",
			shiftType:  ShiftDay,
			expected:   false,
		},
		{
			name: "unknown类型不生效",
			constraint: ParsedConstraint{
				Type:       ConstraintUnknown,
				EmployeeID: &empID,
			},
			employeeID: empID,
			date:       "2025-11-20",
			shiftType:  ShiftDay,
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.constraint.AppliesTo(tt.employeeID, tt.date, tt.shiftType)
			if result != tt.expected {
				t.Errorf("AppliesTo() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestParsedConstraint_IsHard(t *testing.T) {
	hard := &ParsedConstraint{Category: ConstraintHard}
	soft := &ParsedConstraint{Category: ConstraintSoft}

	if !hard.IsHard() {
		t.Errorf("硬约束应返回 true")
	}
	if soft.IsHard() {
		t.Errorf("软约束应返回 false")
	}
}
