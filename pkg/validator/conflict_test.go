package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

func makeShift(t *testing.T, empID uuid.UUID, date string, shiftType model.ShiftType) *model.Shift {
	t.Helper()
	s, err := model.NewShift(empID, date, shiftType, "")
	if err != nil {
		t.Fatalf("NewShift(%s, %s) 出错: %v", date, shiftType, err)
	}
	return s
}

func hasConflict(conflicts []Conflict, conflictType ConflictType) bool {
	for _, c := range conflicts {
		if c.Type == conflictType {
			return true
		}
	}
	return false
}

func TestConflictDetector_CleanSchedule(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())
	empID := uuid.New()
	employees := map[uuid.UUID]*model.Employee{
		empID: {BaseModel: model.BaseModel{ID: empID}, FirstName: "Anna", LastName: "Andersson"},
	}

	shifts := []*model.Shift{
		makeShift(t, empID, "2025-11-20", model.ShiftDay),
		makeShift(t, empID, "2025-11-21", model.ShiftDay),
	}

	conflicts := detector.DetectAll(shifts, employees)

	if len(conflicts) != 0 {
		t.Errorf("正常排班冲突数 = %d, expected 0", len(conflicts))
		for _, c := range conflicts {
			t.Logf("冲突: %s", c.Message)
		}
	}
}

func TestConflictDetector_DuplicateDay(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())
	empID := uuid.New()
	employees := map[uuid.UUID]*model.Employee{
		empID: {BaseModel: model.BaseModel{ID: empID}, FirstName: "Anna", LastName: "Andersson"},
	}

	shifts := []*model.Shift{
		makeShift(t, empID, "2025-11-20", model.ShiftDay),
		makeShift(t, empID, "2025-11-20", model.ShiftEvening),
	}

	conflicts := detector.DetectAll(shifts, employees)

	if !hasConflict(conflicts, ConflictDuplicateDay) {
		t.Error("应检测到同日多班次冲突")
	}
}

func TestConflictDetector_Overlap(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())
	empID := uuid.New()
	employees := map[uuid.UUID]*model.Employee{
		empID: {BaseModel: model.BaseModel{ID: empID}, FirstName: "Anna", LastName: "Andersson"},
	}

	// 夜班 23:00-次日07:00 与次日日班 07:00 不重叠但休息为0
	night := makeShift(t, empID, "2025-11-20", model.ShiftNight)
	day := makeShift(t, empID, "2025-11-21", model.ShiftDay)

	conflicts := detector.DetectAll([]*model.Shift{night, day}, employees)

	if hasConflict(conflicts, ConflictOverlap) {
		t.Error("首尾相接的班次不应判为重叠")
	}
	if !hasConflict(conflicts, ConflictRestTime) {
		t.Error("应检测到休息时间不足")
	}
}

func TestConflictDetector_RestTime(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())
	empID := uuid.New()
	employees := map[uuid.UUID]*model.Employee{
		empID: {BaseModel: model.BaseModel{ID: empID}, FirstName: "Erik", LastName: "Larsson"},
	}

	// 晚班 23:00 结束，次日日班 07:00 开始：休息8小时 < 11
	evening := makeShift(t, empID, "2025-11-20", model.ShiftEvening)
	day := makeShift(t, empID, "2025-11-21", model.ShiftDay)

	conflicts := detector.DetectAll([]*model.Shift{evening, day}, employees)

	if !hasConflict(conflicts, ConflictRestTime) {
		t.Error("应检测到休息时间不足")
	}
}

func TestConflictDetector_ConsecutiveOverrun(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())
	empID := uuid.New()
	employees := map[uuid.UUID]*model.Employee{
		empID: {BaseModel: model.BaseModel{ID: empID}, FirstName: "Maria", LastName: "Nilsson"},
	}

	var shifts []*model.Shift
	for _, d := range []string{"2025-11-17", "2025-11-18", "2025-11-19", "2025-11-20", "2025-11-21", "2025-11-22"} {
		shifts = append(shifts, makeShift(t, empID, d, model.ShiftDay))
	}

	conflicts := detector.DetectAll(shifts, employees)

	if !hasConflict(conflicts, ConflictConsecutive) {
		t.Error("连续6天应检测到超限")
	}

	var overrun *Conflict
	for i := range conflicts {
		if conflicts[i].Type == ConflictConsecutive {
			overrun = &conflicts[i]
		}
	}
	if overrun != nil && overrun.Date != "2025-11-17" {
		t.Errorf("超限段起始日期 = %s, expected 2025-11-17", overrun.Date)
	}
}

func TestConflictDetector_UnavailableDay(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())
	empID := uuid.New()
	employees := map[uuid.UUID]*model.Employee{
		empID: {
			BaseModel: model.BaseModel{ID: empID},
			FirstName: "Anna",
			LastName:  "Andersson",
			WorkPreferences: &model.WorkPreferences{
				AvailableDays: []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			},
		},
	}

	// 2025-11-22 为周六
	shifts := []*model.Shift{makeShift(t, empID, "2025-11-22", model.ShiftDay)}

	conflicts := detector.DetectAll(shifts, employees)

	if !hasConflict(conflicts, ConflictAvailability) {
		t.Error("不可用日排班应产生警告")
	}
	for _, c := range conflicts {
		if c.Type == ConflictAvailability && c.Severity != "warning" {
			t.Errorf("可用性冲突级别 = %s, expected warning", c.Severity)
		}
	}
}

func TestConflictDetector_UnknownEmployee(t *testing.T) {
	detector := NewConflictDetector(DefaultDetectorConfig())
	empID := uuid.New()

	// 员工目录缺失时仍能检测
	shifts := []*model.Shift{
		makeShift(t, empID, "2025-11-20", model.ShiftDay),
		makeShift(t, empID, "2025-11-20", model.ShiftEvening),
	}

	conflicts := detector.DetectAll(shifts, map[uuid.UUID]*model.Employee{})

	if !hasConflict(conflicts, ConflictDuplicateDay) {
		t.Error("员工目录缺失时应仍检测到冲突")
	}
}

func TestDefaultDetectorConfig(t *testing.T) {
	config := DefaultDetectorConfig()

	if config.MinRestHours != 11 {
		t.Errorf("MinRestHours = %d, expected 11", config.MinRestHours)
	}
	if config.MaxConsecutiveDays != 5 {
		t.Errorf("MaxConsecutiveDays = %d, expected 5", config.MaxConsecutiveDays)
	}
	if !config.CheckAvailability {
		t.Error("默认应检查周可用性")
	}
}
