package postprocess

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

func datesOf(shifts []*model.Shift) []string {
	var dates []string
	for _, s := range shifts {
		dates = append(dates, s.Date())
	}
	return dates
}

func TestProcessor_OneShiftPerDay(t *testing.T) {
	empID := uuid.New()
	day := makeShift(t, empID, "2025-11-20", model.ShiftDay)
	evening := makeShift(t, empID, "2025-11-20", model.ShiftEvening)

	result := New(5).Apply([]*model.Shift{evening, day})

	if len(result) != 1 {
		t.Fatalf("班次数 = %d, expected 1", len(result))
	}
	// 按开始时间排序后先到先留：日班 07:00 早于晚班 15:00
	if result[0].ID != day.ID {
		t.Errorf("应保留开始时间更早的班次")
	}
}

func TestProcessor_SixDayRunTruncatedToFive(t *testing.T) {
	empID := uuid.New()
	var shifts []*model.Shift
	dates := []string{"2025-11-17", "2025-11-18", "2025-11-19", "2025-11-20", "2025-11-21", "2025-11-22"}
	for _, d := range dates {
		shifts = append(shifts, makeShift(t, empID, d, model.ShiftDay))
	}

	result := New(5).Apply(shifts)

	if len(result) != 5 {
		t.Fatalf("班次数 = %d, expected 5", len(result))
	}
	for i, expected := range dates[:5] {
		if result[i].Date() != expected {
			t.Errorf("第%d天 = %s, expected %s", i+1, result[i].Date(), expected)
		}
	}
	// 第6天的班次不在输出中
	for _, s := range result {
		if s.Date() == "2025-11-22" {
			t.Errorf("超限日期 2025-11-22 不应出现在输出中")
		}
	}
}

func TestProcessor_GapBreaksRun(t *testing.T) {
	empID := uuid.New()
	var shifts []*model.Shift
	// 5天 + 断档1天 + 5天：两段都在上限内
	for _, d := range []string{"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13", "2025-11-14",
		"2025-11-16", "2025-11-17", "2025-11-18", "2025-11-19", "2025-11-20"} {
		shifts = append(shifts, makeShift(t, empID, d, model.ShiftNight))
	}

	result := New(5).Apply(shifts)

	if len(result) != 10 {
		t.Errorf("班次数 = %d, expected 10（断档重置连续计数）: %v", len(result), datesOf(result))
	}
}

func TestProcessor_LongRunDropsEntireTail(t *testing.T) {
	empID := uuid.New()
	var shifts []*model.Shift
	for _, d := range []string{"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13",
		"2025-11-14", "2025-11-15", "2025-11-16", "2025-11-17"} {
		shifts = append(shifts, makeShift(t, empID, d, model.ShiftDay))
	}

	result := New(5).Apply(shifts)

	// 8天连续段整个尾部被丢弃，而不是截断后再形成新段
	if len(result) != 5 {
		t.Fatalf("班次数 = %d, expected 5: %v", len(result), datesOf(result))
	}
	if result[len(result)-1].Date() != "2025-11-14" {
		t.Errorf("最后保留日期 = %s, expected 2025-11-14", result[len(result)-1].Date())
	}
}

func TestProcessor_Idempotent(t *testing.T) {
	empA := uuid.New()
	empB := uuid.New()
	var shifts []*model.Shift
	for _, d := range []string{"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13", "2025-11-14", "2025-11-15"} {
		shifts = append(shifts, makeShift(t, empA, d, model.ShiftDay))
	}
	shifts = append(shifts, makeShift(t, empB, "2025-11-10", model.ShiftNight))
	shifts = append(shifts, makeShift(t, empB, "2025-11-10", model.ShiftDay))

	p := New(5)
	first := p.Apply(shifts)
	second := p.Apply(first)

	if len(first) != len(second) {
		t.Fatalf("两次运行班次数不一致: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("第%d个班次不一致（应为不动点）", i+1)
		}
	}
}

func TestProcessor_MultipleEmployeesIndependent(t *testing.T) {
	empA := uuid.New()
	empB := uuid.New()
	var shifts []*model.Shift
	// A连续6天超限，B只工作3天
	for _, d := range []string{"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13", "2025-11-14", "2025-11-15"} {
		shifts = append(shifts, makeShift(t, empA, d, model.ShiftDay))
	}
	for _, d := range []string{"2025-11-10", "2025-11-11", "2025-11-12"} {
		shifts = append(shifts, makeShift(t, empB, d, model.ShiftEvening))
	}

	result := New(5).Apply(shifts)

	counts := make(map[uuid.UUID]int)
	for _, s := range result {
		counts[s.EmployeeID]++
	}
	if counts[empA] != 5 {
		t.Errorf("员工A班次数 = %d, expected 5", counts[empA])
	}
	if counts[empB] != 3 {
		t.Errorf("员工B班次数 = %d, expected 3", counts[empB])
	}
}

func TestProcessor_EmptyAndDisabled(t *testing.T) {
	if result := New(5).Apply(nil); len(result) != 0 {
		t.Errorf("空输入应返回空列表")
	}

	// 上限为0表示不截断，只去重
	empID := uuid.New()
	var shifts []*model.Shift
	for _, d := range []string{"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13",
		"2025-11-14", "2025-11-15", "2025-11-16"} {
		shifts = append(shifts, makeShift(t, empID, d, model.ShiftDay))
	}
	if result := New(0).Apply(shifts); len(result) != 7 {
		t.Errorf("上限为0时班次数 = %d, expected 7", len(result))
	}
}
