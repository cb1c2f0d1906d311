package staffing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

func makeEmployee(first, last, role string) *model.Employee {
	return &model.Employee{
		BaseModel: model.NewBaseModel(),
		FirstName: first,
		LastName:  last,
		Role:      role,
		Status:    "active",
	}
}

func makeShift(t *testing.T, empID uuid.UUID, date string, shiftType model.ShiftType) *model.Shift {
	t.Helper()
	s, err := model.NewShift(empID, date, shiftType, "")
	if err != nil {
		t.Fatalf("NewShift(%s, %s) 出错: %v", date, shiftType, err)
	}
	return s
}

func defaultConfig() Config {
	return Config{
		MinStaff: map[model.ShiftType]int{
			model.ShiftDay:     3,
			model.ShiftEvening: 3,
			model.ShiftNight:   2,
		},
	}
}

func TestBackfiller_FillsToMinimum(t *testing.T) {
	anna := makeEmployee("Anna", "Andersson", model.RoleSjukskoterska)
	britt := makeEmployee("Britt", "Lund", model.RoleSjukskoterska)
	clara := makeEmployee("Clara", "Ek", model.RoleSjukskoterska)
	employees := []*model.Employee{anna, britt, clara}

	// 晚班只有1人，最低3人
	shifts := []*model.Shift{makeShift(t, anna.ID, "2025-11-20", model.ShiftEvening)}

	result := New(defaultConfig()).Fill(shifts, employees)

	evening := 0
	for _, s := range result {
		if s.Date() == "2025-11-20" && s.ShiftType == model.ShiftEvening {
			evening++
		}
	}
	if evening != 3 {
		t.Errorf("补齐后晚班人数 = %d, expected 3", evening)
	}
}

func TestBackfiller_PrefersRoleAffinityPool(t *testing.T) {
	doctor := makeEmployee("Erik", "Larsson", model.RoleLakare)
	nurse := makeEmployee("Britt", "Lund", model.RoleSjukskoterska)
	assistant := makeEmployee("Maria", "Nilsson", model.RoleUnderskoterska)
	employees := []*model.Employee{assistant, nurse, doctor} // 列表顺序故意打乱

	cfg := defaultConfig()
	cfg.MinStaff[model.ShiftDay] = 2
	shifts := []*model.Shift{makeShift(t, nurse.ID, "2025-11-20", model.ShiftDay)}

	result := New(cfg).Fill(shifts, employees)

	if len(result) != 2 {
		t.Fatalf("班次数 = %d, expected 2", len(result))
	}
	// 亲和池（医生→日班）优先于列表更靠前的护理员
	if result[1].EmployeeID != doctor.ID {
		t.Errorf("补齐应优先选择岗位亲和匹配的员工")
	}
}

func TestBackfiller_FallsBackToSecondaryPool(t *testing.T) {
	nurse := makeEmployee("Britt", "Lund", model.RoleSjukskoterska)
	assistant := makeEmployee("Maria", "Nilsson", model.RoleUnderskoterska)
	employees := []*model.Employee{nurse, assistant}

	cfg := defaultConfig()
	cfg.MinStaff[model.ShiftNight] = 2
	shifts := []*model.Shift{makeShift(t, assistant.ID, "2025-11-20", model.ShiftNight)}

	result := New(cfg).Fill(shifts, employees)

	if len(result) != 2 {
		t.Fatalf("班次数 = %d, expected 2（亲和池耗尽后从次选池补齐）", len(result))
	}
	if result[1].EmployeeID != nurse.ID {
		t.Errorf("次选池员工应被补入")
	}
}

func TestBackfiller_NeverDoubleBooks(t *testing.T) {
	anna := makeEmployee("Anna", "Andersson", model.RoleSjukskoterska)
	britt := makeEmployee("Britt", "Lund", model.RoleSjukskoterska)
	employees := []*model.Employee{anna, britt}

	cfg := defaultConfig()
	// Anna当日已有日班，晚班缺口只能补Britt
	shifts := []*model.Shift{
		makeShift(t, anna.ID, "2025-11-20", model.ShiftDay),
		makeShift(t, britt.ID, "2025-11-20", model.ShiftEvening),
	}

	result := New(cfg).Fill(shifts, employees)

	perDay := make(map[uuid.UUID]int)
	for _, s := range result {
		if s.Date() == "2025-11-20" {
			perDay[s.EmployeeID]++
		}
	}
	for empID, n := range perDay {
		if n > 1 {
			t.Errorf("员工 %s 当日班次数 = %d, expected ≤1", empID, n)
		}
	}
}

func TestBackfiller_Monotonic(t *testing.T) {
	anna := makeEmployee("Anna", "Andersson", model.RoleSjukskoterska)
	employees := []*model.Employee{anna}

	shifts := []*model.Shift{
		makeShift(t, anna.ID, "2025-11-20", model.ShiftEvening),
		makeShift(t, anna.ID, "2025-11-21", model.ShiftEvening),
	}

	result := New(defaultConfig()).Fill(shifts, employees)

	// 候选耗尽时不移除任何已有班次
	if len(result) < len(shifts) {
		t.Fatalf("补齐后班次数 = %d, expected ≥ %d", len(result), len(shifts))
	}
	for i, s := range shifts {
		if result[i].ID != s.ID {
			t.Errorf("已有班次不应被改动")
		}
	}
}

func TestBackfiller_OnlyTouchesExistingSlots(t *testing.T) {
	anna := makeEmployee("Anna", "Andersson", model.RoleSjukskoterska)
	britt := makeEmployee("Britt", "Lund", model.RoleUnderskoterska)
	employees := []*model.Employee{anna, britt}

	// 只有晚班出现过：夜班/日班不应凭空产生
	shifts := []*model.Shift{makeShift(t, anna.ID, "2025-11-20", model.ShiftEvening)}

	result := New(defaultConfig()).Fill(shifts, employees)

	for _, s := range result {
		if s.ShiftType != model.ShiftEvening {
			t.Errorf("未出现过的槽位不应被补齐: %s", s.ShiftType)
		}
	}
}

func TestBackfiller_SkipsInactiveEmployees(t *testing.T) {
	anna := makeEmployee("Anna", "Andersson", model.RoleSjukskoterska)
	leave := makeEmployee("Britt", "Lund", model.RoleSjukskoterska)
	leave.Status = "leave"
	employees := []*model.Employee{anna, leave}

	cfg := defaultConfig()
	shifts := []*model.Shift{makeShift(t, anna.ID, "2025-11-20", model.ShiftEvening)}

	result := New(cfg).Fill(shifts, employees)

	for _, s := range result {
		if s.EmployeeID == leave.ID {
			t.Errorf("休假员工不应被补入")
		}
	}
}
