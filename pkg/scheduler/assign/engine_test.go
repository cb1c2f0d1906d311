package assign

import (
	"testing"

	"github.com/vardschema/vardschema/pkg/model"
)

func makeEmployee(first, last, role string, experience int) *model.Employee {
	return &model.Employee{
		BaseModel:       model.NewBaseModel(),
		FirstName:       first,
		LastName:        last,
		Role:            role,
		ExperienceLevel: experience,
		Status:          "active",
	}
}

func countByDate(shifts []*model.Shift) map[string]int {
	counts := make(map[string]int)
	for _, s := range shifts {
		counts[s.Date()]++
	}
	return counts
}

func TestEngine_UnderstaffedSlotAssignsAllAvailable(t *testing.T) {
	// 7天、2名医生、日班最低3人：每天都分配两人并记录缺口
	cfg := Config{
		Affinity:           []AffinityEntry{{Role: model.RoleLakare, ShiftType: model.ShiftDay}},
		MinStaff:           map[model.ShiftType]int{model.ShiftDay: 3},
		OverstaffCap:       3,
		MaxConsecutiveDays: 0, // 本场景不限制连续天数
		MinRestHours:       11,
	}
	employees := []*model.Employee{
		makeEmployee("Anna", "Andersson", model.RoleLakare, 3),
		makeEmployee("Erik", "Larsson", model.RoleLakare, 4),
	}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-16"}

	result, err := New(cfg).Generate(employees, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	if len(result.Shifts) != 14 {
		t.Errorf("班次数 = %d, expected 14（2人×7天）", len(result.Shifts))
	}
	for date, n := range countByDate(result.Shifts) {
		if n != 2 {
			t.Errorf("日期 %s 班次数 = %d, expected 2", date, n)
		}
	}

	if len(result.Issues) != 7 {
		t.Fatalf("缺口数 = %d, expected 7", len(result.Issues))
	}
	for _, issue := range result.Issues {
		if issue.Current != 2 || issue.Required != 3 {
			t.Errorf("缺口 %s: current=%d required=%d, expected 2/3", issue.Date, issue.Current, issue.Required)
		}
		if issue.Shortage() != 1 {
			t.Errorf("缺口人数 = %d, expected 1", issue.Shortage())
		}
	}
}

func TestEngine_ProducesSixDayRunForCapper(t *testing.T) {
	// 引擎只排除已超限的连续段：默认配置下单名员工可被连排6天，
	// 第7天起被拒绝，超限部分由后处理截断负责
	cfg := Config{
		Affinity:           []AffinityEntry{{Role: model.RoleLakare, ShiftType: model.ShiftDay}},
		MinStaff:           map[model.ShiftType]int{model.ShiftDay: 1},
		OverstaffCap:       1,
		MaxConsecutiveDays: 5,
		MinRestHours:       11,
	}
	employees := []*model.Employee{makeEmployee("Anna", "Andersson", model.RoleLakare, 3)}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-16"}

	result, err := New(cfg).Generate(employees, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	if len(result.Shifts) != 6 {
		t.Fatalf("班次数 = %d, expected 6（第7天起连续段超限）", len(result.Shifts))
	}
	for i, date := range []string{"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13", "2025-11-14", "2025-11-15"} {
		if result.Shifts[i].Date() != date {
			t.Errorf("第%d个班次日期 = %s, expected %s", i+1, result.Shifts[i].Date(), date)
		}
	}
}

func TestEngine_RoleAffinityRouting(t *testing.T) {
	// 岗位亲和：医生→日班，护士→晚班，护理员→夜班，教授→日班
	employees := []*model.Employee{
		makeEmployee("Anna", "Andersson", model.RoleSjukskoterska, 3),
		makeEmployee("Erik", "Larsson", model.RoleLakare, 4),
		makeEmployee("Maria", "Nilsson", model.RoleUnderskoterska, 2),
		makeEmployee("Lars", "Berg", model.RoleProfessor, 5),
	}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-10"}

	result, err := New(DefaultConfig()).Generate(employees, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	byType := make(map[model.ShiftType]int)
	for _, s := range result.Shifts {
		byType[s.ShiftType]++
	}
	if byType[model.ShiftDay] != 2 {
		t.Errorf("日班数 = %d, expected 2（医生+教授）", byType[model.ShiftDay])
	}
	if byType[model.ShiftEvening] != 1 {
		t.Errorf("晚班数 = %d, expected 1", byType[model.ShiftEvening])
	}
	if byType[model.ShiftNight] != 1 {
		t.Errorf("夜班数 = %d, expected 1", byType[model.ShiftNight])
	}
}

func TestEngine_OverstaffCapLimitsNightShift(t *testing.T) {
	// 夜班最低2人，候选5人时机会性超配到上限3人
	var employees []*model.Employee
	for i, last := range []string{"Nilsson", "Berg", "Lund", "Ek", "Holm"} {
		employees = append(employees, makeEmployee("U", last, model.RoleUnderskoterska, i+1))
	}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-10"}

	result, err := New(DefaultConfig()).Generate(employees, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	night := 0
	for _, s := range result.Shifts {
		if s.ShiftType == model.ShiftNight {
			night++
		}
	}
	if night != 3 {
		t.Errorf("夜班分配数 = %d, expected 3（最低2人超配到上限3）", night)
	}
}

func TestEngine_SortPrefersLowCountThenExperience(t *testing.T) {
	// 同等负载下经验高者优先
	junior := makeEmployee("Anna", "Andersson", model.RoleLakare, 1)
	senior := makeEmployee("Erik", "Larsson", model.RoleLakare, 5)
	cfg := Config{
		Affinity:     []AffinityEntry{{Role: model.RoleLakare, ShiftType: model.ShiftDay}},
		MinStaff:     map[model.ShiftType]int{model.ShiftDay: 1},
		OverstaffCap: 1,
		MinRestHours: 11,
	}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-11"}

	result, err := New(cfg).Generate([]*model.Employee{junior, senior}, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	if len(result.Shifts) != 2 {
		t.Fatalf("班次数 = %d, expected 2", len(result.Shifts))
	}
	// 第一天经验高者优先，第二天轮到负载少的另一人
	if result.Shifts[0].EmployeeID != senior.ID {
		t.Errorf("第一天应分配经验高者")
	}
	if result.Shifts[1].EmployeeID != junior.ID {
		t.Errorf("第二天应分配负载少者")
	}
}

func TestEngine_HardConstraintBlocksAssignment(t *testing.T) {
	anna := makeEmployee("Anna", "Andersson", model.RoleLakare, 3)
	erik := makeEmployee("Erik", "Larsson", model.RoleLakare, 5)
	annaID := anna.ID

	blocked := &model.ParsedConstraint{
		Type:       model.ConstraintBlockedSlot,
		Category:   model.ConstraintHard,
		EmployeeID: &annaID,
		Dates:      []string{"2025-11-10"},
		ShiftTypes: []model.ShiftType{model.ShiftDay},
	}
	cfg := Config{
		Affinity:     []AffinityEntry{{Role: model.RoleLakare, ShiftType: model.ShiftDay}},
		MinStaff:     map[model.ShiftType]int{model.ShiftDay: 1},
		OverstaffCap: 1,
	}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-10"}

	result, err := New(cfg).Generate([]*model.Employee{anna, erik}, dateRange, []*model.ParsedConstraint{blocked})
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	if len(result.Shifts) != 1 {
		t.Fatalf("班次数 = %d, expected 1", len(result.Shifts))
	}
	if result.Shifts[0].EmployeeID != erik.ID {
		t.Errorf("硬约束封锁的员工不应被分配")
	}
}

func TestEngine_SoftConstraintDeprioritizes(t *testing.T) {
	// 软约束不否决分配，只降权：命中者在候选不足时仍可被分配
	anna := makeEmployee("Anna", "Andersson", model.RoleLakare, 5)
	erik := makeEmployee("Erik", "Larsson", model.RoleLakare, 1)
	annaID := anna.ID

	soft := &model.ParsedConstraint{
		Type:       model.ConstraintShiftPreference,
		Category:   model.ConstraintSoft,
		EmployeeID: &annaID,
		ShiftTypes: []model.ShiftType{model.ShiftDay},
	}
	cfg := Config{
		Affinity:     []AffinityEntry{{Role: model.RoleLakare, ShiftType: model.ShiftDay}},
		MinStaff:     map[model.ShiftType]int{model.ShiftDay: 1},
		OverstaffCap: 1,
	}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-10"}

	result, err := New(cfg).Generate([]*model.Employee{anna, erik}, dateRange, []*model.ParsedConstraint{soft})
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	// 经验高的Anna因软约束降权，低经验的Erik被选中
	if len(result.Shifts) != 1 || result.Shifts[0].EmployeeID != erik.ID {
		t.Errorf("软约束命中者应被降权")
	}
}

func TestEngine_ZeroEligibleRecordsIssue(t *testing.T) {
	// 夜班无护理员：记录 current=0 的缺口后继续
	employees := []*model.Employee{makeEmployee("Erik", "Larsson", model.RoleLakare, 4)}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-10"}

	result, err := New(DefaultConfig()).Generate(employees, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	var nightIssue *model.StaffingIssue
	for i := range result.Issues {
		if result.Issues[i].ShiftType == model.ShiftNight {
			nightIssue = &result.Issues[i]
		}
	}
	if nightIssue == nil {
		t.Fatal("夜班无候选时应记录缺口")
	}
	if nightIssue.Current != 0 || nightIssue.Required != 2 {
		t.Errorf("夜班缺口 current=%d required=%d, expected 0/2", nightIssue.Current, nightIssue.Required)
	}
}

func TestEngine_InvalidInput(t *testing.T) {
	engine := New(DefaultConfig())
	employees := []*model.Employee{makeEmployee("Anna", "Andersson", model.RoleLakare, 3)}

	if _, err := engine.Generate(employees, model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-01"}, nil); err == nil {
		t.Errorf("倒置的日期范围应返回错误")
	}
	if _, err := engine.Generate(nil, model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-11"}, nil); err == nil {
		t.Errorf("空员工列表应返回错误")
	}
}

func TestEngine_Deterministic(t *testing.T) {
	employees := []*model.Employee{
		makeEmployee("Anna", "Andersson", model.RoleSjukskoterska, 3),
		makeEmployee("Erik", "Larsson", model.RoleLakare, 4),
		makeEmployee("Maria", "Nilsson", model.RoleUnderskoterska, 2),
	}
	dateRange := model.DateRange{StartDate: "2025-11-10", EndDate: "2025-11-14"}
	engine := New(DefaultConfig())

	first, err := engine.Generate(employees, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}
	second, err := engine.Generate(employees, dateRange, nil)
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}

	if len(first.Shifts) != len(second.Shifts) {
		t.Fatalf("两次运行班次数不一致: %d vs %d", len(first.Shifts), len(second.Shifts))
	}
	for i := range first.Shifts {
		a, b := first.Shifts[i], second.Shifts[i]
		if a.EmployeeID != b.EmployeeID || a.ShiftType != b.ShiftType || !a.StartTime.Equal(b.StartTime) {
			t.Errorf("第%d个班次不一致", i+1)
		}
	}
}
