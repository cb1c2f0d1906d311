// Package staffing 实现最低人员配置补齐
package staffing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
)

// Config 补齐配置
type Config struct {
	// 每种班次的最低人数
	MinStaff map[model.ShiftType]int
	// 岗位到班次类型的亲和映射（优先候选池）
	Affinity map[string]model.ShiftType
	// 新建班次的部门（为空时取员工所在部门）
	Department string
}

// DefaultAffinityMap 默认岗位亲和映射
func DefaultAffinityMap() map[string]model.ShiftType {
	return map[string]model.ShiftType{
		model.RoleLakare:         model.ShiftDay,
		model.RoleSjukskoterska:  model.ShiftEvening,
		model.RoleUnderskoterska: model.ShiftNight,
		model.RoleProfessor:      model.ShiftDay,
	}
}

// Backfiller 最低人员配置补齐器
type Backfiller struct {
	cfg    Config
	logger *logger.SchedulerLogger
}

// New 创建补齐器
func New(cfg Config) *Backfiller {
	if cfg.Affinity == nil {
		cfg.Affinity = DefaultAffinityMap()
	}
	return &Backfiller{
		cfg:    cfg,
		logger: logger.NewSchedulerLogger(),
	}
}

// slotKey 补齐槽位（日期 + 班次类型）
type slotKey struct {
	date      string
	shiftType model.ShiftType
}

// Fill 将已有班次列表中不足最低人数的槽位补齐
// 只处理已出现过班次的（日期, 班次类型）组合；只增不减
func (b *Backfiller) Fill(shifts []*model.Shift, employees []*model.Employee) []*model.Shift {
	result := make([]*model.Shift, len(shifts))
	copy(result, shifts)

	counts := make(map[slotKey]int)
	assignedByDay := make(map[string]map[uuid.UUID]bool)
	for _, s := range shifts {
		date := s.Date()
		counts[slotKey{date: date, shiftType: s.ShiftType}]++
		if assignedByDay[date] == nil {
			assignedByDay[date] = make(map[uuid.UUID]bool)
		}
		assignedByDay[date][s.EmployeeID] = true
	}

	for _, key := range sortedSlots(counts) {
		minimum := b.cfg.MinStaff[key.shiftType]
		needed := minimum - counts[key]
		if needed <= 0 {
			continue
		}

		// 优先池：岗位亲和匹配的员工；次选池：其余当日未分配员工
		var primary, secondary []*model.Employee
		for _, emp := range employees {
			if !emp.IsActive() {
				continue
			}
			if b.cfg.Affinity[emp.Role] == key.shiftType {
				primary = append(primary, emp)
			} else {
				secondary = append(secondary, emp)
			}
		}

		added := 0
		for _, pool := range [][]*model.Employee{primary, secondary} {
			for _, emp := range pool {
				if added >= needed {
					break
				}
				if assignedByDay[key.date][emp.ID] {
					continue
				}
				shift, err := model.NewShift(emp.ID, key.date, key.shiftType, b.department(emp))
				if err != nil {
					continue
				}
				result = append(result, shift)
				if assignedByDay[key.date] == nil {
					assignedByDay[key.date] = make(map[uuid.UUID]bool)
				}
				assignedByDay[key.date][emp.ID] = true
				added++
			}
		}

		if added < needed {
			b.logger.StaffingShortfall(key.date, string(key.shiftType), counts[key]+added, minimum)
		}
	}

	return result
}

// sortedSlots 按（日期升序, 班次类型固定顺序）返回槽位
func sortedSlots(counts map[slotKey]int) []slotKey {
	typeOrder := map[model.ShiftType]int{}
	for i, t := range model.AllShiftTypes() {
		typeOrder[t] = i
	}

	keys := make([]slotKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return typeOrder[keys[i].shiftType] < typeOrder[keys[j].shiftType]
	})
	return keys
}

// department 确定补齐班次的部门
func (b *Backfiller) department(emp *model.Employee) string {
	if b.cfg.Department != "" {
		return b.cfg.Department
	}
	return emp.Department
}
