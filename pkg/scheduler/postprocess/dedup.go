// Package postprocess 实现排班结果的去重与连续天数截断
//
// 纠正性过滤器：只会缩小班次列表，不会失败，也不会拒绝输入。
// 对自身输出再次运行得到相同结果（幂等）。
package postprocess

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

// Processor 去重与连续天数截断处理器
type Processor struct {
	maxConsecutiveDays int
}

// New 创建处理器
func New(maxConsecutiveDays int) *Processor {
	return &Processor{maxConsecutiveDays: maxConsecutiveDays}
}

// Apply 修正班次列表使其满足两个不变式：
// 每名员工每个日历日至多一个班次；每段连续工作日不超过上限。
func (p *Processor) Apply(shifts []*model.Shift) []*model.Shift {
	if len(shifts) == 0 {
		return []*model.Shift{}
	}

	// 排序键显式且全序：开始时间升序，班次ID升序兜底，
	// 保证"先到先留"的去重结果确定可复现
	sorted := make([]*model.Shift, len(shifts))
	copy(sorted, shifts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	// 每名员工每个日期只保留首个班次
	type empDate struct {
		empID uuid.UUID
		date  string
	}
	seen := make(map[empDate]bool)
	kept := make([]*model.Shift, 0, len(sorted))
	byEmployee := make(map[uuid.UUID][]*model.Shift)

	for _, s := range sorted {
		key := empDate{empID: s.EmployeeID, date: s.Date()}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, s)
		byEmployee[s.EmployeeID] = append(byEmployee[s.EmployeeID], s)
	}

	if p.maxConsecutiveDays <= 0 {
		return kept
	}

	// 识别每名员工的极大连续日期段，超限段只保留前 maxConsecutiveDays 天
	drop := make(map[uuid.UUID]bool)
	for _, empShifts := range byEmployee {
		runLen := 0
		var prevDate string
		for _, s := range empShifts {
			date := s.Date()
			if prevDate != "" && date == nextDate(prevDate) {
				runLen++
			} else {
				runLen = 1
			}
			prevDate = date

			if runLen > p.maxConsecutiveDays {
				drop[s.ID] = true
			}
		}
	}

	if len(drop) == 0 {
		return kept
	}

	result := make([]*model.Shift, 0, len(kept)-len(drop))
	for _, s := range kept {
		if !drop[s.ID] {
			result = append(result, s)
		}
	}
	return result
}

// nextDate 获取后一天日期
func nextDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, 1).Format("2006-01-02")
}
