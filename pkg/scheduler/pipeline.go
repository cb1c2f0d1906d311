// Package scheduler 将排班流水线的各阶段串联为一次完整运行
//
// 流水线为严格线性：分配 → 补齐 → 去重/截断，各阶段只通过
// 显式的列表交接传递数据，阶段之间无共享可变状态。
package scheduler

import (
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
	"github.com/vardschema/vardschema/pkg/scheduler/assign"
	"github.com/vardschema/vardschema/pkg/scheduler/postprocess"
	"github.com/vardschema/vardschema/pkg/scheduler/staffing"
)

// Result 一次完整流水线运行的输出
type Result struct {
	RunID      string                `json:"run_id"`
	Shifts     []*model.Shift        `json:"shifts"`
	Issues     []model.StaffingIssue `json:"staffing_issues"`
	Statistics *assign.Statistics    `json:"statistics"`
	Duration   time.Duration         `json:"duration"`
}

// Pipeline 排班流水线
type Pipeline struct {
	engine     *assign.Engine
	backfiller *staffing.Backfiller
	post       *postprocess.Processor
	logger     *logger.SchedulerLogger
}

// New 按引擎配置构建流水线，补齐与截断阶段复用同一套参数
func New(cfg assign.Config) *Pipeline {
	if len(cfg.Affinity) == 0 {
		cfg.Affinity = assign.DefaultAffinity()
	}

	affinityMap := make(map[string]model.ShiftType, len(cfg.Affinity))
	for _, entry := range cfg.Affinity {
		if _, ok := affinityMap[entry.Role]; !ok {
			affinityMap[entry.Role] = entry.ShiftType
		}
	}

	return &Pipeline{
		engine: assign.New(cfg),
		backfiller: staffing.New(staffing.Config{
			MinStaff:   cfg.MinStaff,
			Affinity:   affinityMap,
			Department: cfg.Department,
		}),
		post:   postprocess.New(cfg.MaxConsecutiveDays),
		logger: logger.NewSchedulerLogger(),
	}
}

// Run 执行一次完整排班
// 人员缺口作为数据随结果返回，不构成错误
func (p *Pipeline) Run(employees []*model.Employee, dateRange model.DateRange, constraints []*model.ParsedConstraint) (*Result, error) {
	startTime := time.Now()
	runID := uuid.New().String()

	engineResult, err := p.engine.Generate(employees, dateRange, constraints)
	if err != nil {
		return nil, err
	}

	shifts := p.backfiller.Fill(engineResult.Shifts, employees)
	shifts = p.post.Apply(shifts)

	result := &Result{
		RunID:      runID,
		Shifts:     shifts,
		Issues:     engineResult.Issues,
		Statistics: engineResult.Statistics,
		Duration:   time.Since(startTime),
	}
	result.Statistics.TotalShifts = len(shifts)

	p.logger.RunComplete(runID, len(shifts), len(result.Issues), result.Duration)
	return result, nil
}
