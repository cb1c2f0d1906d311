// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/internal/metrics"
	"github.com/vardschema/vardschema/pkg/errors"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
	"github.com/vardschema/vardschema/pkg/stats"
)

// StatsHandler 统计分析处理器
type StatsHandler struct {
	minStaff map[model.ShiftType]int
}

// NewStatsHandler 创建统计分析处理器
func NewStatsHandler(minStaff map[model.ShiftType]int) *StatsHandler {
	return &StatsHandler{minStaff: minStaff}
}

// StatsRequest 统计请求
type StatsRequest struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Department string          `json:"department,omitempty"`
	Employees  []EmployeeInput `json:"employees"`
	Shifts     []ShiftInput    `json:"shifts"`
}

// CoverageResponse 覆盖率响应
type CoverageResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.CoverageMetrics `json:"data,omitempty"`
}

// FairnessResponse 公平性响应
type FairnessResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.FairnessMetrics `json:"data,omitempty"`
}

// Coverage 覆盖率分析API
func (h *StatsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	req, shifts, _, appErr := h.decodeStatsRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	logger.Info().
		Str("start", req.StartDate).Str("end", req.EndDate).
		Int("shifts", len(shifts)).
		Msg("覆盖率分析请求")

	analyzer := stats.NewCoverageAnalyzer(h.minStaff)
	m := analyzer.Analyze(shifts, model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate})

	metrics.SetCoverageRate(req.Department, m.OverallCoverage)

	respondJSON(w, http.StatusOK, CoverageResponse{Success: true, Data: m})
}

// Fairness 公平性分析API
func (h *StatsHandler) Fairness(w http.ResponseWriter, r *http.Request) {
	req, shifts, employees, appErr := h.decodeStatsRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	logger.Info().
		Int("employees", len(employees)).
		Int("shifts", len(shifts)).
		Msg("公平性分析请求")

	analyzer := stats.NewFairnessAnalyzer()
	m := analyzer.Analyze(shifts, employees)

	metrics.SetFairnessGini(req.Department, "workload", m.WorkloadGini)
	metrics.SetFairnessGini(req.Department, "night_shifts", m.NightShiftGini)

	respondJSON(w, http.StatusOK, FairnessResponse{Success: true, Data: m})
}

// decodeStatsRequest 解码统计请求并转换领域模型
func (h *StatsHandler) decodeStatsRequest(r *http.Request) (*StatsRequest, []*model.Shift, []*model.Employee, *errors.AppError) {
	if r.Method != http.MethodPost {
		return nil, nil, nil, errors.New(errors.CodeInvalidInput, "仅支持POST方法")
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, nil, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		return nil, nil, nil, appErr
	}

	shifts, appErr := buildShifts(req.Shifts)
	if appErr != nil {
		return nil, nil, nil, appErr
	}

	return &req, shifts, employees, nil
}

// buildShifts 把输入转换为领域模型
func buildShifts(inputs []ShiftInput) ([]*model.Shift, *errors.AppError) {
	shifts := make([]*model.Shift, 0, len(inputs))
	for _, s := range inputs {
		empID, err := uuid.Parse(s.EmployeeID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+s.EmployeeID)
		}
		shiftType := model.ShiftType(s.ShiftType)
		if !shiftType.IsValid() {
			return nil, errors.New(errors.CodeInvalidInput, "无效的班次类型: "+s.ShiftType)
		}
		shift, err := model.NewShift(empID, s.Date, shiftType, s.Department)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的日期: "+s.Date)
		}
		if s.ID != "" {
			if id, err := uuid.Parse(s.ID); err == nil {
				shift.ID = id
			}
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}
