// Package handler 提供HTTP请求处理器
package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/internal/database"
	"github.com/vardschema/vardschema/internal/metrics"
	"github.com/vardschema/vardschema/internal/repository"
	"github.com/vardschema/vardschema/pkg/errors"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
	"github.com/vardschema/vardschema/pkg/optimizer"
	"github.com/vardschema/vardschema/pkg/parser"
	"github.com/vardschema/vardschema/pkg/scheduler"
	"github.com/vardschema/vardschema/pkg/scheduler/assign"
	"github.com/vardschema/vardschema/pkg/validator"
)

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	cfg       assign.Config
	optimizer *optimizer.Client // nil 表示未启用外部优化
	db        *database.DB      // nil 表示无持久化模式
	shifts    *repository.ShiftRepository
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(cfg assign.Config, opt *optimizer.Client) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg, optimizer: opt}
}

// WithStore 启用草稿落库（生成结果替换同范围的未发布班次）
func (h *ScheduleHandler) WithStore(db *database.DB) *ScheduleHandler {
	h.db = db
	h.shifts = repository.NewShiftRepository(db)
	return h
}

// persistDrafts 把生成结果作为草稿写入数据库
// 持久化失败不影响响应，只记录日志
func (h *ScheduleHandler) persistDrafts(r *http.Request, dateRange model.DateRange, department string, shifts []*model.Shift) {
	if h.db == nil {
		return
	}

	err := h.db.Transaction(r.Context(), func(tx *sql.Tx) error {
		return h.shifts.ReplaceDrafts(r.Context(), tx, dateRange, department, shifts)
	})
	if err != nil {
		logger.Error().Err(err).Msg("草稿落库失败")
	}
}

// EmployeeInput 员工输入
type EmployeeInput struct {
	ID              string                 `json:"id"`
	FirstName       string                 `json:"first_name"`
	LastName        string                 `json:"last_name"`
	Role            string                 `json:"role"`
	ExperienceLevel int                    `json:"experience_level,omitempty"`
	Department      string                 `json:"department,omitempty"`
	Status          string                 `json:"status,omitempty"`
	WorkPreferences *model.WorkPreferences `json:"work_preferences,omitempty"`
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Department      string          `json:"department,omitempty"`
	Employees       []EmployeeInput `json:"employees"`
	ConstraintTexts []string        `json:"constraint_texts,omitempty"` // 瑞典语自由文本
	UseOptimizer    *bool           `json:"use_optimizer,omitempty"`    // 覆盖服务端默认
}

// ShiftOutput 班次输出
type ShiftOutput struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Date         string  `json:"date"`
	ShiftType    string  `json:"shift_type"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Department   string  `json:"department,omitempty"`
	Hours        float64 `json:"hours"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success        bool                      `json:"success"`
	RunID          string                    `json:"run_id"`
	Source         string                    `json:"source"` // local / optimizer
	Message        string                    `json:"message,omitempty"`
	Shifts         []ShiftOutput             `json:"shifts"`
	StaffingIssues []model.StaffingIssue     `json:"staffing_issues"`
	Constraints    []*model.ParsedConstraint `json:"constraints,omitempty"`
	Statistics     *assign.Statistics        `json:"statistics,omitempty"`
	Duration       string                    `json:"duration"`
}

// Generate 生成排班
// 启用外部优化服务时先尝试远端，失败则回退到本地流水线
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if err := validateGenerateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	// 解析自由文本约束
	var constraints []*model.ParsedConstraint
	if len(req.ConstraintTexts) > 0 {
		p := parser.New(employees)
		constraints = p.ParseAll(req.ConstraintTexts)
		for _, c := range constraints {
			metrics.RecordConstraintParse(string(c.Type), string(c.Confidence))
		}
	}

	dateRange := model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate}

	cfg := h.cfg
	if req.Department != "" {
		cfg.Department = req.Department
	}

	// 先尝试外部优化服务
	useOptimizer := h.optimizer != nil
	if req.UseOptimizer != nil {
		useOptimizer = *req.UseOptimizer && h.optimizer != nil
	}
	if useOptimizer {
		start := time.Now()
		shifts, err := h.optimizer.Optimize(r.Context(), &optimizer.Request{
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Department:  cfg.Department,
			Employees:   employees,
			Constraints: constraints,
		})
		if err == nil {
			duration := time.Since(start)
			metrics.RecordScheduleGeneration("optimizer", true, duration)
			h.persistDrafts(r, dateRange, cfg.Department, shifts)
			respondJSON(w, http.StatusOK, buildGenerateResponse(
				uuid.New().String(), "optimizer", shifts, nil, nil, constraints, employees, duration))
			return
		}

		logger.Warn().Err(err).Msg("外部优化失败，回退到本地流水线")
		metrics.RecordOptimizerFallback(string(errors.GetCode(err)))
	}

	pipeline := scheduler.New(cfg)
	result, err := pipeline.Run(employees, dateRange, constraints)
	if err != nil {
		metrics.RecordScheduleGeneration("local", false, 0)
		respondError(w, toAppError(err))
		return
	}

	metrics.RecordScheduleGeneration("local", true, result.Duration)
	for _, s := range result.Shifts {
		metrics.RecordShiftsCreated(string(s.ShiftType), 1)
	}
	for _, issue := range result.Issues {
		metrics.RecordStaffingIssue(string(issue.ShiftType))
	}

	h.persistDrafts(r, dateRange, cfg.Department, result.Shifts)

	respondJSON(w, http.StatusOK, buildGenerateResponse(
		result.RunID, "local", result.Shifts, result.Issues, result.Statistics, constraints, employees, result.Duration))
}

// buildGenerateResponse 组装生成响应
func buildGenerateResponse(
	runID, source string,
	shifts []*model.Shift,
	issues []model.StaffingIssue,
	stats *assign.Statistics,
	constraints []*model.ParsedConstraint,
	employees []*model.Employee,
	duration time.Duration,
) GenerateResponse {
	names := make(map[uuid.UUID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName()
	}

	out := make([]ShiftOutput, len(shifts))
	for i, s := range shifts {
		out[i] = ShiftOutput{
			ID:           s.ID.String(),
			EmployeeID:   s.EmployeeID.String(),
			EmployeeName: names[s.EmployeeID],
			Date:         s.Date(),
			ShiftType:    string(s.ShiftType),
			StartTime:    s.StartTime.Format(time.RFC3339),
			EndTime:      s.EndTime.Format(time.RFC3339),
			Department:   s.Department,
			Hours:        s.WorkingHours(),
		}
	}

	if issues == nil {
		issues = []model.StaffingIssue{}
	}

	return GenerateResponse{
		Success:        true,
		RunID:          runID,
		Source:         source,
		Shifts:         out,
		StaffingIssues: issues,
		Constraints:    constraints,
		Statistics:     stats,
		Duration:       duration.String(),
	}
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.StartDate == "" {
		ve.Add("start_date", "开始日期不能为空")
	}
	if req.EndDate == "" {
		ve.Add("end_date", "结束日期不能为空")
	}
	if len(req.Employees) == 0 {
		ve.Add("employees", "员工列表不能为空")
	}

	if req.StartDate != "" {
		if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
			ve.Add("start_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}
	if req.EndDate != "" {
		if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
			ve.Add("end_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// buildEmployees 把输入转换为领域模型
func buildEmployees(inputs []EmployeeInput) ([]*model.Employee, *errors.AppError) {
	employees := make([]*model.Employee, 0, len(inputs))
	for _, e := range inputs {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+e.ID)
		}
		emp := &model.Employee{
			BaseModel:       model.BaseModel{ID: id},
			FirstName:       e.FirstName,
			LastName:        e.LastName,
			Role:            e.Role,
			ExperienceLevel: e.ExperienceLevel,
			Department:      e.Department,
			Status:          e.Status,
			WorkPreferences: e.WorkPreferences,
		}
		if emp.Status == "" {
			emp.Status = "active"
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// ValidateRequest 排班验证请求
type ValidateRequest struct {
	Shifts    []ShiftInput    `json:"shifts"`
	Employees []EmployeeInput `json:"employees"`
}

// ShiftInput 班次输入
type ShiftInput struct {
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	ShiftType  string `json:"shift_type"`
	Department string `json:"department,omitempty"`
}

// ValidateResponse 验证响应
type ValidateResponse struct {
	IsValid   bool                 `json:"is_valid"`
	Conflicts []validator.Conflict `json:"conflicts"`
}

// Validate 验证排班方案
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	empMap := make(map[uuid.UUID]*model.Employee, len(employees))
	for _, e := range employees {
		empMap[e.ID] = e
	}

	shifts, appErr := buildShifts(req.Shifts)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	detector := validator.NewConflictDetector(validator.DefaultDetectorConfig())
	conflicts := detector.DetectAll(shifts, empMap)
	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}

	isValid := true
	for _, c := range conflicts {
		if c.Severity != "warning" {
			isValid = false
			break
		}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{IsValid: isValid, Conflicts: conflicts})
}

// toAppError 把任意错误转换为应用错误
func toAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "排班失败")
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
