// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/internal/repository"
	"github.com/vardschema/vardschema/pkg/errors"
	"github.com/vardschema/vardschema/pkg/model"
)

// EmployeeHandler 员工名册处理器（仅在数据库启用时挂载）
type EmployeeHandler struct {
	repo *repository.EmployeeRepository
}

// NewEmployeeHandler 创建员工名册处理器
func NewEmployeeHandler(db repository.DB) *EmployeeHandler {
	return &EmployeeHandler{repo: repository.NewEmployeeRepository(db)}
}

// ListResponse 员工列表响应
type ListResponse struct {
	Employees []*model.Employee `json:"employees"`
	Total     int               `json:"total"`
}

// Collection 处理 /api/v1/employees（GET 列表，POST 创建）
func (h *EmployeeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/POST方法"))
	}
}

// Item 处理 /api/v1/employees/{id}（GET 详情，DELETE 删除）
func (h *EmployeeHandler) Item(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/employees/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+idStr))
		return
	}

	switch r.Method {
	case http.MethodGet:
		emp, err := h.repo.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.DatabaseError("查询员工", err))
			return
		}
		if emp == nil {
			respondError(w, errors.NotFound("employee", idStr))
			return
		}
		respondJSON(w, http.StatusOK, emp)
	case http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			respondError(w, errors.DatabaseError("删除员工", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/DELETE方法"))
	}
}

func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()

	q := r.URL.Query()
	if dept := q.Get("department"); dept != "" {
		filter = filter.WithDepartment(dept)
	}
	if status := q.Get("status"); status != "" {
		filter = filter.WithStatus(status)
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter = filter.WithLimit(limit)
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		filter = filter.WithOffset(offset)
	}

	employees, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.DatabaseError("查询员工列表", err))
		return
	}
	if employees == nil {
		employees = []*model.Employee{}
	}

	respondJSON(w, http.StatusOK, ListResponse{Employees: employees, Total: total})
}

func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	var input EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if input.FirstName == "" || input.Role == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "first_name 和 role 不能为空"))
		return
	}

	emp := &model.Employee{
		BaseModel:       model.NewBaseModel(),
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Role:            input.Role,
		ExperienceLevel: input.ExperienceLevel,
		Department:      input.Department,
		Status:          input.Status,
		WorkPreferences: input.WorkPreferences,
	}
	if emp.Status == "" {
		emp.Status = "active"
	}
	if input.ID != "" {
		if id, err := uuid.Parse(input.ID); err == nil {
			emp.ID = id
		}
	}

	if err := h.repo.Create(r.Context(), emp); err != nil {
		respondError(w, errors.DatabaseError("创建员工", err))
		return
	}

	respondJSON(w, http.StatusCreated, emp)
}
