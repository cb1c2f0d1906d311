// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vardschema/vardschema/internal/metrics"
	"github.com/vardschema/vardschema/internal/repository"
	"github.com/vardschema/vardschema/pkg/errors"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
	"github.com/vardschema/vardschema/pkg/parser"
)

// ConstraintHandler 约束解析处理器
type ConstraintHandler struct {
	store *repository.ConstraintRepository // nil 表示无持久化模式
}

// NewConstraintHandler 创建约束解析处理器
func NewConstraintHandler() *ConstraintHandler {
	return &ConstraintHandler{}
}

// WithStore 启用解析结果落库
func (h *ConstraintHandler) WithStore(db repository.DB) *ConstraintHandler {
	h.store = repository.NewConstraintRepository(db)
	return h
}

// ParseRequest 约束解析请求
type ParseRequest struct {
	Texts     []string        `json:"texts"`     // 瑞典语自由文本，每条独立解析
	Employees []EmployeeInput `json:"employees"` // 用于姓名解析的员工名册
}

// ParseResponse 约束解析响应
type ParseResponse struct {
	Success     bool                      `json:"success"`
	Constraints []*model.ParsedConstraint `json:"constraints"`
}

// Parse 解析自由文本约束
// 无法解析的条目以 unknown 类型返回，不中断整批
func (h *ConstraintHandler) Parse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if len(req.Texts) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "约束文本列表不能为空"))
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	p := parser.New(employees)
	constraints := p.ParseAll(req.Texts)
	for _, c := range constraints {
		metrics.RecordConstraintParse(string(c.Type), string(c.Confidence))

		// 落库失败不影响响应
		if h.store != nil && c.Type != model.ConstraintUnknown {
			if err := h.store.Create(r.Context(), c); err != nil {
				logger.Error().Err(err).Str("text", c.RawText).Msg("约束落库失败")
			}
		}
	}

	logger.Info().
		Int("texts", len(req.Texts)).
		Int("constraints", len(constraints)).
		Msg("约束解析请求")

	respondJSON(w, http.StatusOK, ParseResponse{Success: true, Constraints: constraints})
}

// Vocabulary 返回解析器词汇表
// 前端据此提示可识别的月份、星期与班次关键词
func (h *ConstraintHandler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	respondJSON(w, http.StatusOK, parser.GetVocabulary())
}
