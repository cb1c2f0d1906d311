// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

// ConstraintRepository 解析约束仓储
// 保存自由文本解析出的结构化约束，原文一并留存便于追溯
type ConstraintRepository struct {
	db DB
}

// NewConstraintRepository 创建约束仓储
func NewConstraintRepository(db DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// Create 保存解析约束
func (r *ConstraintRepository) Create(ctx context.Context, c *model.ParsedConstraint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	shiftTypesJSON, _ := json.Marshal(c.ShiftTypes)
	datesJSON, _ := json.Marshal(c.Dates)

	query := `
		INSERT INTO parsed_constraints (
			id, type, category, employee_id, employee_name,
			shift_types, dates, confidence, raw_text, reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Type, c.Category, c.EmployeeID, c.EmployeeName,
		shiftTypesJSON, datesJSON, c.Confidence, c.RawText, c.Reason,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存解析约束失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取解析约束
func (r *ConstraintRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ParsedConstraint, error) {
	query := `
		SELECT id, type, category, employee_id, employee_name,
			shift_types, dates, confidence, raw_text, reason,
			created_at, updated_at
		FROM parsed_constraints
		WHERE id = $1 AND deleted_at IS NULL
	`

	c := &model.ParsedConstraint{}
	var shiftTypesJSON, datesJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Type, &c.Category, &c.EmployeeID, &c.EmployeeName,
		&shiftTypesJSON, &datesJSON, &c.Confidence, &c.RawText, &c.Reason,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询解析约束失败: %w", err)
	}

	json.Unmarshal(shiftTypesJSON, &c.ShiftTypes)
	json.Unmarshal(datesJSON, &c.Dates)
	return c, nil
}

// ListByEmployee 获取员工的全部解析约束
func (r *ConstraintRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*model.ParsedConstraint, error) {
	query := `
		SELECT id, type, category, employee_id, employee_name,
			shift_types, dates, confidence, raw_text, reason,
			created_at, updated_at
		FROM parsed_constraints
		WHERE employee_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("查询解析约束失败: %w", err)
	}
	defer rows.Close()

	return scanConstraintRows(rows)
}

// ListActive 获取全部未删除的解析约束（unknown 类型不参与排班，排除）
func (r *ConstraintRepository) ListActive(ctx context.Context) ([]*model.ParsedConstraint, error) {
	query := `
		SELECT id, type, category, employee_id, employee_name,
			shift_types, dates, confidence, raw_text, reason,
			created_at, updated_at
		FROM parsed_constraints
		WHERE type != 'unknown' AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询解析约束失败: %w", err)
	}
	defer rows.Close()

	return scanConstraintRows(rows)
}

// Delete 软删除解析约束
func (r *ConstraintRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE parsed_constraints SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除解析约束失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("解析约束不存在")
	}

	return nil
}

// scanConstraintRows 扫描解析约束结果集
func scanConstraintRows(rows *sql.Rows) ([]*model.ParsedConstraint, error) {
	var constraints []*model.ParsedConstraint
	for rows.Next() {
		c := &model.ParsedConstraint{}
		var shiftTypesJSON, datesJSON []byte
		if err := rows.Scan(
			&c.ID, &c.Type, &c.Category, &c.EmployeeID, &c.EmployeeName,
			&shiftTypesJSON, &datesJSON, &c.Confidence, &c.RawText, &c.Reason,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		json.Unmarshal(shiftTypesJSON, &c.ShiftTypes)
		json.Unmarshal(datesJSON, &c.Dates)
		constraints = append(constraints, c)
	}
	return constraints, nil
}
