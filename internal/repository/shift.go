// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/model"
)

// ShiftRepository 班次仓储
type ShiftRepository struct {
	db DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// Create 创建班次
func (r *ShiftRepository) Create(ctx context.Context, shift *model.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	query := `
		INSERT INTO shifts (
			id, employee_id, shift_type, department, start_time, end_time,
			is_published, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		shift.ID, shift.EmployeeID, shift.ShiftType, shift.Department,
		shift.StartTime, shift.EndTime, shift.IsPublished,
		shift.CreatedAt, shift.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建班次失败: %w", err)
	}

	return nil
}

// CreateBatch 批量创建班次（排班流水线的草稿落库）
func (r *ShiftRepository) CreateBatch(ctx context.Context, shifts []*model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	var values []string
	var args []interface{}
	argIndex := 1

	now := time.Now()
	for _, s := range shifts {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.CreatedAt = now
		s.UpdatedAt = now

		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4,
			argIndex+5, argIndex+6, argIndex+7, argIndex+8,
		))
		args = append(args,
			s.ID, s.EmployeeID, s.ShiftType, s.Department,
			s.StartTime, s.EndTime, s.IsPublished, s.CreatedAt, s.UpdatedAt,
		)
		argIndex += 9
	}

	query := fmt.Sprintf(`
		INSERT INTO shifts (
			id, employee_id, shift_type, department, start_time, end_time,
			is_published, created_at, updated_at
		) VALUES %s
	`, strings.Join(values, ", "))

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("批量创建班次失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取班次
func (r *ShiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	query := `
		SELECT id, employee_id, shift_type, department, start_time, end_time,
			is_published, created_at, updated_at
		FROM shifts
		WHERE id = $1 AND deleted_at IS NULL
	`

	shift := &model.Shift{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&shift.ID, &shift.EmployeeID, &shift.ShiftType, &shift.Department,
		&shift.StartTime, &shift.EndTime, &shift.IsPublished,
		&shift.CreatedAt, &shift.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	return shift, nil
}

// ListByDateRange 获取日期范围内的班次（以开始时间所在日期为准）
func (r *ShiftRepository) ListByDateRange(ctx context.Context, dateRange model.DateRange, department string) ([]*model.Shift, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")
	conditions = append(conditions, fmt.Sprintf("start_time::date >= $%d", argIndex))
	args = append(args, dateRange.StartDate)
	argIndex++
	conditions = append(conditions, fmt.Sprintf("start_time::date <= $%d", argIndex))
	args = append(args, dateRange.EndDate)
	argIndex++

	if department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIndex))
		args = append(args, department)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT id, employee_id, shift_type, department, start_time, end_time,
			is_published, created_at, updated_at
		FROM shifts
		WHERE %s
		ORDER BY start_time ASC, id ASC
	`, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	return scanShiftRows(rows)
}

// ListByEmployee 获取员工在日期范围内的班次
func (r *ShiftRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, dateRange model.DateRange) ([]*model.Shift, error) {
	query := `
		SELECT id, employee_id, shift_type, department, start_time, end_time,
			is_published, created_at, updated_at
		FROM shifts
		WHERE employee_id = $1
			AND start_time::date >= $2 AND start_time::date <= $3
			AND deleted_at IS NULL
		ORDER BY start_time ASC
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID, dateRange.StartDate, dateRange.EndDate)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	return scanShiftRows(rows)
}

// ReplaceDrafts 在一个事务里替换日期范围内的草稿班次
// 已发布的班次不受影响
func (r *ShiftRepository) ReplaceDrafts(ctx context.Context, tx Tx, dateRange model.DateRange, department string, shifts []*model.Shift) error {
	repo := &ShiftRepository{db: tx}

	if err := repo.DeleteDrafts(ctx, dateRange, department); err != nil {
		return err
	}
	return repo.CreateBatch(ctx, shifts)
}

// DeleteDrafts 软删除日期范围内的草稿班次
func (r *ShiftRepository) DeleteDrafts(ctx context.Context, dateRange model.DateRange, department string) error {
	var conditions []string
	var args []interface{}

	args = append(args, time.Now(), dateRange.StartDate, dateRange.EndDate)
	conditions = append(conditions,
		"is_published = false",
		"deleted_at IS NULL",
		"start_time::date >= $2",
		"start_time::date <= $3",
	)

	if department != "" {
		conditions = append(conditions, "department = $4")
		args = append(args, department)
	}

	query := fmt.Sprintf(
		"UPDATE shifts SET deleted_at = $1 WHERE %s",
		strings.Join(conditions, " AND "),
	)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("删除草稿班次失败: %w", err)
	}

	return nil
}

// Publish 发布日期范围内的草稿班次
func (r *ShiftRepository) Publish(ctx context.Context, dateRange model.DateRange, department string) (int, error) {
	var conditions []string
	var args []interface{}

	args = append(args, time.Now(), dateRange.StartDate, dateRange.EndDate)
	conditions = append(conditions,
		"is_published = false",
		"deleted_at IS NULL",
		"start_time::date >= $2",
		"start_time::date <= $3",
	)

	if department != "" {
		conditions = append(conditions, "department = $4")
		args = append(args, department)
	}

	query := fmt.Sprintf(
		"UPDATE shifts SET is_published = true, updated_at = $1 WHERE %s",
		strings.Join(conditions, " AND "),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("发布班次失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// Delete 软删除班次
func (r *ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shifts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除班次失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次不存在")
	}

	return nil
}

// scanShiftRows 扫描班次结果集
func scanShiftRows(rows *sql.Rows) ([]*model.Shift, error) {
	var shifts []*model.Shift
	for rows.Next() {
		shift := &model.Shift{}
		if err := rows.Scan(
			&shift.ID, &shift.EmployeeID, &shift.ShiftType, &shift.Department,
			&shift.StartTime, &shift.EndTime, &shift.IsPublished,
			&shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}
