// Package optimizer 提供外部排班优化服务的HTTP客户端
//
// 优化服务是不透明的外部协作方：请求为日期范围+员工+约束，
// 响应为一组班次分配。任何传输或解码失败都应让调用方回退到
// 本地流水线，客户端本身不做重试。
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vardschema/vardschema/pkg/errors"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
)

// Config 客户端配置
type Config struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// Client 优化服务客户端
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient 创建优化服务客户端
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     logger.Get().With().Str("component", "optimizer").Logger(),
	}
}

// Request 优化请求
type Request struct {
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	Department  string                    `json:"department,omitempty"`
	Employees   []*model.Employee         `json:"employees"`
	Constraints []*model.ParsedConstraint `json:"constraints,omitempty"`
}

// assignmentPayload 响应中的单个班次分配
type assignmentPayload struct {
	EmployeeID uuid.UUID       `json:"employee_id"`
	Date       string          `json:"date"`
	ShiftType  model.ShiftType `json:"shift_type"`
	Department string          `json:"department,omitempty"`
}

// response 优化响应
type response struct {
	Schedule []assignmentPayload `json:"schedule"`
}

// Optimize 请求外部服务生成排班
// 返回的班次起止时间按固定时刻表在本地重建，
// 非法的分配（未知班次类型、坏日期）被静默丢弃
func (c *Client) Optimize(ctx context.Context, req *Request) ([]*model.Shift, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeOptimizerBadResponse, "优化请求序列化失败")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/optimize-schedule", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeOptimizerUnavailable, "优化请求构建失败")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn().Err(err).Msg("优化服务不可达")
		return nil, errors.OptimizerUnavailable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn().Int("status", resp.StatusCode).Msg("优化服务返回非200")
		return nil, errors.New(errors.CodeOptimizerUnavailable,
			fmt.Sprintf("优化服务返回 %d: %s", resp.StatusCode, string(data)))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, errors.CodeOptimizerBadResponse, "优化响应解码失败")
	}

	shifts := make([]*model.Shift, 0, len(decoded.Schedule))
	for _, a := range decoded.Schedule {
		if !a.ShiftType.IsValid() {
			continue
		}
		shift, err := model.NewShift(a.EmployeeID, a.Date, a.ShiftType, a.Department)
		if err != nil {
			continue
		}
		shifts = append(shifts, shift)
	}

	c.log.Info().
		Int("assignments", len(shifts)).
		Dur("duration", time.Since(start)).
		Msg("优化服务返回排班")
	return shifts, nil
}
