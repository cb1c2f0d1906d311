package optimizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vardschema/vardschema/pkg/errors"
	"github.com/vardschema/vardschema/pkg/model"
)

func TestClient_Optimize(t *testing.T) {
	empID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/optimize-schedule" {
			t.Errorf("请求路径 = %s, expected /optimize-schedule", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("请求方法 = %s, expected POST", r.Method)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("请求解码失败: %v", err)
		}
		if req.StartDate != "2025-11-10" || req.EndDate != "2025-11-16" {
			t.Errorf("日期范围 = %s ~ %s", req.StartDate, req.EndDate)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"schedule": []map[string]interface{}{
				{"employee_id": empID, "date": "2025-11-10", "shift_type": "day"},
				{"employee_id": empID, "date": "2025-11-11", "shift_type": "night"},
				{"employee_id": empID, "date": "bad-date", "shift_type": "day"},
				{"employee_id": empID, "date": "2025-11-12", "shift_type": "unknown_type"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	shifts, err := client.Optimize(context.Background(), &Request{
		StartDate: "2025-11-10",
		EndDate:   "2025-11-16",
	})
	if err != nil {
		t.Fatalf("Optimize() 出错: %v", err)
	}

	// 非法分配被丢弃，只保留2个有效班次
	if len(shifts) != 2 {
		t.Fatalf("班次数 = %d, expected 2", len(shifts))
	}
	if shifts[0].ShiftType != model.ShiftDay || shifts[0].Date() != "2025-11-10" {
		t.Errorf("第一个班次 = %s/%s", shifts[0].ShiftType, shifts[0].Date())
	}
	if shifts[1].ShiftType != model.ShiftNight {
		t.Errorf("第二个班次类型 = %s, expected night", shifts[1].ShiftType)
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "solver crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Optimize(context.Background(), &Request{StartDate: "2025-11-10", EndDate: "2025-11-16"})

	if !errors.Is(err, errors.CodeOptimizerUnavailable) {
		t.Errorf("错误码 = %s, expected OPTIMIZER_UNAVAILABLE", errors.GetCode(err))
	}
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := client.Optimize(context.Background(), &Request{StartDate: "2025-11-10", EndDate: "2025-11-16"})

	if !errors.Is(err, errors.CodeOptimizerUnavailable) {
		t.Errorf("错误码 = %s, expected OPTIMIZER_UNAVAILABLE", errors.GetCode(err))
	}
}

func TestClient_BadResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Optimize(context.Background(), &Request{StartDate: "2025-11-10", EndDate: "2025-11-16"})

	if !errors.Is(err, errors.CodeOptimizerBadResponse) {
		t.Errorf("错误码 = %s, expected OPTIMIZER_BAD_RESPONSE", errors.GetCode(err))
	}
}

func TestClient_SendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"schedule": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
	if _, err := client.Optimize(context.Background(), &Request{StartDate: "2025-11-10", EndDate: "2025-11-16"}); err != nil {
		t.Fatalf("Optimize() 出错: %v", err)
	}
}
