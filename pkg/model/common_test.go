package model

import (
	"testing"
	"time"
)

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name     string
		rng      DateRange
		expected int
		first    string
		last     string
	}{
		{
			name:     "单日",
			rng:      DateRange{StartDate: "2025-11-20", EndDate: "2025-11-20"},
			expected: 1,
			first:    "2025-11-20",
			last:     "2025-11-20",
		},
		{
			name:     "一周",
			rng:      DateRange{StartDate: "2025-11-03", EndDate: "2025-11-09"},
			expected: 7,
			first:    "2025-11-03",
			last:     "2025-11-09",
		},
		{
			name:     "跨月",
			rng:      DateRange{StartDate: "2025-11-29", EndDate: "2025-12-02"},
			expected: 4,
			first:    "2025-11-29",
			last:     "2025-12-02",
		},
		{
			name:     "结束早于开始",
			rng:      DateRange{StartDate: "2025-11-10", EndDate: "2025-11-05"},
			expected: 0,
		},
		{
			name:     "非法日期",
			rng:      DateRange{StartDate: "not-a-date", EndDate: "2025-11-05"},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := tt.rng.Days()
			if len(days) != tt.expected {
				t.Fatalf("Days() 返回 %d 天, expected %d", len(days), tt.expected)
			}
			if tt.expected > 0 {
				if days[0] != tt.first {
					t.Errorf("首日 = %s, expected %s", days[0], tt.first)
				}
				if days[len(days)-1] != tt.last {
					t.Errorf("末日 = %s, expected %s", days[len(days)-1], tt.last)
				}
			}
		})
	}
}

func TestShiftTimes(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		shiftType ShiftType
		startHour int
		endHour   int
		endNext   bool
	}{
		{name: "日班", date: "2025-11-20", shiftType: ShiftDay, startHour: 7, endHour: 15},
		{name: "晚班", date: "2025-11-20", shiftType: ShiftEvening, startHour: 15, endHour: 23},
		{name: "夜班跨天", date: "2025-11-20", shiftType: ShiftNight, startHour: 23, endHour: 7, endNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ShiftTimes(tt.date, tt.shiftType)
			if err != nil {
				t.Fatalf("ShiftTimes() 出错: %v", err)
			}
			if start.Hour() != tt.startHour {
				t.Errorf("开始小时 = %d, expected %d", start.Hour(), tt.startHour)
			}
			if end.Hour() != tt.endHour {
				t.Errorf("结束小时 = %d, expected %d", end.Hour(), tt.endHour)
			}
			expectedEndDate := tt.date
			if tt.endNext {
				d, _ := time.Parse("2006-01-02", tt.date)
				expectedEndDate = d.AddDate(0, 0, 1).Format("2006-01-02")
			}
			if end.Format("2006-01-02") != expectedEndDate {
				t.Errorf("结束日期 = %s, expected %s", end.Format("2006-01-02"), expectedEndDate)
			}
			if !end.After(start) {
				t.Errorf("结束时间应晚于开始时间")
			}
		})
	}

	t.Run("非法日期返回错误", func(t *testing.T) {
		if _, _, err := ShiftTimes("2025/11/20", ShiftDay); err == nil {
			t.Errorf("expected error")
		}
	})
}

func TestShiftType_IsValid(t *testing.T) {
	tests := []struct {
		shiftType ShiftType
		expected  bool
	}{
		{ShiftDay, true},
		{ShiftEvening, true},
		{ShiftNight, true},
		{ShiftType("morning"), false},
		{ShiftType(""), false},
	}

	for _, tt := range tests {
		if result := tt.shiftType.IsValid(); result != tt.expected {
			t.Errorf("IsValid(%q) = %v, expected %v", tt.shiftType, result, tt.expected)
		}
	}
}

func TestTimeRange_Overlaps(t *testing.T) {
	base := time.Date(2025, 11, 20, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a        TimeRange
		b        TimeRange
		expected bool
	}{
		{
			name:     "完全重叠",
			a:        TimeRange{Start: base, End: base.Add(8 * time.Hour)},
			b:        TimeRange{Start: base, End: base.Add(8 * time.Hour)},
			expected: true,
		},
		{
			name:     "部分重叠",
			a:        TimeRange{Start: base, End: base.Add(8 * time.Hour)},
			b:        TimeRange{Start: base.Add(4 * time.Hour), End: base.Add(12 * time.Hour)},
			expected: true,
		},
		{
			name:     "首尾相接不算重叠",
			a:        TimeRange{Start: base, End: base.Add(8 * time.Hour)},
			b:        TimeRange{Start: base.Add(8 * time.Hour), End: base.Add(16 * time.Hour)},
			expected: false,
		},
		{
			name:     "完全分离",
			a:        TimeRange{Start: base, End: base.Add(4 * time.Hour)},
			b:        TimeRange{Start: base.Add(10 * time.Hour), End: base.Add(14 * time.Hour)},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.a.Overlaps(tt.b); result != tt.expected {
				t.Errorf("Overlaps() = %v, expected %v", result, tt.expected)
			}
		})
	}
}
