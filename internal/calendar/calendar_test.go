package calendar

import "testing"

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year     int
		expected bool
	}{
		{2024, true},
		{2023, false},
		{2000, true},
		{1900, false},
		{2100, false},
		{2400, true},
		{1970, false},
		{1972, true},
	}
	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.expected {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.expected)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year, month, expected int
	}{
		{2024, 1, 31},
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 6, 30},
		{2024, 9, 30},
		{2024, 11, 30},
		{2024, 12, 31},
		{2024, 0, 0},
		{2024, 13, 0},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.expected {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.expected)
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	years := []int{1970, 1999, 2000, 2023, 2024, 2100}
	for _, y := range years {
		for m := 1; m <= 12; m++ {
			for _, d := range []int{1, 15, DaysInMonth(y, m)} {
				ts := DateToTimestamp(y, m, d)
				gy, gm, gd := TimestampToDate(ts)
				if gy != y || gm != m || gd != d {
					t.Errorf("round trip (%d-%d-%d) -> %d -> (%d-%d-%d)", y, m, d, ts, gy, gm, gd)
				}
			}
		}
	}
}

func TestTimestampToDateRoundsDown(t *testing.T) {
	ts := DateToTimestamp(2024, 3, 10)
	y, m, d := TimestampToDate(ts + 86399) // 23:59:59 same day
	if y != 2024 || m != 3 || d != 10 {
		t.Errorf("got (%d-%d-%d), want (2024-3-10)", y, m, d)
	}
}

func TestNextPaymentDueClamping(t *testing.T) {
	// Lease starts 2024-01-15, payment day 31.
	start := DateToTimestamp(2024, 1, 15)

	// First due date after signing: Feb 29 (leap year clamp).
	due := NextPaymentDue(start, 31, 0)
	if y, m, d := TimestampToDate(due); y != 2024 || m != 2 || d != 29 {
		t.Errorf("paid=0: got (%d-%d-%d), want (2024-2-29)", y, m, d)
	}

	// After one payment the obligation advances to March 31.
	due = NextPaymentDue(start, 31, 1)
	if y, m, d := TimestampToDate(due); y != 2024 || m != 3 || d != 31 {
		t.Errorf("paid=1: got (%d-%d-%d), want (2024-3-31)", y, m, d)
	}

	// April has 30 days.
	due = NextPaymentDue(start, 31, 2)
	if y, m, d := TimestampToDate(due); y != 2024 || m != 4 || d != 30 {
		t.Errorf("paid=2: got (%d-%d-%d), want (2024-4-30)", y, m, d)
	}

	// Non-leap February.
	start2023 := DateToTimestamp(2023, 1, 31)
	due = NextPaymentDue(start2023, 31, 0)
	if y, m, d := TimestampToDate(due); y != 2023 || m != 2 || d != 28 {
		t.Errorf("2023: got (%d-%d-%d), want (2023-2-28)", y, m, d)
	}
}

func TestNextPaymentDueYearWrap(t *testing.T) {
	start := DateToTimestamp(2024, 11, 5)
	due := NextPaymentDue(start, 15, 1) // two months after November
	if y, m, d := TimestampToDate(due); y != 2025 || m != 1 || d != 15 {
		t.Errorf("got (%d-%d-%d), want (2025-1-15)", y, m, d)
	}
}

func TestIsRentDue(t *testing.T) {
	start := DateToTimestamp(2024, 1, 15)
	feb29 := DateToTimestamp(2024, 2, 29)

	if IsRentDue(feb29-1, start, 31, 0) {
		t.Error("rent should not be due one second before the due date")
	}
	if !IsRentDue(feb29, start, 31, 0) {
		t.Error("rent should be due exactly at the due date")
	}
}

func TestMonthsDue(t *testing.T) {
	start := DateToTimestamp(2024, 1, 15)

	tests := []struct {
		now      int64
		expected int
	}{
		{DateToTimestamp(2024, 2, 1), 0},
		{DateToTimestamp(2024, 2, 29), 1},
		{DateToTimestamp(2024, 3, 30), 1},
		{DateToTimestamp(2024, 3, 31), 2},
		{DateToTimestamp(2024, 6, 30), 5},
	}
	for _, tt := range tests {
		if got := MonthsDue(tt.now, start, 31); got != tt.expected {
			t.Errorf("MonthsDue(now=%d) = %d, want %d", tt.now, got, tt.expected)
		}
	}
}
