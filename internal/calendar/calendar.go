// Package calendar is the pure date arithmetic behind rent scheduling.
// All timestamps are seconds since the Unix epoch; dates are civil UTC dates
// at day granularity. Nothing here touches shared state.
package calendar

const secondsPerDay = 86400

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days in the given month (1-12).
// Returns 0 for a month outside that range.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// TimestampToDate decomposes a Unix timestamp into (year, month, day),
// always rounding down to day granularity. Time-of-day is ignored.
func TimestampToDate(ts int64) (year, month, day int) {
	remaining := ts / secondsPerDay
	year = 1970

	for {
		daysInYear := int64(365)
		if IsLeapYear(year) {
			daysInYear = 366
		}
		if remaining < daysInYear {
			break
		}
		remaining -= daysInYear
		year++
	}

	month = 1
	for month <= 12 {
		dim := int64(DaysInMonth(year, month))
		if remaining < dim {
			break
		}
		remaining -= dim
		month++
	}

	day = int(remaining) + 1
	return year, month, day
}

// DateToTimestamp returns the Unix timestamp of midnight UTC on the given date.
func DateToTimestamp(year, month, day int) int64 {
	var days int64
	for y := 1970; y < year; y++ {
		if IsLeapYear(y) {
			days += 366
		} else {
			days += 365
		}
	}
	for m := 1; m < month; m++ {
		days += int64(DaysInMonth(year, m))
	}
	days += int64(day - 1)
	return days * secondsPerDay
}

// NextPaymentDue computes the due date of the payment after paidMonths
// periods, counting calendar months from the lease's start month. paymentDay
// is clamped to the target month's length, so a fixed day 31 lands on
// Feb 28/29, Apr 30 and so on instead of producing an invalid date.
func NextPaymentDue(leaseStart int64, paymentDay int, paidMonths int) int64 {
	startYear, startMonth, _ := TimestampToDate(leaseStart)

	totalMonths := (startMonth - 1) + paidMonths + 1
	targetYear := startYear + totalMonths/12
	targetMonth := totalMonths%12 + 1

	actualDay := paymentDay
	if max := DaysInMonth(targetYear, targetMonth); actualDay > max {
		actualDay = max
	}

	return DateToTimestamp(targetYear, targetMonth, actualDay)
}

// IsRentDue reports whether the next rent payment is due at time now.
func IsRentDue(now, leaseStart int64, paymentDay, paidMonths int) bool {
	return now >= NextPaymentDue(leaseStart, paymentDay, paidMonths)
}

// MonthsDue counts how many monthly obligations have fallen due by now.
// Used for catch-up/overdue accounting.
func MonthsDue(now, leaseStart int64, paymentDay int) int {
	months := 0
	for {
		next := NextPaymentDue(leaseStart, paymentDay, months)
		if now < next {
			break
		}
		months++
	}
	return months
}
