package helper

import (
	"math"
	"time"
)

const (
	// MonthLayout: kolom month disimpan sebagai string 7 karakter "YYYY-MM".
	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"
)

func ValidMonth(s string) bool {
	if len(s) != 7 {
		return false
	}
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}

// Round2: pembulatan dua desimal (half away from zero) saat menulis nilai uang.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
