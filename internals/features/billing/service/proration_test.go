package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProrateDays_StartInPreviousMonth(t *testing.T) {
	// Kontrak jalan sejak Desember, tagihan per 16 Januari:
	// dihitung dari tanggal 1 sampai jatuh tempo.
	usageDays, daysInMonth := ProrateDays(date(2024, time.December, 1), date(2025, time.January, 16))
	assert.Equal(t, 16, usageDays)
	assert.Equal(t, 31, daysInMonth)
}

func TestProrateDays_StartInSameMonth(t *testing.T) {
	// Mulai 10 Maret, tagihan 12 Maret: 3 hari (inklusif dua sisi).
	usageDays, daysInMonth := ProrateDays(date(2025, time.March, 10), date(2025, time.March, 12))
	assert.Equal(t, 3, usageDays)
	assert.Equal(t, 31, daysInMonth)
}

func TestProrateDays_SameDayMinimumOneDay(t *testing.T) {
	usageDays, _ := ProrateDays(date(2025, time.March, 10), date(2025, time.March, 10))
	assert.Equal(t, 1, usageDays)
}

func TestProrateDays_February(t *testing.T) {
	_, daysInMonth := ProrateDays(date(2025, time.January, 1), date(2025, time.February, 14))
	assert.Equal(t, 28, daysInMonth)
}

func TestComputeInvoiceAmount_PartialMonth(t *testing.T) {
	// Sewa 3.000.000, 16/31 hari => 1.548.387 (dibulatkan),
	// plus listrik 100 kWh x 1.500 = 150.000 => total 1.698.387.
	lines := []UsageLine{{Amount: 100, UnitPrice: 1500}}
	got := ComputeInvoiceAmount(3_000_000, date(2024, time.December, 1), date(2025, time.January, 16), lines)
	assert.Equal(t, float64(1_698_387), got)
}

func TestComputeInvoiceAmount_FullMonth(t *testing.T) {
	// Jatuh tempo di hari terakhir bulan => rasio 1.0, sewa penuh.
	lines := []UsageLine{{Amount: 10, UnitPrice: 5000}}
	got := ComputeInvoiceAmount(2_000_000, date(2024, time.June, 1), date(2025, time.January, 31), lines)
	assert.Equal(t, float64(2_050_000), got)
}

func TestComputeInvoiceAmount_RoundsRoomChargeBeforeTotal(t *testing.T) {
	// Pembulatan dua tahap: sewa dibulatkan dulu, baru total.
	// 1.000.000 * 16/31 = 516.129,032...; dibulatkan dulu => 516.129; + 0,47
	// => 516.129,47 => 516.129. Kalau dibulatkan sekali di akhir:
	// 516.129,032 + 0,47 = 516.129,502 => 516.130. Input ini membedakan keduanya.
	lines := []UsageLine{{Amount: 0.47, UnitPrice: 1}}
	got := ComputeInvoiceAmount(1_000_000, date(2024, time.December, 1), date(2025, time.January, 16), lines)
	assert.Equal(t, float64(516_129), got)
}

func TestComputeInvoiceAmount_NoLines(t *testing.T) {
	got := ComputeInvoiceAmount(3_100_000, date(2024, time.December, 1), date(2025, time.January, 31), nil)
	assert.Equal(t, float64(3_100_000), got)
}
