// internals/features/billing/service/proration.go
package service

import (
	"math"
	"time"
)

// UsageLine adalah satu baris pemakaian utilitas yang ikut ditagihkan.
type UsageLine struct {
	Amount    float64 // jumlah pemakaian (kWh, m3, ...)
	UnitPrice float64 // harga satuan layanan
}

// ProrateDays menghitung hari pemakaian dan jumlah hari dalam bulan tagihan.
// Kalau kontrak mulai di bulan yang sama dengan jatuh tempo, dihitung dari
// tanggal mulai (minimal 1 hari). Kalau mulai di bulan sebelumnya, dihitung
// dari tanggal 1 sampai tanggal jatuh tempo.
func ProrateDays(startDate, dueDate time.Time) (usageDays, daysInMonth int) {
	daysInMonth = time.Date(dueDate.Year(), dueDate.Month()+1, 0, 0, 0, 0, 0, dueDate.Location()).Day()

	if startDate.Year() == dueDate.Year() && startDate.Month() == dueDate.Month() {
		diff := int(dueDate.Sub(startDate).Hours() / 24)
		if diff < 0 {
			diff = -diff
		}
		usageDays = diff + 1
		if usageDays < 1 {
			usageDays = 1
		}
	} else {
		usageDays = dueDate.Day()
	}
	return usageDays, daysInMonth
}

// ComputeInvoiceAmount menghitung total tagihan: sewa kamar diprorata lalu
// dibulatkan, ditambah total pemakaian utilitas, lalu dibulatkan lagi.
// Urutan pembulatan dua tahap ini disengaja dan jangan diubah, angka
// tagihan lama bergantung padanya.
func ComputeInvoiceAmount(roomPrice float64, startDate, dueDate time.Time, lines []UsageLine) float64 {
	usageDays, daysInMonth := ProrateDays(startDate, dueDate)
	ratio := float64(usageDays) / float64(daysInMonth)

	total := math.Round(roomPrice * ratio)
	for _, l := range lines {
		total += l.Amount * l.UnitPrice
	}
	return math.Round(total)
}
