// file: internals/features/notifications/service/notify.go
package service

import (
	"log"

	"gorm.io/gorm"

	model "kosku_backend/internals/features/notifications/model"
)

// Notify: fire-and-forget. Dipanggil SETELAH transaksi commit; gagal kirim
// tidak boleh membatalkan operasi pemicunya, cukup dicatat di log.
func Notify(db *gorm.DB, userID uint, message string) {
	n := model.Notification{UserID: userID, Message: message}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("[WARN] gagal kirim notifikasi ke user %d: %v", userID, err)
	}
}
