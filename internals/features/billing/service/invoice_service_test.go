package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	billingModel "kosku_backend/internals/features/billing/model"
	branchModel "kosku_backend/internals/features/branches/model"
	contractModel "kosku_backend/internals/features/contracts/model"
	notifModel "kosku_backend/internals/features/notifications/model"
	roomModel "kosku_backend/internals/features/rooms/model"
	userModel "kosku_backend/internals/features/users/model"
	utilModel "kosku_backend/internals/features/utilities/model"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.User{},
		&branchModel.Branch{},
		&branchModel.EmployeeAssignment{},
		&roomModel.RoomType{},
		&roomModel.Room{},
		&roomModel.RoomOccupant{},
		&contractModel.Contract{},
		&utilModel.Service{},
		&utilModel.UtilityUsage{},
		&billingModel.Invoice{},
		&billingModel.Payment{},
		&notifModel.Notification{},
	))
	return db
}

var adminActor = scope.Actor{UserID: 99, Role: constants.RoleAdmin}

// seedBilledContract: cabang + kamar occupied + kontrak active + layanan
// listrik + satu bacaan meter Januari 2025.
func seedBilledContract(t *testing.T, db *gorm.DB) *contractModel.Contract {
	branch := branchModel.Branch{Name: "Kos Melati", OwnerID: 1}
	require.NoError(t, db.Create(&branch).Error)

	room := roomModel.Room{BranchID: branch.ID, Name: "A-01", Price: 3_000_000, Status: roomModel.RoomOccupied}
	require.NoError(t, db.Create(&room).Error)

	contract := contractModel.Contract{
		RoomID:    room.ID,
		UserID:    7,
		BranchID:  branch.ID,
		StartDate: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		Status:    contractModel.ContractActive,
	}
	require.NoError(t, db.Create(&contract).Error)

	svc := utilModel.Service{BranchID: branch.ID, Name: "Listrik", Type: utilModel.ServiceElectricity, Price: 1500, Unit: "kWh"}
	require.NoError(t, db.Create(&svc).Error)

	usage := utilModel.UtilityUsage{
		RoomID:      room.ID,
		ContractID:  contract.ID,
		ServiceID:   svc.ID,
		Month:       "2025-01",
		OldReading:  1000,
		NewReading:  1100,
		UsageAmount: 100,
		RecordedAt:  time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&usage).Error)

	return &contract
}

func TestGenerateInvoice_ComputesProratedAmount(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)

	due := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	inv, err := GenerateInvoice(db, adminActor, contract.ID, contract.BranchID, due, "")
	require.NoError(t, err)

	// 3.000.000 * 16/31 = 1.548.387 + 100 kWh * 1.500 = 1.698.387
	assert.Equal(t, float64(1_698_387), inv.Amount)
	assert.Equal(t, "2025-01", inv.BillingMonth)
	assert.Equal(t, billingModel.InvoicePending, inv.Status)
}

func TestGenerateInvoice_MissingUsageBlocked(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)

	// Februari belum ada bacaan meter: tagihan ditolak, tidak ada invoice.
	due := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	_, err := GenerateInvoice(db, adminActor, contract.ID, contract.BranchID, due, "")
	require.Error(t, err)
	assert.True(t, errs.IsMissingUtilityData(err))

	var count int64
	require.NoError(t, db.Model(&billingModel.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGenerateInvoice_CustomerForbidden(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)

	customer := scope.Actor{UserID: 7, Role: constants.RoleCustomer}
	due := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	_, err := GenerateInvoice(db, customer, contract.ID, contract.BranchID, due, "")
	require.Error(t, err)
}

func TestGetInvoiceDetail_LinesSumToAmount(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)

	due := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	inv, err := GenerateInvoice(db, adminActor, contract.ID, contract.BranchID, due, "")
	require.NoError(t, err)

	detail, err := GetInvoiceDetail(db, adminActor, inv.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)

	assert.Equal(t, float64(1_548_387), detail.Lines[0].Amount)
	assert.Equal(t, "Listrik", detail.Lines[1].Label)
	assert.Equal(t, float64(150_000), detail.Lines[1].Amount)
	assert.Equal(t, inv.Amount, detail.Lines[0].Amount+detail.Lines[1].Amount)
}

func TestSettleContractBill_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)
	due := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)

	first, err := SettleContractBill(db, contract, 3_000_000, due)
	require.NoError(t, err)

	second, err := SettleContractBill(db, contract, 3_000_000, due)
	require.NoError(t, err)

	// Panggilan kedua bulan yang sama update in place, bukan duplikat.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Amount, second.Amount)

	var invoiceCount, paymentCount int64
	require.NoError(t, db.Model(&billingModel.Invoice{}).Count(&invoiceCount).Error)
	require.NoError(t, db.Model(&billingModel.Payment{}).Count(&paymentCount).Error)
	assert.Equal(t, int64(1), invoiceCount)
	assert.Equal(t, int64(1), paymentCount)
}

func TestUpdateInvoice_PaidUpsertsPayment(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)
	due := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)

	inv, err := GenerateInvoice(db, adminActor, contract.ID, contract.BranchID, due, "")
	require.NoError(t, err)

	updated, err := UpdateInvoice(db, adminActor, inv.ID, due, billingModel.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, billingModel.InvoicePaid, updated.Status)

	var p billingModel.Payment
	require.NoError(t, db.Where("contract_id = ? AND due_date = ?", contract.ID, due).First(&p).Error)
	assert.Equal(t, billingModel.PaymentPaid, p.Status)
	assert.Equal(t, updated.Amount, p.Amount)
	assert.NotNil(t, p.PaymentDate)
}

func TestHandlePaymentNotification_SettlementMarksPaid(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)
	due := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)

	inv, err := GenerateInvoice(db, adminActor, contract.ID, contract.BranchID, due, "")
	require.NoError(t, err)

	p := billingModel.Payment{
		ContractID: contract.ID,
		Amount:     inv.Amount,
		DueDate:    due,
		Status:     billingModel.PaymentPending,
		OrderRef:   "INV-1-12345",
	}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, HandlePaymentNotification(db, "INV-1-12345", "settlement", ""))

	var gotPayment billingModel.Payment
	require.NoError(t, db.First(&gotPayment, p.ID).Error)
	assert.Equal(t, billingModel.PaymentPaid, gotPayment.Status)

	var gotInvoice billingModel.Invoice
	require.NoError(t, db.First(&gotInvoice, inv.ID).Error)
	assert.Equal(t, billingModel.InvoicePaid, gotInvoice.Status)
}

func TestDeletePayment_PaidRejected(t *testing.T) {
	db := setupTestDB(t)
	contract := seedBilledContract(t, db)
	due := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)

	p := billingModel.Payment{
		ContractID: contract.ID,
		Amount:     1_698_387,
		DueDate:    due,
		Status:     billingModel.PaymentPaid,
	}
	require.NoError(t, db.Create(&p).Error)

	err := DeletePayment(db, adminActor, p.ID)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	require.NoError(t, db.Model(&p).Update("status", billingModel.PaymentPending).Error)
	require.NoError(t, DeletePayment(db, adminActor, p.ID))

	var count int64
	require.NoError(t, db.Model(&billingModel.Payment{}).Where("id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestHandlePaymentNotification_PendingIgnored(t *testing.T) {
	db := setupTestDB(t)
	seedBilledContract(t, db)

	// Status non-final tidak menyentuh data.
	require.NoError(t, HandlePaymentNotification(db, "INV-404-1", "pending", ""))
}
