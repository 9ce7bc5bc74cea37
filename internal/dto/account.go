package dto

import (
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to register a new abonent.
type CreateAccountRequest struct {
	PersonalAccount string           `json:"personalAccount" binding:"omitempty,numeric,len=8"` // Optional, generated as YYMM + sequence
	FullName        string           `json:"fullName" binding:"required,max=255"`
	Address         string           `json:"address" binding:"required,max=500"`
	Phone           string           `json:"phone" binding:"required,max=32"`
	HouseholdSize   int              `json:"householdSize" binding:"required,min=1"`
	BuildingType    string           `json:"buildingType" binding:"required,oneof=APARTMENT PRIVATE"`
	WaterTariffMode string           `json:"waterTariffMode" binding:"required,oneof=BY_METER BY_PERSON"`
	HasGarden       bool             `json:"hasGarden"`
	GardenPlotSize  *decimal.Decimal `json:"gardenPlotSize"`
	Status          string           `json:"status" binding:"omitempty,oneof=ACTIVE DISCONNECTED"`
	ControllerID    string           `json:"controllerID" binding:"max=64"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	FullName        *string          `json:"fullName" binding:"omitempty,max=255"`
	Address         *string          `json:"address" binding:"omitempty,max=500"`
	Phone           *string          `json:"phone" binding:"omitempty,max=32"`
	HouseholdSize   *int             `json:"householdSize" binding:"omitempty,min=1"`
	BuildingType    *string          `json:"buildingType" binding:"omitempty,oneof=APARTMENT PRIVATE"`
	WaterTariffMode *string          `json:"waterTariffMode" binding:"omitempty,oneof=BY_METER BY_PERSON"`
	HasGarden       *bool            `json:"hasGarden"`
	GardenPlotSize  *decimal.Decimal `json:"gardenPlotSize"`
	Status          *string          `json:"status" binding:"omitempty,oneof=ACTIVE DISCONNECTED"` // archive has its own endpoint
	ControllerID    *string          `json:"controllerID" binding:"omitempty,max=64"`
}

// AccountImportRow is one row of an account list upload. The csv tag is the column name.
type AccountImportRow struct {
	PersonalAccount string `csv:"personal_account" binding:"omitempty,numeric,len=8"`
	FullName        string `csv:"name" binding:"required,max=255"`
	Address         string `csv:"address" binding:"required,max=500"`
	Phone           string `csv:"phone" binding:"required,max=32"`
	HouseholdSize   int    `csv:"household_size" binding:"required,min=1"`
	BuildingType    string `csv:"building_type" binding:"required,oneof=APARTMENT PRIVATE"`
	WaterTariffMode string `csv:"water_tariff_mode" binding:"required,oneof=BY_METER BY_PERSON"`
	Status          string `csv:"status" binding:"required,oneof=ACTIVE DISCONNECTED ARCHIVED"`
	ControllerID    string `csv:"controller_id" binding:"max=64"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	PersonalAccount string          `json:"personalAccount"`
	FullName        string          `json:"fullName"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	HouseholdSize   int             `json:"householdSize"`
	BuildingType    string          `json:"buildingType"`
	WaterTariffMode string          `json:"waterTariffMode"`
	HasGarden       bool            `json:"hasGarden"`
	GardenPlotSize  decimal.Decimal `json:"gardenPlotSize"`
	Status          string          `json:"status"`
	ControllerID    string          `json:"controllerID,omitempty"`
	Balance         decimal.Decimal `json:"balance"`
	OverdueSince    *time.Time      `json:"overdueSince,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy   string          `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		PersonalAccount: acc.PersonalAccount,
		FullName:        acc.FullName,
		Address:         acc.Address,
		Phone:           acc.Phone,
		HouseholdSize:   acc.HouseholdSize,
		BuildingType:    string(acc.BuildingType),
		WaterTariffMode: string(acc.WaterTariffMode),
		HasGarden:       acc.HasGarden,
		GardenPlotSize:  acc.GardenPlotSize,
		Status:          string(acc.Status),
		ControllerID:    acc.ControllerID,
		Balance:         acc.Balance,
		OverdueSince:    acc.OverdueSince,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID    string          `json:"accountID"`
	Balance      decimal.Decimal `json:"balance"`
	OverdueSince *time.Time      `json:"overdueSince,omitempty"`
	DaysOverdue  int             `json:"daysOverdue"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE DISCONNECTED ARCHIVED"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=200"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ImportAccountsResponse reports the accounts created by an upload.
type ImportAccountsResponse struct {
	Imported int               `json:"imported"`
	Accounts []AccountResponse `json:"accounts"`
}
