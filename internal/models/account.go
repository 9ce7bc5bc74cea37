package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	PersonalAccount string          `db:"personal_account"`
	FullName        string          `db:"full_name"`
	Address         string          `db:"address"`
	Phone           string          `db:"phone"`
	HouseholdSize   int             `db:"household_size"`
	BuildingType    string          `db:"building_type"`
	WaterTariffMode string          `db:"water_tariff_mode"`
	HasGarden       bool            `db:"has_garden"`
	GardenPlotSize  decimal.Decimal `db:"garden_plot_size"`
	Status          string          `db:"status"`
	ControllerID    *string         `db:"controller_id"` // nullable
	Balance         decimal.Decimal `db:"balance"`
	OverdueSince    *time.Time      `db:"overdue_since"` // nullable
	AuditFields
}
