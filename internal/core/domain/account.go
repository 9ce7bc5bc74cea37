package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BuildingType selects the garbage rate applied to an account.
type BuildingType string

const (
	Apartment BuildingType = "APARTMENT"
	Private   BuildingType = "PRIVATE"
)

// WaterTariffMode selects how the water charge is computed.
type WaterTariffMode string

const (
	ByMeter  WaterTariffMode = "BY_METER"
	ByPerson WaterTariffMode = "BY_PERSON"
)

// AccountStatus is the lifecycle status of a customer account.
type AccountStatus string

const (
	AccountActive       AccountStatus = "ACTIVE"
	AccountDisconnected AccountStatus = "DISCONNECTED"
	AccountArchived     AccountStatus = "ARCHIVED"
)

var (
	buildingTypes    = []BuildingType{Apartment, Private}
	waterTariffModes = []WaterTariffMode{ByMeter, ByPerson}
	accountStatuses  = []AccountStatus{AccountActive, AccountDisconnected, AccountArchived}
)

func (b BuildingType) IsValid() bool {
	for _, v := range buildingTypes {
		if b == v {
			return true
		}
	}
	return false
}

func (m WaterTariffMode) IsValid() bool {
	for _, v := range waterTariffModes {
		if m == v {
			return true
		}
	}
	return false
}

func (s AccountStatus) IsValid() bool {
	for _, v := range accountStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// NormalizeEnum upper-cases an imported enum value and maps spaces and dashes to underscores,
// so "by-meter" and "By Meter" both become "BY_METER".
func NormalizeEnum(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}

// Account is a billed water-utility customer (abonent).
// Balance is signed: negative means the customer owes money.
type Account struct {
	AccountID       string          `json:"accountID"`
	PersonalAccount string          `json:"personalAccount"` // printed on bills, e.g. 25080009
	FullName        string          `json:"fullName"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	HouseholdSize   int             `json:"householdSize"`
	BuildingType    BuildingType    `json:"buildingType"`
	WaterTariffMode WaterTariffMode `json:"waterTariffMode"`
	HasGarden       bool            `json:"hasGarden"`
	GardenPlotSize  decimal.Decimal `json:"gardenPlotSize"`
	Status          AccountStatus   `json:"status"`
	ControllerID    string          `json:"controllerID"`
	Balance         decimal.Decimal `json:"balance"`
	OverdueSince    *time.Time      `json:"overdueSince,omitempty"` // maintained by the ledger
	AuditFields
}

// IsActive reports whether the account takes part in billing runs.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}

// InDebt reports whether the balance is negative.
func (a Account) InDebt() bool {
	return a.Balance.IsNegative()
}

// DaysOverdue returns how many days the balance has been negative as of now.
func (a Account) DaysOverdue(now time.Time) int {
	if a.OverdueSince == nil || !a.InDebt() {
		return 0
	}
	days := DaysBetween(*a.OverdueSince, now)
	if days < 0 {
		return 0
	}
	return days
}
