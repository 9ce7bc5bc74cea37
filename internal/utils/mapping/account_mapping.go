package mapping

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		PersonalAccount: d.PersonalAccount,
		FullName:        d.FullName,
		Address:         d.Address,
		Phone:           d.Phone,
		HouseholdSize:   d.HouseholdSize,
		BuildingType:    string(d.BuildingType),
		WaterTariffMode: string(d.WaterTariffMode),
		HasGarden:       d.HasGarden,
		GardenPlotSize:  d.GardenPlotSize,
		Status:          string(d.Status),
		ControllerID:    optional(d.ControllerID),
		Balance:         d.Balance,
		OverdueSince:    d.OverdueSince,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		PersonalAccount: m.PersonalAccount,
		FullName:        m.FullName,
		Address:         m.Address,
		Phone:           m.Phone,
		HouseholdSize:   m.HouseholdSize,
		BuildingType:    domain.BuildingType(m.BuildingType),
		WaterTariffMode: domain.WaterTariffMode(m.WaterTariffMode),
		HasGarden:       m.HasGarden,
		GardenPlotSize:  m.GardenPlotSize,
		Status:          domain.AccountStatus(m.Status),
		ControllerID:    deref(m.ControllerID),
		Balance:         m.Balance,
		OverdueSince:    m.OverdueSince,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
