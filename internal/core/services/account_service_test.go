package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/core/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const importHeader = "name;address;phone;household_size;building_type;water_tariff_mode;status;personal_account\n"

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	clock    *clock.Fixed
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.clock = clock.NewFixed(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	suite.service = services.NewAccountService(suite.mockRepo, services.WithClock(suite.clock))
}

func (suite *AccountServiceTestSuite) createRequest() dto.CreateAccountRequest {
	return dto.CreateAccountRequest{
		FullName:        " Ivanova Olga ",
		Address:         "Lenina 5",
		Phone:           "+7 700 000 0000",
		HouseholdSize:   3,
		BuildingType:    "private",
		WaterTariffMode: "By Meter",
	}
}

func (suite *AccountServiceTestSuite) TestCreateAccount_GeneratesPersonalAccount() {
	ctx := context.Background()
	suite.mockRepo.On("NextPersonalAccountSequence", ctx, "2503").Return(1, nil).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.PersonalAccount == "25030001" &&
			a.FullName == "Ivanova Olga" &&
			a.BuildingType == domain.Private &&
			a.WaterTariffMode == domain.ByMeter &&
			a.Status == domain.AccountActive &&
			a.Balance.IsZero() &&
			a.CreatedBy == "user-1"
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.createRequest(), "user-1")

	suite.Require().NoError(err)
	suite.Equal("25030001", account.PersonalAccount)
	suite.NotEmpty(account.AccountID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_KeepsGivenPersonalAccount() {
	ctx := context.Background()
	req := suite.createRequest()
	req.PersonalAccount = "24120077"
	suite.mockRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.PersonalAccount == "24120077"
	})).Return(nil).Once()

	_, err := suite.service.CreateAccount(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "NextPersonalAccountSequence", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SequenceExhausted() {
	ctx := context.Background()
	suite.mockRepo.On("NextPersonalAccountSequence", ctx, "2503").Return(10000, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.createRequest(), "user-1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidBuildingType() {
	req := suite.createRequest()
	req.BuildingType = "castle"

	_, err := suite.service.CreateAccount(context.Background(), req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicatePersonalAccount() {
	ctx := context.Background()
	req := suite.createRequest()
	req.PersonalAccount = "24120077"
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	account, err := suite.service.CreateAccount(ctx, req, "user-1")

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

// --- Import ---

func (suite *AccountServiceTestSuite) TestImportAccounts_NumbersRowsAroundTakenNumbers() {
	ctx := context.Background()
	data := []byte(importHeader +
		"Ivanova Olga;Lenina 5;87001112233;3;private;by-meter;active;\n" +
		"Bekov Arman;Abaya 12;87004445566;5;Apartment;BY_PERSON;ACTIVE;25030002\n" +
		"Petrov Ivan;Abaya 14;87007778899;1;apartment;by person;disconnected;\n")

	suite.mockRepo.On("NextPersonalAccountSequence", ctx, "2503").Return(1, nil).Once()
	suite.mockRepo.On("SaveAccounts", ctx, mock.MatchedBy(func(accounts []domain.Account) bool {
		return len(accounts) == 3 &&
			accounts[0].PersonalAccount == "25030001" &&
			accounts[1].PersonalAccount == "25030002" &&
			accounts[2].PersonalAccount == "25030003" &&
			accounts[2].Status == domain.AccountDisconnected &&
			accounts[1].WaterTariffMode == domain.ByPerson
	})).Return(nil).Once()

	accounts, err := suite.service.ImportAccounts(ctx, data, "user-1")

	suite.Require().NoError(err)
	suite.Len(accounts, 3)
	suite.Equal(5, accounts[1].HouseholdSize)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestImportAccounts_MissingColumn() {
	data := []byte("name,address,phone,household_size,building_type,status\nIvanova Olga,Lenina 5,8700,3,PRIVATE,ACTIVE\n")

	_, err := suite.service.ImportAccounts(context.Background(), data, "user-1")

	var importErr *apperrors.ImportError
	suite.Require().True(errors.As(err, &importErr))
	suite.Equal(1, importErr.Line)
	suite.Equal("water_tariff_mode", importErr.Column)
}

func (suite *AccountServiceTestSuite) TestImportAccounts_BadHouseholdSize() {
	data := []byte(importHeader + "Ivanova Olga;Lenina 5;8700;three;PRIVATE;BY_METER;ACTIVE;\n")

	_, err := suite.service.ImportAccounts(context.Background(), data, "user-1")

	var importErr *apperrors.ImportError
	suite.Require().True(errors.As(err, &importErr))
	suite.Equal(2, importErr.Line)
	suite.Equal("household_size", importErr.Column)
	suite.Equal("three", importErr.Value)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestImportAccounts_ReportsColumnOfFailedRule() {
	data := []byte(importHeader +
		"Ivanova Olga;Lenina 5;8700;3;PRIVATE;BY_METER;ACTIVE;\n" +
		"Bekov Arman;Abaya 12;8700;2;castle;BY_METER;ACTIVE;\n")

	_, err := suite.service.ImportAccounts(context.Background(), data, "user-1")

	var importErr *apperrors.ImportError
	suite.Require().True(errors.As(err, &importErr))
	suite.Equal(3, importErr.Line)
	suite.Equal("building_type", importErr.Column)
	suite.Equal("castle", importErr.Value)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccounts", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestImportAccounts_DuplicatePersonalAccountInFile() {
	data := []byte(importHeader +
		"Ivanova Olga;Lenina 5;8700;3;PRIVATE;BY_METER;ACTIVE;25030002\n" +
		"Bekov Arman;Abaya 12;8700;2;PRIVATE;BY_METER;ACTIVE;25030002\n")

	_, err := suite.service.ImportAccounts(context.Background(), data, "user-1")

	var importErr *apperrors.ImportError
	suite.Require().True(errors.As(err, &importErr))
	suite.Equal(3, importErr.Line)
	suite.Equal("personal_account", importErr.Column)
	suite.Contains(importErr.Reason, "line 2")
}

func (suite *AccountServiceTestSuite) TestImportAccounts_HeaderOnly() {
	_, err := suite.service.ImportAccounts(context.Background(), []byte(importHeader), "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Update / archive / list ---

func (suite *AccountServiceTestSuite) TestUpdateAccount_ChangesGivenFields() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "acc-1", FullName: "Ivanova Olga", HouseholdSize: 3, Status: domain.AccountActive}
	size := 4
	status := "disconnected"
	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(existing, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.HouseholdSize == 4 && a.Status == domain.AccountDisconnected && a.FullName == "Ivanova Olga" && a.LastUpdatedBy == "user-2"
	})).Return(nil).Once()

	account, err := suite.service.UpdateAccount(ctx, "acc-1", dto.UpdateAccountRequest{HouseholdSize: &size, Status: &status}, "user-2")

	suite.Require().NoError(err)
	suite.Equal(suite.clock.Now(), account.LastUpdatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_ArchivedIsReadOnly() {
	ctx := context.Background()
	name := "New Name"
	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(&domain.Account{AccountID: "acc-1", Status: domain.AccountArchived}, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, "acc-1", dto.UpdateAccountRequest{FullName: &name}, "user-2")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_CannotArchiveThroughUpdate() {
	ctx := context.Background()
	status := "ARCHIVED"
	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(&domain.Account{AccountID: "acc-1", Status: domain.AccountActive}, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, "acc-1", dto.UpdateAccountRequest{Status: &status}, "user-2")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestArchiveAccount() {
	ctx := context.Background()
	suite.mockRepo.On("ArchiveAccount", ctx, "acc-1", "user-2", suite.clock.Now()).Return(nil).Once()

	err := suite.service.ArchiveAccount(ctx, "acc-1", "user-2")

	suite.NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestListAccounts_DefaultsLimit() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, domain.AccountActive, 20, 0).Return([]domain.Account{{AccountID: "acc-1"}}, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, domain.AccountActive, 0, -5)

	suite.Require().NoError(err)
	suite.Len(accounts, 1)
}

func (suite *AccountServiceTestSuite) TestListAccounts_UnknownStatus() {
	_, err := suite.service.ListAccounts(context.Background(), domain.AccountStatus("GONE"), 10, 0)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
