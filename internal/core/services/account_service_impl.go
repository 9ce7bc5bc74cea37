package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/utils/tabular"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxPersonalAccountSequence = 9999

var requiredImportColumns = []string{"name", "address", "phone", "household_size", "building_type", "water_tariff_mode", "status"}

// accountServiceImpl implements the AccountSvcFacade interface
type accountServiceImpl struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	validate    *validator.Validate
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountServiceImpl{
		BaseService: newBaseService(options),
		accountRepo: repo,
		validate:    newImportValidator(),
	}
}

// Ensure accountServiceImpl implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountServiceImpl)(nil)

// newImportValidator checks import rows with the same binding rules gin applies to requests and
// reports fields by their column name.
func newImportValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("csv"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *accountServiceImpl) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	account, err := s.buildAccount(req, actor)
	if err != nil {
		return nil, err
	}
	if account.PersonalAccount == "" {
		prefix := s.Now().Format("0601")
		seq, err := s.accountRepo.NextPersonalAccountSequence(ctx, prefix)
		if err != nil {
			return nil, err
		}
		number, err := personalAccountNumber(prefix, seq)
		if err != nil {
			return nil, err
		}
		account.PersonalAccount = number
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_id", account.AccountID),
			slog.String("personal_account", account.PersonalAccount))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("personal_account", account.PersonalAccount))
	return &account, nil
}

// buildAccount turns a request into a new zero-balance account.
func (s *accountServiceImpl) buildAccount(req dto.CreateAccountRequest, actor string) (domain.Account, error) {
	buildingType := domain.BuildingType(domain.NormalizeEnum(req.BuildingType))
	if !buildingType.IsValid() {
		return domain.Account{}, fmt.Errorf("%w: unknown building type %q", apperrors.ErrValidation, req.BuildingType)
	}
	mode := domain.WaterTariffMode(domain.NormalizeEnum(req.WaterTariffMode))
	if !mode.IsValid() {
		return domain.Account{}, fmt.Errorf("%w: unknown water tariff mode %q", apperrors.ErrValidation, req.WaterTariffMode)
	}
	status := domain.AccountActive
	if req.Status != "" {
		status = domain.AccountStatus(domain.NormalizeEnum(req.Status))
		if !status.IsValid() {
			return domain.Account{}, fmt.Errorf("%w: unknown account status %q", apperrors.ErrValidation, req.Status)
		}
	}
	if req.HouseholdSize < 1 {
		return domain.Account{}, fmt.Errorf("%w: household size must be at least 1", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return domain.Account{}, fmt.Errorf("%w: full name is required", apperrors.ErrValidation)
	}

	plot := decimal.Zero
	if req.GardenPlotSize != nil {
		plot = *req.GardenPlotSize
	}
	if plot.IsNegative() {
		return domain.Account{}, fmt.Errorf("%w: garden plot size must not be negative", apperrors.ErrValidation)
	}

	return domain.Account{
		AccountID:       uuid.NewString(),
		PersonalAccount: strings.TrimSpace(req.PersonalAccount),
		FullName:        strings.TrimSpace(req.FullName),
		Address:         strings.TrimSpace(req.Address),
		Phone:           strings.TrimSpace(req.Phone),
		HouseholdSize:   req.HouseholdSize,
		BuildingType:    buildingType,
		WaterTariffMode: mode,
		HasGarden:       req.HasGarden || plot.IsPositive(),
		GardenPlotSize:  plot,
		Status:          status,
		ControllerID:    strings.TrimSpace(req.ControllerID),
		Balance:         decimal.Zero,
		AuditFields:     domain.NewAuditFields(actor, s.Now()),
	}, nil
}

func personalAccountNumber(prefix string, seq int) (string, error) {
	if seq < 1 || seq > maxPersonalAccountSequence {
		return "", fmt.Errorf("%w: personal account sequence for %s is exhausted", apperrors.ErrConflict, prefix)
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (s *accountServiceImpl) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountServiceImpl) ListAccounts(ctx context.Context, status domain.AccountStatus, limit int, offset int) ([]domain.Account, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown account status %q", apperrors.ErrValidation, status)
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, status, limit, offset)
}

func (s *accountServiceImpl) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == domain.AccountArchived {
		return nil, fmt.Errorf("%w: archived accounts are read-only", apperrors.ErrValidation)
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, fmt.Errorf("%w: full name must not be empty", apperrors.ErrValidation)
		}
		account.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Address != nil {
		account.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		account.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.HouseholdSize != nil {
		if *req.HouseholdSize < 1 {
			return nil, fmt.Errorf("%w: household size must be at least 1", apperrors.ErrValidation)
		}
		account.HouseholdSize = *req.HouseholdSize
	}
	if req.BuildingType != nil {
		b := domain.BuildingType(domain.NormalizeEnum(*req.BuildingType))
		if !b.IsValid() {
			return nil, fmt.Errorf("%w: unknown building type %q", apperrors.ErrValidation, *req.BuildingType)
		}
		account.BuildingType = b
	}
	if req.WaterTariffMode != nil {
		m := domain.WaterTariffMode(domain.NormalizeEnum(*req.WaterTariffMode))
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: unknown water tariff mode %q", apperrors.ErrValidation, *req.WaterTariffMode)
		}
		account.WaterTariffMode = m
	}
	if req.GardenPlotSize != nil {
		if req.GardenPlotSize.IsNegative() {
			return nil, fmt.Errorf("%w: garden plot size must not be negative", apperrors.ErrValidation)
		}
		account.GardenPlotSize = *req.GardenPlotSize
	}
	if req.HasGarden != nil {
		account.HasGarden = *req.HasGarden
	}
	if req.Status != nil {
		st := domain.AccountStatus(domain.NormalizeEnum(*req.Status))
		if !st.IsValid() || st == domain.AccountArchived {
			return nil, fmt.Errorf("%w: status %q cannot be set here", apperrors.ErrValidation, *req.Status)
		}
		account.Status = st
	}
	if req.ControllerID != nil {
		account.ControllerID = strings.TrimSpace(*req.ControllerID)
	}
	account.Touch(actor, s.Now())

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountServiceImpl) ArchiveAccount(ctx context.Context, accountID string, actor string) error {
	if err := s.accountRepo.ArchiveAccount(ctx, accountID, actor, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to archive account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account archived", slog.String("account_id", accountID), slog.String("actor", actor))
	return nil
}

func (s *accountServiceImpl) ImportAccounts(ctx context.Context, data []byte, actor string) ([]domain.Account, error) {
	records, lines, err := tabular.ReadCSV(data)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, &apperrors.ImportError{Line: 1, Column: "name", Value: "", Reason: "file has no data rows"}
	}
	header := tabular.NewHeader(records[0])
	if missing := header.Missing(requiredImportColumns); len(missing) > 0 {
		return nil, &apperrors.ImportError{Line: lines[0], Column: missing[0], Value: "", Reason: "required column is missing"}
	}

	accounts := make([]domain.Account, 0, len(records)-1)
	numbers := make(map[string]int, len(records)-1)
	for i, rec := range records[1:] {
		line := lines[i+1]
		account, err := s.parseImportRow(header, rec, line, actor)
		if err != nil {
			return nil, err
		}
		if account.PersonalAccount != "" {
			if first, dup := numbers[account.PersonalAccount]; dup {
				return nil, &apperrors.ImportError{Line: line, Column: "personal_account", Value: account.PersonalAccount,
					Reason: "duplicates line " + strconv.Itoa(first)}
			}
			numbers[account.PersonalAccount] = line
		}
		accounts = append(accounts, account)
	}

	if err := s.assignPersonalAccounts(ctx, accounts, numbers); err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveAccounts(ctx, accounts); err != nil {
		s.LogError(ctx, err, "Failed to save imported accounts", slog.Int("rows", len(accounts)))
		return nil, err
	}
	s.LogInfo(ctx, "Accounts imported", slog.Int("rows", len(accounts)), slog.String("actor", actor))
	return accounts, nil
}

// parseImportRow validates one row and reports the first offending column.
func (s *accountServiceImpl) parseImportRow(header tabular.Header, rec []string, line int, actor string) (domain.Account, error) {
	row := dto.AccountImportRow{
		PersonalAccount: header.Get(rec, "personal_account"),
		FullName:        header.Get(rec, "name"),
		Address:         header.Get(rec, "address"),
		Phone:           header.Get(rec, "phone"),
		BuildingType:    domain.NormalizeEnum(header.Get(rec, "building_type")),
		WaterTariffMode: domain.NormalizeEnum(header.Get(rec, "water_tariff_mode")),
		Status:          domain.NormalizeEnum(header.Get(rec, "status")),
		ControllerID:    header.Get(rec, "controller_id"),
	}
	rawHousehold := header.Get(rec, "household_size")
	household, err := strconv.Atoi(rawHousehold)
	if err != nil {
		return domain.Account{}, &apperrors.ImportError{Line: line, Column: "household_size", Value: rawHousehold, Reason: "not a whole number"}
	}
	row.HouseholdSize = household

	if err := s.validate.Struct(row); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			reason := "failed rule " + fe.Tag()
			if fe.Param() != "" {
				reason += "=" + fe.Param()
			}
			return domain.Account{}, &apperrors.ImportError{
				Line:   line,
				Column: fe.Field(),
				Value:  header.Get(rec, fe.Field()),
				Reason: reason,
			}
		}
		return domain.Account{}, fmt.Errorf("line %d: %w", line, err)
	}

	plot := decimal.Zero
	if raw := header.Get(rec, "garden_plot_size"); raw != "" {
		plot, err = tabular.ParseAmount(raw)
		if err != nil || plot.IsNegative() {
			return domain.Account{}, &apperrors.ImportError{Line: line, Column: "garden_plot_size", Value: raw, Reason: "not a non-negative number"}
		}
	}

	return domain.Account{
		AccountID:       uuid.NewString(),
		PersonalAccount: row.PersonalAccount,
		FullName:        row.FullName,
		Address:         row.Address,
		Phone:           row.Phone,
		HouseholdSize:   row.HouseholdSize,
		BuildingType:    domain.BuildingType(row.BuildingType),
		WaterTariffMode: domain.WaterTariffMode(row.WaterTariffMode),
		HasGarden:       plot.IsPositive(),
		GardenPlotSize:  plot,
		Status:          domain.AccountStatus(row.Status),
		ControllerID:    row.ControllerID,
		Balance:         decimal.Zero,
		AuditFields:     domain.NewAuditFields(actor, s.Now()),
	}, nil
}

// assignPersonalAccounts numbers the rows that came without a personal account, skipping
// numbers already used elsewhere in the file.
func (s *accountServiceImpl) assignPersonalAccounts(ctx context.Context, accounts []domain.Account, taken map[string]int) error {
	prefix := s.Now().Format("0601")
	seq := 0
	for i := range accounts {
		if accounts[i].PersonalAccount != "" {
			continue
		}
		if seq == 0 {
			next, err := s.accountRepo.NextPersonalAccountSequence(ctx, prefix)
			if err != nil {
				return err
			}
			seq = next
		}
		for {
			number, err := personalAccountNumber(prefix, seq)
			if err != nil {
				return err
			}
			seq++
			if _, used := taken[number]; !used {
				accounts[i].PersonalAccount = number
				break
			}
		}
	}
	return nil
}
