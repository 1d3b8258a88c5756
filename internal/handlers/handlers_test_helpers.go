package handlers

import (
	"context"
	"net/http"
	"time"

	"societies/internal/config"
	"societies/internal/middleware"
	"societies/internal/models"
	"societies/internal/store"
	"societies/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubSocietyStore struct {
	listFn    func(ctx context.Context, name string, limit, offset int) ([]models.Society, error)
	getByIDFn func(ctx context.Context, id string) (models.Society, error)
	createFn  func(ctx context.Context, tx store.Execer, society models.Society) error
	updateFn  func(ctx context.Context, tx store.Execer, society models.Society) error
	deleteFn  func(ctx context.Context, tx store.Execer, id string) error
}

func (s stubSocietyStore) List(ctx context.Context, name string, limit, offset int) ([]models.Society, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, name, limit, offset)
}

func (s stubSocietyStore) GetByID(ctx context.Context, id string) (models.Society, error) {
	if s.getByIDFn == nil {
		return models.Society{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubSocietyStore) Create(ctx context.Context, tx store.Execer, society models.Society) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, society)
}

func (s stubSocietyStore) Update(ctx context.Context, tx store.Execer, society models.Society) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, society)
}

func (s stubSocietyStore) Delete(ctx context.Context, tx store.Execer, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, id)
}

type stubResidentStore struct {
	listFn        func(ctx context.Context, filter store.ResidentFilter, limit, offset int) ([]models.Resident, error)
	getByIDFn     func(ctx context.Context, id string) (models.Resident, error)
	countByUnitFn func(ctx context.Context, societyID, unitNumber string) (int, error)
	createFn      func(ctx context.Context, tx store.Execer, resident models.Resident) error
	updateFn      func(ctx context.Context, tx store.Execer, resident models.Resident) error
	deleteFn      func(ctx context.Context, tx store.Execer, id string) error
}

func (s stubResidentStore) List(ctx context.Context, filter store.ResidentFilter, limit, offset int) ([]models.Resident, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter, limit, offset)
}

func (s stubResidentStore) GetByID(ctx context.Context, id string) (models.Resident, error) {
	if s.getByIDFn == nil {
		return models.Resident{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubResidentStore) CountByUnit(ctx context.Context, societyID, unitNumber string) (int, error) {
	if s.countByUnitFn == nil {
		return 0, nil
	}
	return s.countByUnitFn(ctx, societyID, unitNumber)
}

func (s stubResidentStore) Create(ctx context.Context, tx store.Execer, resident models.Resident) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, resident)
}

func (s stubResidentStore) Update(ctx context.Context, tx store.Execer, resident models.Resident) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, resident)
}

func (s stubResidentStore) Delete(ctx context.Context, tx store.Execer, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, id)
}

type stubUserStore struct {
	listFn            func(ctx context.Context, filter store.UserFilter, limit, offset int) ([]models.User, error)
	getByIDFn         func(ctx context.Context, id string) (models.User, error)
	getByUsernameFn   func(ctx context.Context, username string) (models.User, error)
	getByIdentifierFn func(ctx context.Context, identifier string) (models.User, error)
	countByUsernameFn func(ctx context.Context, username string) (int, error)
	countByEmailFn    func(ctx context.Context, email string) (int, error)
	countByRoleFn     func(ctx context.Context, roleID string) (int, error)
	createFn          func(ctx context.Context, tx store.Execer, user models.User) error
	updateFn          func(ctx context.Context, tx store.Execer, user models.User) error
	setPasswordFn     func(ctx context.Context, tx store.Execer, userID, passwordHash string) error
	setActiveFn       func(ctx context.Context, tx store.Execer, userID string, active bool) error
	toggleActiveFn    func(ctx context.Context, tx store.Tx, userID string) (bool, error)
	touchLastLoginFn  func(ctx context.Context, tx store.Execer, userID string, at time.Time) error
}

func (s stubUserStore) List(ctx context.Context, filter store.UserFilter, limit, offset int) ([]models.User, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter, limit, offset)
}

func (s stubUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: id, IsActive: true}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	if s.getByUsernameFn == nil {
		return models.User{Username: username, IsActive: true}, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	if s.getByIdentifierFn == nil {
		return models.User{Username: identifier, IsActive: true}, nil
	}
	return s.getByIdentifierFn(ctx, identifier)
}

func (s stubUserStore) CountByUsername(ctx context.Context, username string) (int, error) {
	if s.countByUsernameFn == nil {
		return 0, nil
	}
	return s.countByUsernameFn(ctx, username)
}

func (s stubUserStore) CountByEmail(ctx context.Context, email string) (int, error) {
	if s.countByEmailFn == nil {
		return 0, nil
	}
	return s.countByEmailFn(ctx, email)
}

func (s stubUserStore) CountByRole(ctx context.Context, roleID string) (int, error) {
	if s.countByRoleFn == nil {
		return 0, nil
	}
	return s.countByRoleFn(ctx, roleID)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, user models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, user)
}

func (s stubUserStore) Update(ctx context.Context, tx store.Execer, user models.User) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, user)
}

func (s stubUserStore) SetPasswordHash(ctx context.Context, tx store.Execer, userID, passwordHash string) error {
	if s.setPasswordFn == nil {
		return nil
	}
	return s.setPasswordFn(ctx, tx, userID, passwordHash)
}

func (s stubUserStore) SetActive(ctx context.Context, tx store.Execer, userID string, active bool) error {
	if s.setActiveFn == nil {
		return nil
	}
	return s.setActiveFn(ctx, tx, userID, active)
}

func (s stubUserStore) ToggleActive(ctx context.Context, tx store.Tx, userID string) (bool, error) {
	if s.toggleActiveFn == nil {
		return false, nil
	}
	return s.toggleActiveFn(ctx, tx, userID)
}

func (s stubUserStore) TouchLastLogin(ctx context.Context, tx store.Execer, userID string, at time.Time) error {
	if s.touchLastLoginFn == nil {
		return nil
	}
	return s.touchLastLoginFn(ctx, tx, userID, at)
}

type stubRoleStore struct {
	listFn              func(ctx context.Context, name string, limit, offset int) ([]models.Role, error)
	getByIDFn           func(ctx context.Context, id string) (models.Role, error)
	countByNameFn       func(ctx context.Context, name string) (int, error)
	createFn            func(ctx context.Context, tx store.Execer, role models.Role) error
	updateFn            func(ctx context.Context, tx store.Execer, role models.Role) error
	deleteFn            func(ctx context.Context, tx store.Execer, id string) error
	listPermissionsFn   func(ctx context.Context, roleID string) ([]models.Permission, error)
	hasRolePermissionFn func(ctx context.Context, roleID, permissionID string) (bool, error)
	grantPermissionFn   func(ctx context.Context, tx store.Execer, id, roleID, permissionID string) error
	revokePermissionFn  func(ctx context.Context, tx store.Execer, roleID, permissionID string) (int64, error)
	clearPermissionsFn  func(ctx context.Context, tx store.Execer, roleID string) error
}

func (s stubRoleStore) List(ctx context.Context, name string, limit, offset int) ([]models.Role, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, name, limit, offset)
}

func (s stubRoleStore) GetByID(ctx context.Context, id string) (models.Role, error) {
	if s.getByIDFn == nil {
		return models.Role{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubRoleStore) CountByName(ctx context.Context, name string) (int, error) {
	if s.countByNameFn == nil {
		return 0, nil
	}
	return s.countByNameFn(ctx, name)
}

func (s stubRoleStore) Create(ctx context.Context, tx store.Execer, role models.Role) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, role)
}

func (s stubRoleStore) Update(ctx context.Context, tx store.Execer, role models.Role) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, role)
}

func (s stubRoleStore) Delete(ctx context.Context, tx store.Execer, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, id)
}

func (s stubRoleStore) ListPermissions(ctx context.Context, roleID string) ([]models.Permission, error) {
	if s.listPermissionsFn == nil {
		return nil, nil
	}
	return s.listPermissionsFn(ctx, roleID)
}

func (s stubRoleStore) HasRolePermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	if s.hasRolePermissionFn == nil {
		return false, nil
	}
	return s.hasRolePermissionFn(ctx, roleID, permissionID)
}

func (s stubRoleStore) GrantPermission(ctx context.Context, tx store.Execer, id, roleID, permissionID string) error {
	if s.grantPermissionFn == nil {
		return nil
	}
	return s.grantPermissionFn(ctx, tx, id, roleID, permissionID)
}

func (s stubRoleStore) RevokePermission(ctx context.Context, tx store.Execer, roleID, permissionID string) (int64, error) {
	if s.revokePermissionFn == nil {
		return 1, nil
	}
	return s.revokePermissionFn(ctx, tx, roleID, permissionID)
}

func (s stubRoleStore) ClearPermissions(ctx context.Context, tx store.Execer, roleID string) error {
	if s.clearPermissionsFn == nil {
		return nil
	}
	return s.clearPermissionsFn(ctx, tx, roleID)
}

type stubPermissionStore struct {
	listFn                  func(ctx context.Context, filter store.PermissionFilter, limit, offset int) ([]models.Permission, error)
	getByIDFn               func(ctx context.Context, id string) (models.Permission, error)
	countByNameFn           func(ctx context.Context, name string) (int, error)
	countByIDsFn            func(ctx context.Context, ids []string) (int, error)
	countRoleBindingsFn     func(ctx context.Context, permissionID string) (int, error)
	createFn                func(ctx context.Context, tx store.Execer, permission models.Permission) error
	updateFn                func(ctx context.Context, tx store.Execer, permission models.Permission) error
	deleteFn                func(ctx context.Context, tx store.Execer, id string) error
	distinctResourceTypesFn func(ctx context.Context) ([]string, error)
	distinctActionsFn       func(ctx context.Context) ([]string, error)
}

func (s stubPermissionStore) List(ctx context.Context, filter store.PermissionFilter, limit, offset int) ([]models.Permission, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter, limit, offset)
}

func (s stubPermissionStore) GetByID(ctx context.Context, id string) (models.Permission, error) {
	if s.getByIDFn == nil {
		return models.Permission{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubPermissionStore) CountByName(ctx context.Context, name string) (int, error) {
	if s.countByNameFn == nil {
		return 0, nil
	}
	return s.countByNameFn(ctx, name)
}

func (s stubPermissionStore) CountByIDs(ctx context.Context, ids []string) (int, error) {
	if s.countByIDsFn == nil {
		return len(ids), nil
	}
	return s.countByIDsFn(ctx, ids)
}

func (s stubPermissionStore) CountRoleBindings(ctx context.Context, permissionID string) (int, error) {
	if s.countRoleBindingsFn == nil {
		return 0, nil
	}
	return s.countRoleBindingsFn(ctx, permissionID)
}

func (s stubPermissionStore) Create(ctx context.Context, tx store.Execer, permission models.Permission) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, permission)
}

func (s stubPermissionStore) Update(ctx context.Context, tx store.Execer, permission models.Permission) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, permission)
}

func (s stubPermissionStore) Delete(ctx context.Context, tx store.Execer, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, id)
}

func (s stubPermissionStore) DistinctResourceTypes(ctx context.Context) ([]string, error) {
	if s.distinctResourceTypesFn == nil {
		return nil, nil
	}
	return s.distinctResourceTypesFn(ctx)
}

func (s stubPermissionStore) DistinctActions(ctx context.Context) ([]string, error) {
	if s.distinctActionsFn == nil {
		return nil, nil
	}
	return s.distinctActionsFn(ctx)
}

type stubSocietyAdminStore struct {
	listFn               func(ctx context.Context, filter store.SocietyAdminFilter, limit, offset int) ([]models.SocietyAdmin, error)
	getByIDFn            func(ctx context.Context, id string) (models.SocietyAdmin, error)
	countBindingFn       func(ctx context.Context, userID, societyID string) (int, error)
	createFn             func(ctx context.Context, tx store.Execer, admin models.SocietyAdmin) error
	updateFn             func(ctx context.Context, tx store.Execer, admin models.SocietyAdmin) error
	demotePrimaryFn      func(ctx context.Context, tx store.Execer, societyID, exceptID string) error
	deleteFn             func(ctx context.Context, tx store.Execer, id string) error
	listAdministeredFn   func(ctx context.Context, userID string) ([]models.Society, error)
	listAdministratorsFn func(ctx context.Context, societyID string) ([]models.User, error)
}

func (s stubSocietyAdminStore) List(ctx context.Context, filter store.SocietyAdminFilter, limit, offset int) ([]models.SocietyAdmin, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter, limit, offset)
}

func (s stubSocietyAdminStore) GetByID(ctx context.Context, id string) (models.SocietyAdmin, error) {
	if s.getByIDFn == nil {
		return models.SocietyAdmin{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubSocietyAdminStore) CountBinding(ctx context.Context, userID, societyID string) (int, error) {
	if s.countBindingFn == nil {
		return 0, nil
	}
	return s.countBindingFn(ctx, userID, societyID)
}

func (s stubSocietyAdminStore) Create(ctx context.Context, tx store.Execer, admin models.SocietyAdmin) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, admin)
}

func (s stubSocietyAdminStore) Update(ctx context.Context, tx store.Execer, admin models.SocietyAdmin) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, admin)
}

func (s stubSocietyAdminStore) DemotePrimary(ctx context.Context, tx store.Execer, societyID, exceptID string) error {
	if s.demotePrimaryFn == nil {
		return nil
	}
	return s.demotePrimaryFn(ctx, tx, societyID, exceptID)
}

func (s stubSocietyAdminStore) Delete(ctx context.Context, tx store.Execer, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, id)
}

func (s stubSocietyAdminStore) ListAdministeredSocieties(ctx context.Context, userID string) ([]models.Society, error) {
	if s.listAdministeredFn == nil {
		return nil, nil
	}
	return s.listAdministeredFn(ctx, userID)
}

func (s stubSocietyAdminStore) ListAdministrators(ctx context.Context, societyID string) ([]models.User, error) {
	if s.listAdministratorsFn == nil {
		return nil, nil
	}
	return s.listAdministratorsFn(ctx, societyID)
}

type stubResidentFinanceStore struct {
	listFn       func(ctx context.Context, filter store.ResidentFinanceFilter, limit, offset int) ([]models.ResidentFinance, error)
	getByIDFn    func(ctx context.Context, id string) (models.ResidentFinance, error)
	createFn     func(ctx context.Context, tx store.Execer, finance models.ResidentFinance) error
	updateFn     func(ctx context.Context, tx store.Execer, finance models.ResidentFinance) error
	deactivateFn func(ctx context.Context, tx store.Execer, id string) error
	sumByTypesFn func(ctx context.Context, residentID string, types []string, start, end *time.Time) (decimal.Decimal, error)
	listRecentFn func(ctx context.Context, residentID string, start, end *time.Time, limit int) ([]models.ResidentFinance, error)
}

func (s stubResidentFinanceStore) List(ctx context.Context, filter store.ResidentFinanceFilter, limit, offset int) ([]models.ResidentFinance, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter, limit, offset)
}

func (s stubResidentFinanceStore) GetByID(ctx context.Context, id string) (models.ResidentFinance, error) {
	if s.getByIDFn == nil {
		return models.ResidentFinance{ID: id, IsActive: true}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubResidentFinanceStore) Create(ctx context.Context, tx store.Execer, finance models.ResidentFinance) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, finance)
}

func (s stubResidentFinanceStore) Update(ctx context.Context, tx store.Execer, finance models.ResidentFinance) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, finance)
}

func (s stubResidentFinanceStore) Deactivate(ctx context.Context, tx store.Execer, id string) error {
	if s.deactivateFn == nil {
		return nil
	}
	return s.deactivateFn(ctx, tx, id)
}

func (s stubResidentFinanceStore) SumByTypes(ctx context.Context, residentID string, types []string, start, end *time.Time) (decimal.Decimal, error) {
	if s.sumByTypesFn == nil {
		return decimal.Zero, nil
	}
	return s.sumByTypesFn(ctx, residentID, types, start, end)
}

func (s stubResidentFinanceStore) ListRecent(ctx context.Context, residentID string, start, end *time.Time, limit int) ([]models.ResidentFinance, error) {
	if s.listRecentFn == nil {
		return nil, nil
	}
	return s.listRecentFn(ctx, residentID, start, end, limit)
}

type stubSocietyFinanceStore struct {
	listFn               func(ctx context.Context, filter store.SocietyFinanceFilter, limit, offset int) ([]models.SocietyFinance, error)
	getByIDFn            func(ctx context.Context, id string) (models.SocietyFinance, error)
	createFn             func(ctx context.Context, tx store.Execer, finance models.SocietyFinance) error
	updateFn             func(ctx context.Context, tx store.Execer, finance models.SocietyFinance) error
	deactivateFn         func(ctx context.Context, tx store.Execer, id string) error
	distinctCategoriesFn func(ctx context.Context, societyID string) ([]string, error)
	summarizeFn          func(ctx context.Context, societyID string, start, end *time.Time, expenseType string) ([]store.CategoryTotal, error)
}

func (s stubSocietyFinanceStore) List(ctx context.Context, filter store.SocietyFinanceFilter, limit, offset int) ([]models.SocietyFinance, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter, limit, offset)
}

func (s stubSocietyFinanceStore) GetByID(ctx context.Context, id string) (models.SocietyFinance, error) {
	if s.getByIDFn == nil {
		return models.SocietyFinance{ID: id, IsActive: true}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubSocietyFinanceStore) Create(ctx context.Context, tx store.Execer, finance models.SocietyFinance) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, finance)
}

func (s stubSocietyFinanceStore) Update(ctx context.Context, tx store.Execer, finance models.SocietyFinance) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, finance)
}

func (s stubSocietyFinanceStore) Deactivate(ctx context.Context, tx store.Execer, id string) error {
	if s.deactivateFn == nil {
		return nil
	}
	return s.deactivateFn(ctx, tx, id)
}

func (s stubSocietyFinanceStore) DistinctCategories(ctx context.Context, societyID string) ([]string, error) {
	if s.distinctCategoriesFn == nil {
		return nil, nil
	}
	return s.distinctCategoriesFn(ctx, societyID)
}

func (s stubSocietyFinanceStore) SummarizeByCategory(ctx context.Context, societyID string, start, end *time.Time, expenseType string) ([]store.CategoryTotal, error) {
	if s.summarizeFn == nil {
		return nil, nil
	}
	return s.summarizeFn(ctx, societyID, start, end, expenseType)
}

type stubChecker struct {
	hasPermissionFn func(ctx context.Context, user models.User, resourceType, action string) (bool, error)
	societyAccessFn func(ctx context.Context, user models.User, societyID string, allowedRoleNames []string) (bool, error)
}

func (s stubChecker) HasPermission(ctx context.Context, user models.User, resourceType, action string) (bool, error) {
	if s.hasPermissionFn == nil {
		return true, nil
	}
	return s.hasPermissionFn(ctx, user, resourceType, action)
}

func (s stubChecker) CheckSocietyAccess(ctx context.Context, user models.User, societyID string, allowedRoleNames []string) (bool, error) {
	if s.societyAccessFn == nil {
		return true, nil
	}
	return s.societyAccessFn(ctx, user, societyID, allowedRoleNames)
}

// testDeps carries optional stub overrides; zero-value stubs answer every
// call with benign defaults.
type testDeps struct {
	txRunner         fakeTxRunner
	societies        stubSocietyStore
	residents        stubResidentStore
	users            stubUserStore
	roles            stubRoleStore
	permissions      stubPermissionStore
	societyAdmins    stubSocietyAdminStore
	residentFinances stubResidentFinanceStore
	societyFinances  stubSocietyFinanceStore
	checker          stubChecker
}

func newTestHandler(d testDeps) *Handler {
	cfg := config.Config{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(cfg, zap.NewNop(), d.txRunner, d.societies, d.residents, d.users, d.roles,
		d.permissions, d.societyAdmins, d.residentFinances, d.societyFinances, d.checker,
		websocket.NewHub())
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func withUser(r *http.Request, user models.User) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), user))
}
