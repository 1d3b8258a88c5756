package handlers

import (
	"context"
	"time"

	"societies/internal/models"
	"societies/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// The handler layer depends on narrow interfaces so tests can stub each store.

type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

type SocietyStore interface {
	List(ctx context.Context, name string, limit, offset int) ([]models.Society, error)
	GetByID(ctx context.Context, id string) (models.Society, error)
	Create(ctx context.Context, tx store.Execer, society models.Society) error
	Update(ctx context.Context, tx store.Execer, society models.Society) error
	Delete(ctx context.Context, tx store.Execer, id string) error
}

type ResidentStore interface {
	List(ctx context.Context, filter store.ResidentFilter, limit, offset int) ([]models.Resident, error)
	GetByID(ctx context.Context, id string) (models.Resident, error)
	CountByUnit(ctx context.Context, societyID, unitNumber string) (int, error)
	Create(ctx context.Context, tx store.Execer, resident models.Resident) error
	Update(ctx context.Context, tx store.Execer, resident models.Resident) error
	Delete(ctx context.Context, tx store.Execer, id string) error
}

type UserStore interface {
	List(ctx context.Context, filter store.UserFilter, limit, offset int) ([]models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (models.User, error)
	CountByUsername(ctx context.Context, username string) (int, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	CountByRole(ctx context.Context, roleID string) (int, error)
	Create(ctx context.Context, tx store.Execer, user models.User) error
	Update(ctx context.Context, tx store.Execer, user models.User) error
	SetPasswordHash(ctx context.Context, tx store.Execer, userID, passwordHash string) error
	SetActive(ctx context.Context, tx store.Execer, userID string, active bool) error
	ToggleActive(ctx context.Context, tx store.Tx, userID string) (bool, error)
	TouchLastLogin(ctx context.Context, tx store.Execer, userID string, at time.Time) error
}

type RoleStore interface {
	List(ctx context.Context, name string, limit, offset int) ([]models.Role, error)
	GetByID(ctx context.Context, id string) (models.Role, error)
	CountByName(ctx context.Context, name string) (int, error)
	Create(ctx context.Context, tx store.Execer, role models.Role) error
	Update(ctx context.Context, tx store.Execer, role models.Role) error
	Delete(ctx context.Context, tx store.Execer, id string) error
	ListPermissions(ctx context.Context, roleID string) ([]models.Permission, error)
	HasRolePermission(ctx context.Context, roleID, permissionID string) (bool, error)
	GrantPermission(ctx context.Context, tx store.Execer, id, roleID, permissionID string) error
	RevokePermission(ctx context.Context, tx store.Execer, roleID, permissionID string) (int64, error)
	ClearPermissions(ctx context.Context, tx store.Execer, roleID string) error
}

type PermissionStore interface {
	List(ctx context.Context, filter store.PermissionFilter, limit, offset int) ([]models.Permission, error)
	GetByID(ctx context.Context, id string) (models.Permission, error)
	CountByName(ctx context.Context, name string) (int, error)
	CountByIDs(ctx context.Context, ids []string) (int, error)
	CountRoleBindings(ctx context.Context, permissionID string) (int, error)
	Create(ctx context.Context, tx store.Execer, permission models.Permission) error
	Update(ctx context.Context, tx store.Execer, permission models.Permission) error
	Delete(ctx context.Context, tx store.Execer, id string) error
	DistinctResourceTypes(ctx context.Context) ([]string, error)
	DistinctActions(ctx context.Context) ([]string, error)
}

type SocietyAdminStore interface {
	List(ctx context.Context, filter store.SocietyAdminFilter, limit, offset int) ([]models.SocietyAdmin, error)
	GetByID(ctx context.Context, id string) (models.SocietyAdmin, error)
	CountBinding(ctx context.Context, userID, societyID string) (int, error)
	Create(ctx context.Context, tx store.Execer, admin models.SocietyAdmin) error
	Update(ctx context.Context, tx store.Execer, admin models.SocietyAdmin) error
	DemotePrimary(ctx context.Context, tx store.Execer, societyID, exceptID string) error
	Delete(ctx context.Context, tx store.Execer, id string) error
	ListAdministeredSocieties(ctx context.Context, userID string) ([]models.Society, error)
	ListAdministrators(ctx context.Context, societyID string) ([]models.User, error)
}

type ResidentFinanceStore interface {
	List(ctx context.Context, filter store.ResidentFinanceFilter, limit, offset int) ([]models.ResidentFinance, error)
	GetByID(ctx context.Context, id string) (models.ResidentFinance, error)
	Create(ctx context.Context, tx store.Execer, finance models.ResidentFinance) error
	Update(ctx context.Context, tx store.Execer, finance models.ResidentFinance) error
	Deactivate(ctx context.Context, tx store.Execer, id string) error
	SumByTypes(ctx context.Context, residentID string, types []string, start, end *time.Time) (decimal.Decimal, error)
	ListRecent(ctx context.Context, residentID string, start, end *time.Time, limit int) ([]models.ResidentFinance, error)
}

type SocietyFinanceStore interface {
	List(ctx context.Context, filter store.SocietyFinanceFilter, limit, offset int) ([]models.SocietyFinance, error)
	GetByID(ctx context.Context, id string) (models.SocietyFinance, error)
	Create(ctx context.Context, tx store.Execer, finance models.SocietyFinance) error
	Update(ctx context.Context, tx store.Execer, finance models.SocietyFinance) error
	Deactivate(ctx context.Context, tx store.Execer, id string) error
	DistinctCategories(ctx context.Context, societyID string) ([]string, error)
	SummarizeByCategory(ctx context.Context, societyID string, start, end *time.Time, expenseType string) ([]store.CategoryTotal, error)
}

type AccessChecker interface {
	HasPermission(ctx context.Context, user models.User, resourceType, action string) (bool, error)
	CheckSocietyAccess(ctx context.Context, user models.User, societyID string, allowedRoleNames []string) (bool, error)
}
