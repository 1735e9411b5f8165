package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/docflow/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectValuation = "valuation"
	ObjectNumber    = "number"
	ObjectNumbering = "numbering_state"
	ObjectDocument  = "document"
	ObjectCatalog   = "catalog"
)

const (
	ActionValuationCompute = "valuation.compute"

	ActionNumberGenerate = "number.generate"

	ActionNumberingView  = "numbering.view"
	ActionNumberingReset = "numbering.reset"

	ActionDocumentView   = "document.view"
	ActionDocumentCreate = "document.create"
	ActionDocumentUpdate = "document.update"
	ActionDocumentDelete = "document.delete"
	ActionDocumentExport = "document.export"

	ActionCatalogView   = "catalog.view"
	ActionCatalogManage = "catalog.manage"
)

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	keys     map[Role]string
}

// NewEnforcer builds the RBAC enforcer. Policies are persisted through the
// gorm adapter when db is set and kept in memory otherwise.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	var enforcer *casbin.SyncedEnforcer
	if db != nil {
		adapter, err := gormadapter.NewAdapterByDB(db)
		if err != nil {
			return nil, err
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
		if err != nil {
			return nil, err
		}
		enforcer.EnableAutoSave(true)
		if err := enforcer.LoadPolicy(); err != nil {
			return nil, err
		}
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err != nil {
			return nil, err
		}
	}
	enforcer.EnableAutoBuildRoleLinks(true)

	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	keys := make(map[Role]string, 2)
	if h := strings.TrimSpace(p.Config.Auth.AdminKeyHash); h != "" {
		keys[RoleAdmin] = h
	}
	if h := strings.TrimSpace(p.Config.Auth.ClerkKeyHash); h != "" {
		keys[RoleClerk] = h
	}

	log := p.Log.Named("authorization.service")
	if len(keys) == 0 {
		log.Warn("no api key hashes configured, every caller is admin")
	}
	return &ServiceImpl{
		log:      log,
		enforcer: p.Enforcer,
		keys:     keys,
	}
}

func (s *ServiceImpl) Authenticate(ctx context.Context, apiKey string) (Role, error) {
	if len(s.keys) == 0 {
		return RoleAdmin, nil
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrUnauthenticated
	}

	// admin first so a shared key resolves to the wider role
	for _, role := range []Role{RoleAdmin, RoleClerk} {
		hash, ok := s.keys[role]
		if !ok {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil {
			return role, nil
		}
	}
	return "", ErrUnauthenticated
}

func (s *ServiceImpl) Authorize(ctx context.Context, role Role, object string, action string) error {
	if role != RoleAdmin && role != RoleClerk {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(role.subject(), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Clerk permissions
		{RoleClerk.subject(), ObjectValuation, ActionValuationCompute},
		{RoleClerk.subject(), ObjectNumber, ActionNumberGenerate},

		{RoleClerk.subject(), ObjectDocument, ActionDocumentView},
		{RoleClerk.subject(), ObjectDocument, ActionDocumentCreate},
		{RoleClerk.subject(), ObjectDocument, ActionDocumentUpdate},
		{RoleClerk.subject(), ObjectDocument, ActionDocumentDelete},
		{RoleClerk.subject(), ObjectDocument, ActionDocumentExport},

		{RoleClerk.subject(), ObjectCatalog, ActionCatalogView},
		{RoleClerk.subject(), ObjectCatalog, ActionCatalogManage},

		// Admin permissions
		{RoleAdmin.subject(), ObjectNumbering, ActionNumberingView},
		{RoleAdmin.subject(), ObjectNumbering, ActionNumberingReset},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	_, err := enforcer.AddGroupingPolicy(RoleAdmin.subject(), RoleClerk.subject())
	return err
}
