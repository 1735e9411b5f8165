package migration

import (
	"github.com/smallbiznis/docflow/internal/kvstore/gormstore"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB `optional:"true"`
	Log *zap.Logger
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p Params) error {
		if p.DB == nil {
			return nil
		}
		return Apply(p.DB, p.Log)
	}),
)

// Apply brings the key-value schema up to date. Postgres runs the versioned
// SQL migrations, other dialects fall back to gorm AutoMigrate.
func Apply(conn *gorm.DB, log *zap.Logger) error {
	if conn.Dialector.Name() != "postgres" {
		if log != nil {
			log.Info("auto-migrating key-value schema", zap.String("dialect", conn.Dialector.Name()))
		}
		return gormstore.Migrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB, log)
}
