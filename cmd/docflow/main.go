package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/docflow/internal/authorization"
	"github.com/smallbiznis/docflow/internal/catalog"
	"github.com/smallbiznis/docflow/internal/clock"
	"github.com/smallbiznis/docflow/internal/config"
	"github.com/smallbiznis/docflow/internal/document"
	"github.com/smallbiznis/docflow/internal/export"
	"github.com/smallbiznis/docflow/internal/kvstore"
	"github.com/smallbiznis/docflow/internal/migration"
	"github.com/smallbiznis/docflow/internal/numbering"
	"github.com/smallbiznis/docflow/internal/observability"
	"github.com/smallbiznis/docflow/internal/render"
	"github.com/smallbiznis/docflow/internal/server"
	"github.com/smallbiznis/docflow/internal/valuation"
	"github.com/smallbiznis/docflow/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		kvstore.Module,
		clock.Module,

		// Functional Domains
		valuation.Module,
		numbering.Module,
		catalog.Module,
		document.Module,
		render.Module,
		export.Module,
		authorization.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
