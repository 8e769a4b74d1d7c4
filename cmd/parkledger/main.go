package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/parkledger/internal/category"
	"github.com/civicworks/parkledger/internal/clock"
	"github.com/civicworks/parkledger/internal/config"
	"github.com/civicworks/parkledger/internal/ledger"
	"github.com/civicworks/parkledger/internal/logger"
	"github.com/civicworks/parkledger/internal/migration"
	obsmetrics "github.com/civicworks/parkledger/internal/observability/metrics"
	"github.com/civicworks/parkledger/internal/payment"
	"github.com/civicworks/parkledger/internal/scheduler"
	"github.com/civicworks/parkledger/internal/server"
	"github.com/civicworks/parkledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		obsmetrics.Module,

		// Sync engine
		payment.Module,
		category.Module,
		ledger.Module,

		// Drivers
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("snowflake node: %v", err)
	}
	return node
}
