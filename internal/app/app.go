package app

import (
	"go.uber.org/fx"

	"github.com/fieldmed/supplyline/internal/cache"
	"github.com/fieldmed/supplyline/internal/config"
	"github.com/fieldmed/supplyline/internal/database"
	"github.com/fieldmed/supplyline/internal/logger"
	"github.com/fieldmed/supplyline/internal/messaging"
	"github.com/fieldmed/supplyline/internal/observability"
	repositoryorder "github.com/fieldmed/supplyline/internal/repository/order"
	repositorysupply "github.com/fieldmed/supplyline/internal/repository/supply"
	repositoryuser "github.com/fieldmed/supplyline/internal/repository/user"
	grpcserver "github.com/fieldmed/supplyline/internal/server/grpc"
	httpserver "github.com/fieldmed/supplyline/internal/server/http"
	serviceorder "github.com/fieldmed/supplyline/internal/service/order"
	transporthttp "github.com/fieldmed/supplyline/internal/transport/http"
	"github.com/fieldmed/supplyline/internal/worker"
	workerorder "github.com/fieldmed/supplyline/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	repositoryuser.Module,
	repositorysupply.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport (and the optional gRPC health endpoint) on
// top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
