package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ofuentes/wms-bridge/api/controllers"
	"github.com/ofuentes/wms-bridge/api/middleware"
	authsvc "github.com/ofuentes/wms-bridge/internal/auth"
	binsvc "github.com/ofuentes/wms-bridge/internal/bins"
	branchsvc "github.com/ofuentes/wms-bridge/internal/branches"
	countsvc "github.com/ofuentes/wms-bridge/internal/counts"
	dashsvc "github.com/ofuentes/wms-bridge/internal/dashboard"
	grposvc "github.com/ofuentes/wms-bridge/internal/grpo"
	labelsvc "github.com/ofuentes/wms-bridge/internal/labels"
	lookupsvc "github.com/ofuentes/wms-bridge/internal/lookup"
	picksvc "github.com/ofuentes/wms-bridge/internal/picklists"
	transfersvc "github.com/ofuentes/wms-bridge/internal/transfers"
	usersvc "github.com/ofuentes/wms-bridge/internal/users"
	"github.com/ofuentes/wms-bridge/pkg/auth/session"
	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/db"
	"github.com/ofuentes/wms-bridge/pkg/erp"
	"github.com/ofuentes/wms-bridge/pkg/logger"
	pkgredis "github.com/ofuentes/wms-bridge/pkg/redis"
)

var qcRoles = []string{"qc", "manager", "admin"}

var adminRoles = []string{"admin", "manager"}

// NewRouter assembles the chi router for the API binary.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	erpClient *erp.Client,
	sessionManager *session.Manager,
	authService authsvc.Service,
	dashboardService dashsvc.Service,
	grpoService grposvc.Service,
	transferService transfersvc.Service,
	pickListService picksvc.Service,
	countService countsvc.Service,
	binService binsvc.Service,
	labelService labelsvc.Service,
	lookupService lookupsvc.Service,
	userService usersvc.Service,
	branchService branchsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, erpClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
		r.Get("/me", controllers.AuthMe(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/v1/dashboard/stats", controllers.DashboardStats(dashboardService, logg))

		r.Route("/v1/grpo", func(r chi.Router) {
			r.Get("/", controllers.GRPOListMine(grpoService, logg))
			r.Post("/", controllers.GRPOCreate(grpoService, logg))
			r.Route("/{receiptId}", func(r chi.Router) {
				r.Get("/", controllers.GRPODetail(grpoService, logg))
				r.Post("/lines", controllers.GRPOAddLine(grpoService, logg))
				r.Patch("/lines/{lineId}", controllers.GRPOUpdateLine(grpoService, logg))
				r.Delete("/lines/{lineId}", controllers.GRPORemoveLine(grpoService, logg))
				r.Post("/submit", controllers.GRPOSubmit(grpoService, logg))
				r.Post("/reopen", controllers.GRPOReopen(grpoService, logg))
				r.Post("/post", controllers.GRPOPost(grpoService, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, qcRoles...))
					r.Post("/approve", controllers.GRPOApprove(grpoService, logg))
					r.Post("/reject", controllers.GRPOReject(grpoService, logg))
				})
			})
		})

		r.Route("/v1/transfers", func(r chi.Router) {
			r.Get("/", controllers.TransferListMine(transferService, logg))
			r.Post("/", controllers.TransferCreate(transferService, logg))
			r.Route("/{transferId}", func(r chi.Router) {
				r.Get("/", controllers.TransferDetail(transferService, logg))
				r.Get("/history", controllers.TransferHistory(transferService, logg))
				r.Post("/lines", controllers.TransferAddLine(transferService, logg))
				r.Delete("/lines/{lineId}", controllers.TransferRemoveLine(transferService, logg))
				r.Post("/submit", controllers.TransferSubmit(transferService, logg))
				r.Post("/reopen", controllers.TransferReopen(transferService, logg))
				r.Post("/post", controllers.TransferPost(transferService, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, qcRoles...))
					r.Post("/qc-approve", controllers.TransferApprove(transferService, logg))
					r.Post("/qc-reject", controllers.TransferReject(transferService, logg))
				})
			})
		})

		r.Route("/v1/pick-lists", func(r chi.Router) {
			r.Get("/", controllers.PickListList(pickListService, logg))
			r.Post("/sync", controllers.PickListSyncOpen(pickListService, logg))
			r.Post("/sync/{absEntry}", controllers.PickListSync(pickListService, logg))
			r.Route("/{pickListId}", func(r chi.Router) {
				r.Get("/", controllers.PickListDetail(pickListService, logg))
				r.Post("/assign", controllers.PickListAssign(pickListService, logg))
				r.Post("/lines/{lineId}/pick", controllers.PickListReportPick(pickListService, logg))
				r.Post("/close", controllers.PickListClose(pickListService, logg))
				r.Post("/cancel", controllers.PickListCancel(pickListService, logg))
			})
		})

		r.Route("/v1/counts", func(r chi.Router) {
			r.Get("/", controllers.CountListMine(countService, logg))
			r.Post("/", controllers.CountCreate(countService, logg))
			r.Route("/{countId}", func(r chi.Router) {
				r.Get("/", controllers.CountDetail(countService, logg))
				r.Post("/lines", controllers.CountAddLine(countService, logg))
				r.Patch("/lines/{lineId}", controllers.CountRecord(countService, logg))
				r.Delete("/lines/{lineId}", controllers.CountRemoveLine(countService, logg))
				r.Post("/submit", controllers.CountSubmit(countService, logg))
				r.Post("/post", controllers.CountPost(countService, logg))
				r.Post("/cancel", controllers.CountCancel(countService, logg))
			})
		})

		r.Route("/v1/bins", func(r chi.Router) {
			r.Post("/scan", controllers.BinScan(binService, logg))
			r.Get("/scans", controllers.BinScanHistory(binService, logg))
			r.Post("/{binCode}/sync", controllers.BinSync(binService, logg))
		})

		r.Route("/v1/labels", func(r chi.Router) {
			r.Get("/", controllers.LabelHistory(labelService, logg))
			r.Post("/qr", controllers.LabelGenerateQR(labelService, logg))
			r.Post("/barcode", controllers.LabelGenerateBarcode(labelService, logg))
			r.Post("/{labelId}/reprint", controllers.LabelReprint(labelService, logg))
		})

		r.Route("/v1/lookup", func(r chi.Router) {
			r.Get("/warehouses", controllers.LookupWarehouses(lookupService, logg))
			r.Get("/warehouses/{warehouseCode}/bins", controllers.LookupBins(lookupService, logg))
			r.Get("/suppliers", controllers.LookupSuppliers(lookupService, logg))
			r.Get("/items/{itemCode}", controllers.LookupItem(lookupService, logg))
			r.Get("/items/{itemCode}/batches", controllers.LookupBatches(lookupService, logg))
			r.Get("/purchase-orders", controllers.LookupOpenPurchaseOrders(lookupService, logg))
			r.Get("/purchase-orders/{docEntry}", controllers.LookupPurchaseOrder(lookupService, logg))
			r.Get("/transfer-requests", controllers.LookupOpenTransferRequests(lookupService, logg))
			r.Get("/transfer-requests/{docEntry}", controllers.LookupTransferRequest(lookupService, logg))
		})

		r.With(middleware.RequireRole(logg, qcRoles...)).
			Get("/v1/qc/pending", controllers.QCPending(grpoService, transferService, logg))

		r.Post("/v1/users/me/change-password", controllers.UserChangePassword(userService, logg))

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, adminRoles...))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.UserList(userService, logg))
				r.Post("/", controllers.UserCreate(userService, logg))
				r.Get("/{userId}", controllers.UserDetail(userService, logg))
				r.Patch("/{userId}", controllers.UserUpdate(userService, logg))
				r.Post("/{userId}/reset-password", controllers.UserResetPassword(userService, logg))
				r.Delete("/{userId}", controllers.UserDeactivate(userService, logg))
			})

			r.Route("/branches", func(r chi.Router) {
				r.Get("/", controllers.BranchList(branchService, logg))
				r.Post("/", controllers.BranchCreate(branchService, logg))
				r.Get("/{branchId}", controllers.BranchDetail(branchService, logg))
				r.Patch("/{branchId}", controllers.BranchUpdate(branchService, logg))
				r.Delete("/{branchId}", controllers.BranchDelete(branchService, logg))
			})
		})
	})

	return r
}
