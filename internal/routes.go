package internal

import (
	"net/http"
	"reactledger/internal/controllers"
	"reactledger/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("credit", "/credit", http.HandlerFunc(apiController.GetCredit))
	routers.Get("debit", "/debit", http.HandlerFunc(apiController.GetDebit))
	routers.Get("balance", "/balance", http.HandlerFunc(apiController.GetBalance))
	routers.Post("rebuild", "/rebuild", http.HandlerFunc(apiController.StartRebuild))
	routers.Get("rebuild_status", "/rebuild/status", http.HandlerFunc(apiController.RebuildStatus))
	return routers
}
