package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/middleware"
)

// RegisterHandlers mounts the v1 API on router. Paths match
// public/docs/v1/openapi.yml.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	auth := router.Group("/auth")
	auth.Post("/register", s.PostAuthRegister)
	auth.Get("/activate", s.GetAuthActivate)
	auth.Post("/login", s.PostAuthLogin)
	auth.Post("/logout", s.PostAuthLogout)

	account := router.Group("/account", middleware.RequireAPISessionAuth)
	account.Get("/", s.GetAccount)
	account.Get("/transactions", s.GetAccountTransactions)
	account.Post("/credits/consume", s.PostAccountCreditsConsume)

	cms := router.Group("/cms")
	cms.Get("/pages/:id", s.GetCMSPage)
	cms.Get("/databases/:id/documents", s.GetCMSDocuments)
	cms.Post("/databases/:id/documents", middleware.RequireAPIAdmin, s.PostCMSDocuments)
	cms.Patch("/pages/:id", middleware.RequireAPIAdmin, s.PatchCMSPage)
	cms.Delete("/pages/:id", middleware.RequireAPIAdmin, s.DeleteCMSPage)
	cms.Get("/pages/:id/blocks", s.GetCMSPageBlocks)
	cms.Post("/pages/:id/blocks", middleware.RequireAPIAdmin, s.PostCMSPageBlocks)
	cms.Patch("/blocks/:id", middleware.RequireAPIAdmin, s.PatchCMSBlock)
	cms.Delete("/blocks/:id", middleware.RequireAPIAdmin, s.DeleteCMSBlock)
	cms.Get("/databases/:id", s.GetCMSDatabase)

	router.Post("/blobs", middleware.RequireAPISessionAuth, s.PostBlob)
	router.Delete("/blobs/*", middleware.RequireAPISessionAuth, s.DeleteBlob)
}
