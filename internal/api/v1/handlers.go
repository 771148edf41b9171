package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/ManuelReschke/SaaSFox/app/controllers"
)

// Pong is the body of GET /ping.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer binds the v1 operations to controllers
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

func (s *APIServer) PostAuthRegister(c *fiber.Ctx) error {
	return controllers.HandleAuthRegister(c)
}

func (s *APIServer) GetAuthActivate(c *fiber.Ctx) error {
	return controllers.HandleAuthActivate(c)
}

func (s *APIServer) PostAuthLogin(c *fiber.Ctx) error {
	return controllers.HandleAuthLogin(c)
}

func (s *APIServer) PostAuthLogout(c *fiber.Ctx) error {
	return controllers.HandleAuthLogout(c)
}

// GetAccount returns profile and credit balance of the session user.
func (s *APIServer) GetAccount(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

func (s *APIServer) GetAccountTransactions(c *fiber.Ctx) error {
	return controllers.HandleListCreditTransactions(c)
}

func (s *APIServer) PostAccountCreditsConsume(c *fiber.Ctx) error {
	return controllers.HandleConsumeCredits(c)
}

func (s *APIServer) GetCMSPage(c *fiber.Ctx) error {
	return controllers.HandleCMSGetPage(c)
}

func (s *APIServer) PatchCMSPage(c *fiber.Ctx) error {
	return controllers.HandleCMSUpdatePage(c)
}

func (s *APIServer) DeleteCMSPage(c *fiber.Ctx) error {
	return controllers.HandleCMSDeletePage(c)
}

func (s *APIServer) PostCMSPageBlocks(c *fiber.Ctx) error {
	return controllers.HandleCMSAppendBlocks(c)
}

func (s *APIServer) GetCMSDocuments(c *fiber.Ctx) error {
	return controllers.HandleCMSListDocuments(c)
}

func (s *APIServer) PostCMSDocuments(c *fiber.Ctx) error {
	return controllers.HandleCMSCreateDocument(c)
}

func (s *APIServer) GetCMSDatabase(c *fiber.Ctx) error {
	return controllers.HandleCMSGetSchema(c)
}

func (s *APIServer) GetCMSPageBlocks(c *fiber.Ctx) error {
	return controllers.HandleCMSListBlocks(c)
}

func (s *APIServer) PatchCMSBlock(c *fiber.Ctx) error {
	return controllers.HandleCMSUpdateBlock(c)
}

func (s *APIServer) DeleteCMSBlock(c *fiber.Ctx) error {
	return controllers.HandleCMSDeleteBlock(c)
}

// PostBlob stores a multipart upload in the blob bucket.
func (s *APIServer) PostBlob(c *fiber.Ctx) error {
	return controllers.HandleBlobUpload(c)
}

func (s *APIServer) DeleteBlob(c *fiber.Ctx) error {
	return controllers.HandleBlobDelete(c)
}
