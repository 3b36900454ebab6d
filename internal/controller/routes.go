package controller

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/model"
)

// SetupRoutes mounts the API. The Init*Controller functions must have run.
func SetupRoutes(app *fiber.App, resolver middleware.PrincipalResolver) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", Register)
	auth.Post("/login", Login)

	protected := api.Group("/", middleware.AuthMiddleware(resolver))
	protected.Get("/me", GetMe)

	leads := protected.Group("/leads", middleware.RequireRole(model.RoleBroker))
	leads.Get("/", GetMyLeads)
	leads.Post("/", middleware.RequireVerifiedBroker(), CreateLead)
	leads.Post("/:id/verify-otp", middleware.RequireVerifiedBroker(), VerifyLeadOTP)
	leads.Post("/:id/outcome", middleware.RequireVerifiedBroker(), SetLeadOutcome)

	associations := protected.Group("/associations")
	associations.Get("/", middleware.RequireRole(model.RoleBroker, model.RoleBuyer), ListAssociations)
	associations.Post("/", middleware.RequireRole(model.RoleBroker), CreateAssociation)
	associations.Post("/temporary", middleware.RequireRole(model.RoleBroker), CreateTemporaryAssociation)
	associations.Post("/bind", middleware.RequireRole(model.RoleBuyer), BindPendingAssociations)
	associations.Patch("/:id/response", middleware.RequireRole(model.RoleBuyer), RespondAssociation)

	otp := protected.Group("/otp")
	otp.Post("/", IssueOTP)
	otp.Post("/verify", VerifyOTP)

	properties := protected.Group("/properties")
	properties.Post("/:property_id/interest", middleware.RequireRole(model.RoleBuyer), ExpressInterest)
	properties.Post("/:property_id/availability", middleware.RequireRole(model.RoleSeller), AddAvailability)
	properties.Get("/:property_id/availability", ListAvailability)

	transactions := protected.Group("/transactions")
	transactions.Get("/", ListTransactions)
	transactions.Post("/:id/deposit", PayDeposit)
	transactions.Post("/:id/documents", UploadTransactionDocuments)
	transactions.Post("/:id/finalize", FinalizeTransaction)
	transactions.Get("/:id/payout", GetTransactionPayout)
	transactions.Get("/:id/progress", ListProgress)
	transactions.Post("/:id/progress", middleware.RequireRole(model.RoleAdmin), AppendProgress)

	visits := protected.Group("/visits")
	visits.Post("/", middleware.RequireRole(model.RoleBuyer), RequestVisit)
	visits.Get("/seller", middleware.RequireRole(model.RoleSeller), ListSellerVisits)
	visits.Put("/:id", middleware.RequireRole(model.RoleSeller), UpdateVisit)
	visits.Patch("/:id/cancel/buyer", BuyerCancelVisit)
	visits.Patch("/:id/cancel/seller", SellerCancelVisit)
	visits.Patch("/:id/cancel/admin", middleware.RequireRole(model.RoleAdmin), AdminCancelVisit)

	tickets := protected.Group("/support/tickets")
	tickets.Post("/", middleware.RequireRole(model.RoleBuyer, model.RoleSeller), OpenTicket)
	tickets.Get("/", ListTickets)
	tickets.Get("/:id/messages", ListTicketMessages)
	tickets.Post("/:id/messages", PostTicketMessage)
	tickets.Patch("/:id/close", CloseTicket)
}
