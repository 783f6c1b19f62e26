package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/handlers"
	admin_handlers "github.com/sahilchouksey/course-catalog/handlers/admin"
	auth_handlers "github.com/sahilchouksey/course-catalog/handlers/auth"
	competency_handlers "github.com/sahilchouksey/course-catalog/handlers/competency"
	course_handlers "github.com/sahilchouksey/course-catalog/handlers/course"
	domain_handlers "github.com/sahilchouksey/course-catalog/handlers/domain"
	element_handlers "github.com/sahilchouksey/course-catalog/handlers/element"
	search_handlers "github.com/sahilchouksey/course-catalog/handlers/search"
	term_handlers "github.com/sahilchouksey/course-catalog/handlers/term"
	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/logger"
	"github.com/sahilchouksey/course-catalog/utils/middleware"
)

// Dependencies are the services the routes are built from. BruteForce and
// Avatars are optional.
type Dependencies struct {
	Repo       *repository.Repository
	JWT        *auth.JWTManager
	Blacklist  *auth.BlacklistService
	BruteForce *middleware.BruteForceProtection
	Avatars    auth_handlers.AvatarStore
	Log        *logger.Logger
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	authMiddleware := middleware.NewAuthMiddleware(deps.JWT, deps.Blacklist, deps.Repo)
	member := authMiddleware.Require(model.GroupMember)

	authHandler := auth_handlers.NewAuthHandler(deps.Repo, deps.JWT, deps.Blacklist, deps.BruteForce, deps.Avatars, deps.Log)
	adminHandler := admin_handlers.NewAdminHandler(deps.Repo, deps.Log)
	termHandler := term_handlers.NewTermHandler(deps.Repo)
	domainHandler := domain_handlers.NewDomainHandler(deps.Repo)
	courseHandler := course_handlers.NewCourseHandler(deps.Repo)
	competencyHandler := competency_handlers.NewCompetencyHandler(deps.Repo)
	elementHandler := element_handlers.NewElementHandler(deps.Repo)
	searchHandler := search_handlers.NewSearchHandler(deps.Repo)

	app.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, deps.Repo)
	})

	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", deps.BruteForce.Guard(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", member, authHandler.Logout)
	authGroup.Get("/profile", member, authHandler.GetProfile)
	authGroup.Put("/profile", member, authHandler.UpdateProfile)
	authGroup.Put("/password", member, authHandler.ChangePassword)
	authGroup.Put("/avatar", member, authHandler.UploadAvatar)

	// Terms
	terms := api.Group("/terms")
	terms.Get("/", termHandler.ListTerms)
	terms.Post("/", member, termHandler.CreateTerm)
	terms.Get("/:id", termHandler.GetTerm)
	terms.Put("/:id", member, termHandler.UpdateTerm)
	terms.Delete("/:id", member, termHandler.DeleteTerm)

	// Domains
	domains := api.Group("/domains")
	domains.Get("/", domainHandler.ListDomains)
	domains.Post("/", member, domainHandler.CreateDomain)
	domains.Get("/:id", domainHandler.GetDomain)
	domains.Put("/:id", member, domainHandler.UpdateDomain)
	domains.Delete("/:id", member, domainHandler.DeleteDomain)

	// Courses
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Post("/", member, courseHandler.CreateCourse)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Put("/:id", member, courseHandler.PutCourse)
	courses.Delete("/:id", member, courseHandler.DeleteCourse)
	courses.Get("/:id/domain", courseHandler.GetCourseDomain)
	courses.Get("/:id/competencies", courseHandler.ListCourseCompetencies)
	courses.Get("/:id/competencies/:cid", courseHandler.GetCourseCompetency)
	courses.Get("/:id/competencies/:cid/elements", courseHandler.ListCourseElements)
	courses.Post("/:id/competencies/:cid/elements", member, courseHandler.CreateCourseElement)
	courses.Get("/:id/elements", courseHandler.ListElementLinks)
	courses.Post("/:id/elements", member, courseHandler.CreateElementLink)
	courses.Delete("/:id/elements", member, courseHandler.DeleteAllElementLinks)
	courses.Put("/:id/elements/:eid", member, courseHandler.UpdateElementLink)
	courses.Delete("/:id/elements/:eid", member, courseHandler.DeleteElementLink)

	// Competencies
	competencies := api.Group("/competencies")
	competencies.Get("/", competencyHandler.ListCompetencies)
	competencies.Post("/", member, competencyHandler.CreateCompetency)
	competencies.Get("/:id", competencyHandler.GetCompetency)
	competencies.Put("/:id", member, competencyHandler.PutCompetency)
	competencies.Delete("/:id", member, competencyHandler.DeleteCompetency)
	competencies.Get("/:id/elements", competencyHandler.ListCompetencyElements)
	competencies.Post("/:id/elements", member, competencyHandler.CreateCompetencyElement)
	competencies.Get("/:id/courses", competencyHandler.ListCompetencyCourses)

	// Elements; /latest is registered before /:id
	elements := api.Group("/elements")
	elements.Get("/", elementHandler.ListElements)
	elements.Post("/", member, elementHandler.CreateElement)
	elements.Get("/latest", elementHandler.GetLatestElement)
	elements.Get("/:id", elementHandler.GetElement)
	elements.Put("/:id", member, elementHandler.UpdateElement)
	elements.Delete("/:id", member, elementHandler.DeleteElement)
	elements.Get("/:id/courses", elementHandler.ListElementCourses)
	elements.Delete("/:id/courses", member, elementHandler.DeleteElementLinks)

	// Search and groupings
	api.Get("/search", searchHandler.Search)
	api.Get("/groupings/elements", searchHandler.ElementGroupings)
	api.Get("/groupings/competencies", searchHandler.CompetencyGroupings)

	// Admin routes
	admin := api.Group("/admin", authMiddleware.Require(model.GroupAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:email", adminHandler.GetUser)
	admin.Put("/users/:email/block", adminHandler.ToggleBlock)
	admin.Put("/users/:email/group", adminHandler.SetGroup)
	admin.Delete("/users/:email", adminHandler.DeleteUser)
	admin.Get("/audit-logs", adminHandler.ListAuditLogs)
	admin.Get("/jobs", adminHandler.ListJobRuns)
}
