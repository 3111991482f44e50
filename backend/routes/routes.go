package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/controllers"
	"lms/backend/gamification"
	"lms/backend/middleware"
	"lms/backend/notifications"
	"lms/backend/progress"
	"lms/backend/roles"
)

type Services struct {
	Reconciler *progress.Reconciler
	Points     *gamification.Service
	Notify     *notifications.Service
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, svc Services) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	app.Get("/api/auth/me", authMiddleware, authController.Me)
	app.Get("/api/auth/role", authMiddleware, authController.GetRole)
	app.Post("/api/auth/password", authMiddleware, authController.ChangePassword)

	// Session routes: redirect resolution works for anonymous callers too.
	sessionController := controllers.NewSessionController(db, cfg)
	app.Get("/api/session/redirect", sessionController.ResolveRedirect)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, svc.Reconciler)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetAvailableCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)

	// Comments routes
	commentsController := controllers.NewCommentsController(db, cfg)
	courses.Get("/:id/comments", commentsController.GetCourseComments)
	courses.Post("/:id/comments", commentsController.AddCourseComment)

	// Lesson + progress routes
	progressController := controllers.NewProgressController(db, cfg, svc.Reconciler)
	lessons := app.Group("/api/lessons", authMiddleware)
	lessons.Get("/:lessonId", coursesController.GetLessonDetails)
	lessons.Post("/:id/progress", progressController.TrackProgress)
	lessons.Get("/:id/progress", progressController.GetLessonProgress)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetProgressOverview)

	// Gamification routes
	gamificationController := controllers.NewGamificationController(db, cfg, svc.Points)
	app.Get("/api/gamification/points", authMiddleware, gamificationController.GetMyPoints)

	// Notification routes
	notificationsController := controllers.NewNotificationsController(cfg, svc.Notify)
	app.Get("/api/notifications", authMiddleware, notificationsController.List)
	app.Post("/api/notifications/:id/read", authMiddleware, notificationsController.MarkRead)

	// Producer routes (course authoring)
	producerMiddleware := middleware.RequireRole(cfg, roles.Producer)
	producer := app.Group("/api/producer", authMiddleware, producerMiddleware)
	producer.Post("/courses", coursesController.CreateCourse)
	producer.Put("/courses/:id", coursesController.UpdateCourse)
	producer.Post("/courses/:id/lessons", coursesController.AddLesson)
	producer.Put("/courses/:id/lessons/:lessonId", coursesController.UpdateLesson)

	// Company routes (tenant collaborator management)
	companyController := controllers.NewCompanyController(db, cfg, svc.Points, svc.Notify)
	companyMiddleware := middleware.RequireRole(cfg, roles.Company)
	company := app.Group("/api/company", authMiddleware, companyMiddleware)
	company.Get("/profile", companyController.GetProfile)
	company.Get("/collaborators", companyController.ListCollaborators)
	company.Post("/collaborators", companyController.AddCollaborator)
	company.Delete("/collaborators/:id", companyController.RemoveCollaborator)
	company.Get("/leaderboard", companyController.Leaderboard)
}
