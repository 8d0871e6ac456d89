package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pawfinderz-backend/api/controllers"
	"github.com/angelmondragon/pawfinderz-backend/api/middleware"
	"github.com/angelmondragon/pawfinderz-backend/internal/admin"
	"github.com/angelmondragon/pawfinderz-backend/internal/auth"
	"github.com/angelmondragon/pawfinderz-backend/internal/groupposts"
	"github.com/angelmondragon/pawfinderz-backend/internal/groups"
	"github.com/angelmondragon/pawfinderz-backend/internal/pets"
	"github.com/angelmondragon/pawfinderz-backend/internal/uploads"
	"github.com/angelmondragon/pawfinderz-backend/internal/users"
	"github.com/angelmondragon/pawfinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/pawfinderz-backend/pkg/redis"
)

// Services holds the domain services mounted by the router. Nil services
// answer with an internal error.
type Services struct {
	Auth    auth.Service
	Users   users.Service
	Pets    pets.Service
	Groups  groups.Service
	Posts   groupposts.Service
	Uploads uploads.Service
	Admin   admin.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(httpMetrics),
		middleware.RateLimit(middleware.NewClientLimiter(cfg.RateLimit), logg),
	)

	// Interfaces must stay nil when Redis is absent.
	var (
		windowStore middleware.WindowLimiter
		idemStore   redis.IdempotencyStore
		redisP      db.Pinger
	)
	if redisClient != nil {
		windowStore = redisClient
		idemStore = redisClient
		redisP = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]db.Pinger{"db": dbP, "redis": redisP}, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, windowStore, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, windowStore, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
			r.With(requireAuth).Get("/me", controllers.UsersMe(svcs.Users, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", controllers.UsersMe(svcs.Users, logg))
				r.Put("/me", controllers.UsersUpdateMe(svcs.Users, logg))
				r.Get("/me/groups", controllers.UsersMyGroups(svcs.Groups, logg))
				r.Get("/me/pets", controllers.UsersMyPets(svcs.Pets, logg))
				r.Get("/me/adopted", controllers.UsersMyAdopted(svcs.Pets, logg))
				r.Get("/me/liked", controllers.UsersMyLiked(svcs.Pets, logg))
			})
			r.Get("/{userId}", controllers.UsersProfile(svcs.Users, logg))
		})

		r.Route("/pets", func(r chi.Router) {
			r.Get("/", controllers.PetsList(svcs.Pets, logg))
			r.Get("/{petId}", controllers.PetsGet(svcs.Pets, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", controllers.PetsCreate(svcs.Pets, logg))
				r.Put("/{petId}", controllers.PetsUpdate(svcs.Pets, logg))
				r.Delete("/{petId}", controllers.PetsDelete(svcs.Pets, logg))
				r.Post("/{petId}/adopt", controllers.PetsAdopt(svcs.Pets, logg))
				r.Post("/{petId}/like", controllers.PetsLike(svcs.Pets, logg))
				r.Post("/{petId}/report", controllers.PetsReport(svcs.Pets, logg))
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", controllers.GroupsList(svcs.Groups, logg))
			r.Get("/{groupId}", controllers.GroupsGet(svcs.Groups, logg))
			r.Get("/{groupId}/members", controllers.GroupsMembers(svcs.Groups, logg))
			r.Get("/{groupId}/posts", controllers.GroupPostsList(svcs.Posts, logg))
			r.Get("/{groupId}/posts/{postId}", controllers.GroupPostsGet(svcs.Posts, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", controllers.GroupsCreate(svcs.Groups, logg))
				r.Put("/{groupId}", controllers.GroupsUpdate(svcs.Groups, logg))
				r.Delete("/{groupId}", controllers.GroupsDelete(svcs.Groups, logg))
				r.Post("/{groupId}/join", controllers.GroupsJoin(svcs.Groups, logg))
				r.Post("/{groupId}/leave", controllers.GroupsLeave(svcs.Groups, logg))
				r.Get("/{groupId}/requests", controllers.GroupsRequests(svcs.Groups, logg))

				r.Route("/{groupId}/members/{userId}", func(r chi.Router) {
					r.Post("/approve", controllers.GroupsApprove(svcs.Groups, logg))
					r.Post("/reject", controllers.GroupsReject(svcs.Groups, logg))
					r.Post("/ban", controllers.GroupsBan(svcs.Groups, logg))
					r.Post("/unban", controllers.GroupsUnban(svcs.Groups, logg))
					r.Post("/promote", controllers.GroupsPromote(svcs.Groups, logg))
					r.Post("/demote", controllers.GroupsDemote(svcs.Groups, logg))
				})

				r.Post("/{groupId}/posts", controllers.GroupPostsCreate(svcs.Posts, logg))
				r.Put("/{groupId}/posts/{postId}", controllers.GroupPostsUpdate(svcs.Posts, logg))
				r.Delete("/{groupId}/posts/{postId}", controllers.GroupPostsDelete(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/approve", controllers.GroupPostsApprove(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/archive", controllers.GroupPostsArchive(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/pin", controllers.GroupPostsPin(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/unpin", controllers.GroupPostsUnpin(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/like", controllers.GroupPostsLike(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/share", controllers.GroupPostsShare(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/comments", controllers.GroupPostsAddComment(svcs.Posts, logg))
				r.Delete("/{groupId}/posts/{postId}/comments/{commentId}", controllers.GroupPostsDeleteComment(svcs.Posts, logg))
				r.Post("/{groupId}/posts/{postId}/comments/{commentId}/replies", controllers.GroupPostsAddReply(svcs.Posts, logg))
				r.Delete("/{groupId}/posts/{postId}/comments/{commentId}/replies/{replyId}", controllers.GroupPostsDeleteReply(svcs.Posts, logg))
			})
		})

		r.With(requireAuth).Post("/upload", controllers.UploadImage(svcs.Uploads, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/stats", controllers.AdminStats(svcs.Admin, logg))
			r.Get("/users", controllers.AdminUsersList(svcs.Admin, logg))
			r.Patch("/users/{userId}", controllers.AdminUsersUpdate(svcs.Admin, logg))
			r.Delete("/users/{userId}", controllers.AdminUsersDelete(svcs.Admin, logg))
			r.Get("/pets", controllers.AdminPetsList(svcs.Admin, logg))
			r.Delete("/pets/{petId}", controllers.AdminPetsDelete(svcs.Admin, logg))
			r.Get("/reports", controllers.AdminReportsList(svcs.Admin, logg))
			r.Post("/reports/{reportId}/resolve", controllers.AdminReportsResolve(svcs.Admin, logg))
		})
	})

	return r
}
