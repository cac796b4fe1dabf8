package router

import (
	"net/http"
	"strings"
	"time"

	"snp/internal/config"
	"snp/internal/handler"
	"snp/internal/infra"
	"snp/internal/middleware"
	"snp/internal/repository"
	"snp/internal/service"
	"snp/internal/timekey"
	"snp/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Firebase/Postgres, Redis
// rdb may be nil (no shared catalog cache, no dead-letter list).
func New(
	cfg *config.Config,
	rdb *redis.Client,
	repo repository.TicketRepository,
	dir *config.Directorio,
	mailCB *infra.CircuitBreaker,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	httpClient := infra.NewHTTPClient(cfg.HTTPTimeout)
	sheets := infra.NewSheetsRelay(cfg.SheetsEndpoint, httpClient)
	mailer := NewMailSender(cfg, httpClient, mailCB)
	catalogo := infra.NewCatalogoClient(cfg.CatalogoURL, httpClient)

	var dlq worker.DeadLetter = worker.NopDLQ{}
	if rdb != nil {
		dlq = worker.NewRedisDLQ(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	store := service.NewTicketStore(repo, timekey.NewGenerator(cfg.Timezone))
	ticketSvc := service.NewTicketService(store, dir, sheets, mailer, cfg.SNPEmails, dlq)
	catalogoSvc := service.NewCatalogoService(catalogo, rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ticketsH := handler.NewTicketsHandler(ticketSvc)
	productosH := handler.NewProductosHandler(catalogoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(rdb, mailCB, store))

	v1 := r.Group("/v1")
	{
		v1.POST("/tickets", middleware.SubmitRateLimiter(20, time.Minute), ticketsH.Registrar)
		v1.GET("/tickets", ticketsH.Historial)
		v1.POST("/tickets/recargar", ticketsH.Recargar)
		v1.GET("/tickets/:key", ticketsH.Obtener)
		v1.GET("/tickets/:key/pdf", ticketsH.Reimprimir)
		v1.GET("/exportar/tickets.xlsx", ticketsH.Exportar)

		v1.GET("/productos", productosH.Sugerencias)
		v1.GET("/sucursales", handler.Sucursales(dir))
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// NewMailSender picks the email transport from MAIL_TRANSPORT.
func NewMailSender(cfg *config.Config, httpClient *http.Client, cb *infra.CircuitBreaker) service.EmailSender {
	if strings.EqualFold(cfg.MailTransport, "smtp") {
		return infra.NewMailer(cfg, cb)
	}
	return infra.NewMailUpClient(infra.MailUpConfig{
		Endpoint:     cfg.MailUpEndpoint,
		APIKey:       cfg.MailUpAPIKey,
		Username:     cfg.MailUpUsername,
		Secret:       cfg.MailUpSecret,
		FromName:     cfg.MailFromName,
		FromEmail:    cfg.MailFromEmail,
		CampaignName: cfg.MailCampaignName,
		CampaignCode: cfg.MailCampaignCode,
	}, httpClient, cb)
}
