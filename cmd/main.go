package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"catalogadmin/config"
	"catalogadmin/internal/domain"
	"catalogadmin/internal/notify"
	"catalogadmin/internal/pkg/cache"
	"catalogadmin/internal/pkg/database"
	"catalogadmin/internal/pkg/imagehost"
	"catalogadmin/internal/pkg/logger"
	"catalogadmin/internal/pkg/middleware"
	"catalogadmin/internal/pkg/token"

	// Camadas da tela de administração para Injeção de Dependências
	"catalogadmin/internal/api/admin"  // Handlers
	"catalogadmin/internal/api/router" // Roteador central
	"catalogadmin/internal/gateway/catalogapi"
	"catalogadmin/internal/repository/categoryrepo"
	"catalogadmin/internal/repository/productrepo"
	"catalogadmin/internal/service/catalogservice"
	"catalogadmin/internal/service/dialogservice"
	"catalogadmin/internal/service/sessionservice"
)

func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	log.Println("⚡ Inicializando painel de administração do catálogo...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Logger
	cfg := config.LoadConfig()
	appLog := logger.New(logger.Options{Level: cfg.LogLevel, Environment: cfg.Environment, File: cfg.LogFile})
	if s, ok := appLog.(interface{ Sync() error }); ok {
		defer s.Sync()
	}
	appLog.Info("Configurações carregadas.", map[string]interface{}{"backend": cfg.CatalogBackend, "env": cfg.Environment})

	// 2. Cache (Redis): sessão e rate limit
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao Redis.", err)
	}
	defer cacheClient.Close()
	appLog.Info("Conexão Redis estabelecida.", nil)

	// 3. Portão de administrador, resolvido uma única vez
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	sessionSvc := sessionservice.NewService(
		cacheClient,
		tokenSvc,
		sessionservice.Credentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		cfg.TokenExpiry,
		appLog,
	)
	resolveCtx, cancelResolve := context.WithTimeout(context.Background(), 5*time.Second)
	gate := sessionSvc.Resolve(resolveCtx, cfg.AdminSessionID)
	cancelResolve()

	// 4. Backend do catálogo (Repositórios)
	var (
		products   domain.ProductRepository
		categories domain.CategoryRepository
		db         *sql.DB
	)
	switch cfg.CatalogBackend {
	case config.BackendPostgres:
		db, err = database.NewPostgresDB(cfg.DatabaseURL, cfg.DBTimeout)
		if err != nil {
			appLog.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		appLog.Info("Conexão PostgreSQL estabelecida.", nil)
		products = productrepo.NewProductRepository(db, cfg.DBTimeout, appLog)
		categories = categoryrepo.NewCategoryRepository(db, cfg.DBTimeout, appLog)
	default:
		apiClient, err := catalogapi.NewClient(cfg.CatalogAPIURL, &http.Client{Timeout: cfg.CatalogAPITimeout}, gate.Token())
		if err != nil {
			appLog.Fatal("Configuração inválida da API do catálogo.", err)
		}
		products = apiClient
		categories = apiClient.Categories()
		appLog.Info("Cliente da API do catálogo configurado.", map[string]interface{}{"url": cfg.CatalogAPIURL})
	}
	if db != nil {
		defer db.Close()
	}

	uploader, err := imagehost.NewUploader(cfg.UploadURL, cfg.UploadPreset, &http.Client{Timeout: cfg.UploadTimeout})
	if err != nil {
		appLog.Fatal("Configuração inválida do serviço de imagens.", err)
	}

	// 5. Serviços (Lógica da tela)
	feed := notify.NewFeed(cfg.NotificationBuffer)
	list := catalogservice.NewController(products, feed, appLog)
	dialog := dialogservice.NewWorkflow(products, categories, uploader, list, feed, appLog)

	// 6. Handler e Roteador
	adminHandler := admin.NewHandler(list, dialog, feed, appLog, cfg.UploadMaxBytes)
	r := router.NewRouter(adminHandler,
		middleware.RequireAdmin(gate),
		middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod),
	)

	// 7. Montagem da tela: primeira carga da lista
	if gate.Allowed() {
		mountCtx, cancelMount := context.WithTimeout(context.Background(), cfg.CatalogAPITimeout)
		if err := list.Refresh(mountCtx); err != nil {
			appLog.Warn("Carga inicial da lista falhou.", map[string]interface{}{"error": err.Error()})
		}
		cancelMount()
	} else {
		appLog.Warn("Sessão sem permissão de administrador: a tela não será exibida.", nil)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.UploadTimeout,
		WriteTimeout: cfg.UploadTimeout + cfg.CatalogAPITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// 8. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Painel ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
