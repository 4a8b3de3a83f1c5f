package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"catalogadmin/config"
	"catalogadmin/internal/pkg/cache"
	"catalogadmin/internal/pkg/logger"
	"catalogadmin/internal/pkg/token"
	"catalogadmin/internal/service/sessionservice"
)

// Ferramenta de sessão do painel:
//
//	login -email admin@loja.com -password ...   cria a sessão e imprime o ID
//	login -hash -password ...                   imprime o hash bcrypt para ADMIN_PASSWORD_HASH
//	login -logout <session-id>                  remove a sessão
func main() {
	var (
		email    string
		password string
		hashOnly bool
		logout   string
	)
	flag.StringVar(&email, "email", "", "e-mail do administrador")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "senha do administrador (padrão: $ADMIN_PASSWORD)")
	flag.BoolVar(&hashOnly, "hash", false, "apenas imprime o hash bcrypt da senha")
	flag.StringVar(&logout, "logout", "", "ID da sessão a remover")
	flag.Parse()

	if hashOnly {
		if password == "" {
			log.Fatal("login: -password é obrigatório com -hash")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("login: falha ao gerar hash: %v", err)
		}
		fmt.Println(string(hash))
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Aviso: Arquivo .env não encontrado. Usando apenas o ambiente do sistema: %v", err)
	}
	cfg := config.LoadConfig()
	appLog := logger.New(logger.Options{Level: cfg.LogLevel, Environment: cfg.Environment, File: cfg.LogFile})

	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao Redis.", err)
	}
	defer cacheClient.Close()

	svc := sessionservice.NewService(
		cacheClient,
		token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry),
		sessionservice.Credentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		cfg.TokenExpiry,
		appLog,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if logout != "" {
		if err := svc.Logout(ctx, logout); err != nil {
			appLog.Fatal("Falha ao remover a sessão.", err)
		}
		fmt.Println("sessão removida")
		return
	}

	if email == "" {
		email = cfg.AdminEmail
	}
	session, err := svc.Login(ctx, email, password)
	if err != nil {
		appLog.Fatal("Login recusado.", err)
	}

	fmt.Printf("ADMIN_SESSION_ID=%s\n", session.ID)
	fmt.Printf("# expira em %s\n", session.ExpiresAt.Format(time.RFC3339))
}
