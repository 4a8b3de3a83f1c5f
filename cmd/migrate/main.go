package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"catalogadmin/config"
	"catalogadmin/internal/pkg/database"
	"catalogadmin/internal/pkg/logger"
	migrations "catalogadmin/sql"
)

// gooseLogger encaminha a saída do goose para o logger estruturado do painel.
type gooseLogger struct {
	log logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info(fmt.Sprintf(format, v...), map[string]interface{}{"component": "goose"})
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal(fmt.Sprintf(format, v...), nil)
}

func main() {
	dir := flag.String("dir", "", "diretório das migrações (vazio usa as migrações embutidas no binário)")
	flag.Parse()

	// 0. Ambiente e logger
	_ = godotenv.Load()
	cfg := config.LoadConfig()
	appLog := logger.New(logger.Options{Level: cfg.LogLevel, Environment: cfg.Environment, File: cfg.LogFile})
	if s, ok := appLog.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	// As migrações só fazem sentido com o backend direto no PostgreSQL.
	if cfg.CatalogBackend != config.BackendPostgres {
		appLog.Fatal(fmt.Sprintf("Migrações exigem CATALOG_BACKEND=%s (atual: %q).", config.BackendPostgres, cfg.CatalogBackend), nil)
	}

	// 1. Banco de dados
	db, err := database.NewPostgresDB(cfg.DatabaseURL, cfg.DBTimeout)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()

	// 2. Origem das migrações: embutidas por padrão, disco quando -dir é informado
	source := "."
	if *dir != "" {
		source = *dir
	} else {
		goose.SetBaseFS(migrations.FS)
	}
	goose.SetLogger(gooseLogger{log: appLog})
	if err := goose.SetDialect("postgres"); err != nil {
		appLog.Fatal("Dialeto do goose não suportado.", err)
	}

	// 3. Comando (padrão: up)
	command, args := "up", []string(nil)
	if rest := flag.Args(); len(rest) > 0 {
		command, args = rest[0], rest[1:]
	}

	if err := goose.Run(command, db, source, args...); err != nil {
		appLog.Fatal(fmt.Sprintf("goose %s falhou.", command), err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		appLog.Warn("Não foi possível ler a versão do esquema.", map[string]interface{}{"error": err.Error()})
		return
	}
	appLog.Info("Migrações concluídas.", map[string]interface{}{"command": command, "version": version, "source": source})
}
