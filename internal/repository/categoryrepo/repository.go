package categoryrepo

import (
	"context"
	"database/sql"
	"time"

	"catalogadmin/internal/domain"
	"catalogadmin/internal/errors"
	"catalogadmin/internal/pkg/logger"
)

// CategoryRepository implementa domain.CategoryRepository sobre o PostgreSQL (somente leitura).
type CategoryRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

var _ domain.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository cria e retorna uma nova instância do Repositório de Categorias.
func NewCategoryRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindAll busca todas as categorias, ordenadas pelo nome.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.CategoryRecord, error) {
	r.logger.Debug("Iniciando FindAll de categorias no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name
        FROM categories
        ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar a consulta de categorias.", err)
		return nil, errors.NewDBError("Falha ao buscar categorias", err)
	}
	defer rows.Close()

	categories := []domain.CategoryRecord{}
	for rows.Next() {
		var category domain.CategoryRecord
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			r.logger.Error("Falha ao mapear categoria.", err)
			return nil, errors.NewDBError("Falha ao mapear categorias do DB", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de categorias.", err)
		return nil, errors.NewDBError("Erro após iteração de categorias", err)
	}

	r.logger.Info("Categorias carregadas.", map[string]interface{}{"count": len(categories)})
	return categories, nil
}
