package productrepo

import (
	"context" // Usamos o pacote context do Go
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"catalogadmin/internal/domain"
	"catalogadmin/internal/errors"
	"catalogadmin/internal/pkg/logger"
)

// Códigos de erro do PostgreSQL tratados explicitamente.
const (
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

// ProductRepository implementa domain.ProductRepository diretamente sobre o PostgreSQL.
// Toda leitura vai ao banco: a lista exibida é sempre um retrato do estado atual.
type ProductRepository struct {
	DB        *sql.DB // Conexão principal com o banco de dados (PostgreSQL)
	DBTimeout time.Duration
	logger    logger.Logger
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const selectProducts = `
	SELECT p.id, p.name, p.description, p.price, p.category_id, c.name, p.image
	FROM products p
	JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.ProductRecord, error) {
	var p domain.ProductRecord
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category.ID,
		&p.Category.Name,
		&p.Image,
	)
	return p, err
}

// FindAll busca todos os produtos, na ordem de criação.
func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.ProductRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, selectProducts+` ORDER BY p.created_at, p.id`)
	if err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	products := []domain.ProductRecord{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler produto", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}

	r.logger.Debug("Produtos listados.", map[string]interface{}{"count": len(products)})
	return products, nil
}

// Save insere um novo produto na categoria informada. O ID é gerado aqui, nunca pelo painel.
func (r *ProductRepository) Save(ctx context.Context, categoryID string, payload domain.ProductPayload) (domain.ProductRecord, error) {
	r.logger.Debug("Iniciando Save no repositório.", map[string]interface{}{"category_id": categoryID, "name": payload.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()
	query := `
		WITH inserted AS (
			INSERT INTO products (id, category_id, name, description, price, image, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING id, name, description, price, category_id, image
		)
		SELECT i.id, i.name, i.description, i.price, i.category_id, c.name, i.image
		FROM inserted i
		JOIN categories c ON c.id = i.category_id`

	product, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, query,
		uuid.New().String(),
		categoryID,
		payload.Name,
		payload.Description,
		payload.Price,
		payload.Image,
		now,
	))
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.ProductRecord{}, mapWriteError("criar produto", categoryID, err)
	}

	r.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": product.ID, "category_id": categoryID})
	return product, nil
}

// Update substitui nome, descrição, preço e imagem. A categoria não é alterada.
func (r *ProductRepository) Update(ctx context.Context, id string, payload domain.ProductPayload) (domain.ProductRecord, error) {
	r.logger.Debug("Iniciando Update no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
		WITH updated AS (
			UPDATE products
			SET name = $2, description = $3, price = $4, image = $5, updated_at = $6
			WHERE id = $1
			RETURNING id, name, description, price, category_id, image
		)
		SELECT u.id, u.name, u.description, u.price, u.category_id, c.name, u.image
		FROM updated u
		JOIN categories c ON c.id = u.category_id`

	product, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, query,
		id,
		payload.Name,
		payload.Description,
		payload.Price,
		payload.Image,
		time.Now().UTC(),
	))
	if err == sql.ErrNoRows {
		return domain.ProductRecord{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.ProductRecord{}, mapWriteError("atualizar produto", id, err)
	}

	r.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"id": id})
	return product, nil
}

// Delete remove o produto pelo ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao excluir produto no DB.", err)
		return mapWriteError("excluir produto", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar exclusão", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}

	r.logger.Info("Produto excluído com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// mapWriteError traduz violações de chave estrangeira e IDs malformados em NotFound.
func mapWriteError(action, ref string, err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return errors.NewNotFoundError(fmt.Sprintf("Categoria %s não existe na base de dados.", ref))
		case pqInvalidText:
			return errors.NewNotFoundError(fmt.Sprintf("Identificador %s inválido.", ref))
		}
	}
	return errors.NewDBError(fmt.Sprintf("Falha ao %s", action), err)
}
