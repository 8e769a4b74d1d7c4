package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/parkledger/internal/category/domain"
	"github.com/civicworks/parkledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("category.service"),
		genID: p.GenID,
	}
}

// GetOrCreate returns the category for code, inserting it from the static
// catalog on first use. Concurrent first-use callers race on the unique code
// index; the loser re-reads the winner's row instead of failing.
func (s *Service) GetOrCreate(ctx context.Context, code domain.Code) (domain.Category, error) {
	code = domain.Code(strings.TrimSpace(string(code)))
	if code == "" {
		return domain.Category{}, domain.ErrInvalidCode
	}

	existing, err := s.getByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Category{}, err
	}

	entry, ok := domain.Catalog[code]
	if !ok {
		entry = domain.FallbackCatalogEntry(code)
	}

	category := domain.Category{
		ID:          s.genID.Generate(),
		Code:        code,
		Name:        entry.Name,
		Description: entry.Description,
		Level:       1,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.getByCode(ctx, code)
		}
		return domain.Category{}, err
	}

	s.log.Info("category created",
		zap.String("code", string(code)),
		zap.String("name", entry.Name),
	)

	return category, nil
}

func (s *Service) getByCode(ctx context.Context, code domain.Code) (domain.Category, error) {
	var category domain.Category
	err := s.db.WithContext(ctx).
		Where("code = ?", string(code)).
		First(&category).Error
	return category, err
}
