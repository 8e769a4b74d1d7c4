package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Code is the canonical classification assigned to generated income entries.
type Code string

const (
	CodeRent       Code = "CONC-REN"
	CodePercentage Code = "CONC-VTA"
	CodePenalty    Code = "CONC-MUL"
	CodeRenewal    Code = "CONC-RNV"
)

// Category classifies income entries in the accounting ledger.
type Category struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Code        Code         `json:"code" gorm:"type:text;not null;uniqueIndex:ux_categories_code"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Description string       `json:"description" gorm:"type:text;not null"`
	Level       int          `json:"level" gorm:"not null;default:1"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Category) TableName() string { return "ledger_categories" }

// Rule maps concept keywords to a category code. Rules are evaluated in order
// and the first match wins; later rules refine earlier, broader ones, so the
// order is part of the contract.
type Rule struct {
	Keywords []string
	Code     Code
}

// Rules is the ordered classification table for concession payment concepts.
var Rules = []Rule{
	{Keywords: []string{"renta", "alquiler"}, Code: CodeRent},
	{Keywords: []string{"porcentaje", "venta"}, Code: CodePercentage},
	{Keywords: []string{"multa", "penalización", "penalizacion"}, Code: CodePenalty},
	{Keywords: []string{"renovación", "renovacion"}, Code: CodeRenewal},
}

// DefaultCode is returned when no rule matches.
const DefaultCode = CodeRent

// ResolveCode classifies a payment by its free-text concept and contract type.
func ResolveCode(concept, contractType string) Code {
	haystack := strings.ToLower(concept + " " + contractType)
	for _, rule := range Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(haystack, kw) {
				return rule.Code
			}
		}
	}
	return DefaultCode
}

// CatalogEntry holds the name and description used when a category row is
// created on first use.
type CatalogEntry struct {
	Name        string
	Description string
}

// Catalog is the static code -> display data table for lazily created categories.
var Catalog = map[Code]CatalogEntry{
	CodeRent:       {Name: "Renta de concesión", Description: "Ingresos por renta o alquiler de concesiones"},
	CodePercentage: {Name: "Porcentaje de ventas", Description: "Ingresos por porcentaje sobre ventas de concesionarios"},
	CodePenalty:    {Name: "Multas y penalizaciones", Description: "Ingresos por multas y penalizaciones contractuales"},
	CodeRenewal:    {Name: "Renovación de contrato", Description: "Ingresos por renovación de contratos de concesión"},
}

// FallbackCatalogEntry is used for codes with no catalog row.
func FallbackCatalogEntry(code Code) CatalogEntry {
	return CatalogEntry{
		Name:        "Ingresos " + string(code),
		Description: "Categoría generada automáticamente para " + string(code),
	}
}

type Service interface {
	GetOrCreate(ctx context.Context, code Code) (Category, error)
}

var (
	ErrInvalidCode = errors.New("invalid_category_code")
)
