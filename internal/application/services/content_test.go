package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridiancrm/backend/internal/domain/models"
)

func TestLeadTextSkipsEmptyFields(t *testing.T) {
	lead := &models.Lead{
		Name:   "Ada Lovelace",
		Email:  "ada@acme.io",
		Status: "new",
	}
	text := LeadText(lead)
	assert.Equal(t, "Ada Lovelace | ada@acme.io | new", text)
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash("Ada Lovelace | ada@acme.io")
	b := ContentHash("Ada Lovelace | ada@acme.io")
	c := ContentHash("Ada Lovelace | ada@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestCompanyTextIncludesDescription(t *testing.T) {
	company := &models.Company{
		Name:        "Acme",
		Industry:    "manufacturing",
		Description: "Makes everything",
	}
	assert.Equal(t, "Acme | manufacturing | Makes everything", CompanyText(company))
}
