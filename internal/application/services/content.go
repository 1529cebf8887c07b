package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/meridiancrm/backend/internal/domain/models"
)

// Searchable-text builders. Each flattens the fields a human would search on
// into one line; the same text feeds the embedding, the vector index entry,
// and the result snippet, so a stored content hash detects staleness.

func LeadText(l *models.Lead) string {
	return joinFields(l.Name, l.Title, l.CompanyName, l.Email, l.Source, l.Status, l.Notes)
}

func CompanyText(c *models.Company) string {
	return joinFields(c.Name, c.Domain, c.Industry, c.Size, c.Location, c.Description)
}

func ContactText(c *models.Contact) string {
	return joinFields(c.Name, c.Title, c.Email, c.Phone)
}

func DealText(d *models.Deal) string {
	return joinFields(d.Name, d.Stage, d.Notes)
}

func joinFields(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " | ")
}

// ContentHash returns a stable hex digest of the searchable text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
