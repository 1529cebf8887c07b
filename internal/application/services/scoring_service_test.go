package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/backend/internal/domain/models"
	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/constants"
	pkgerrors "github.com/meridiancrm/backend/pkg/errors"
)

func newTestScoring(t *testing.T) (*ScoringService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rules := persistence.NewScoreRuleRepository(db)
	leads := persistence.NewLeadRepository(db)
	return NewScoringService(rules, leads), mock
}

func activeRuleRows(t *testing.T, rules ...*models.ScoreRule) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "name", "expression", "points", "active", "created_date", "last_modified_date",
	})
	now := time.Now()
	for _, r := range rules {
		rows.AddRow(r.ID, r.Name, r.Expression, r.Points, r.Active, now, now)
	}
	return rows
}

func TestCreateRuleRejectsInvalidExpression(t *testing.T) {
	svc, mock := newTestScoring(t)

	_, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		Name:       "broken",
		Expression: "has_phone &&",
		Points:     10,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRulePersistsValidRule(t *testing.T) {
	svc, mock := newTestScoring(t)

	mock.ExpectExec("INSERT INTO " + constants.TableScoreRule).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rule, err := svc.CreateRule(context.Background(), CreateRuleRequest{
		Name:       "Has phone",
		Expression: "has_phone",
		Points:     15,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.True(t, rule.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreLeadSumsMatchingRules(t *testing.T) {
	svc, mock := newTestScoring(t)

	mock.ExpectQuery("FROM " + constants.TableScoreRule).
		WillReturnRows(activeRuleRows(t,
			&models.ScoreRule{ID: "r1", Name: "Has phone", Expression: "has_phone", Points: 15, Active: true},
			&models.ScoreRule{ID: "r2", Name: "Qualified", Expression: "is_qualified", Points: 30, Active: true},
			&models.ScoreRule{ID: "r3", Name: "Enterprise", Expression: `company_name == "Globex"`, Points: 20, Active: true},
		))

	lead := &models.Lead{
		ID:          "lead-1",
		Name:        "Jordan Reyes",
		Phone:       "+1 555 0100",
		CompanyName: "Acme",
		Status:      constants.LeadStatusQualified,
	}

	score, matched, err := svc.ScoreLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, 45, score)
	assert.ElementsMatch(t, []string{"Has phone", "Qualified"}, matched)
}

func TestRescoreLeadSkipsUnchangedScore(t *testing.T) {
	svc, mock := newTestScoring(t)

	mock.ExpectQuery("FROM " + constants.TableScoreRule).
		WillReturnRows(activeRuleRows(t,
			&models.ScoreRule{ID: "r1", Name: "Has phone", Expression: "has_phone", Points: 15, Active: true},
		))

	// Score already matches; no UPDATE expected
	lead := &models.Lead{ID: "lead-1", Phone: "+1 555 0100", Score: 15}
	require.NoError(t, svc.RescoreLead(context.Background(), lead))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescoreLeadPersistsNewScore(t *testing.T) {
	svc, mock := newTestScoring(t)

	mock.ExpectQuery("FROM " + constants.TableScoreRule).
		WillReturnRows(activeRuleRows(t,
			&models.ScoreRule{ID: "r1", Name: "Has phone", Expression: "has_phone", Points: 15, Active: true},
		))
	mock.ExpectExec("UPDATE "+constants.TableLead+" SET score").
		WithArgs(15, sqlmock.AnyArg(), "lead-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	lead := &models.Lead{ID: "lead-1", Phone: "+1 555 0100", Score: 0}
	require.NoError(t, svc.RescoreLead(context.Background(), lead))
	assert.Equal(t, 15, lead.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRuleRevalidatesExpression(t *testing.T) {
	svc, mock := newTestScoring(t)

	mock.ExpectQuery("FROM " + constants.TableScoreRule).
		WillReturnRows(activeRuleRows(t,
			&models.ScoreRule{ID: "r1", Name: "Has phone", Expression: "has_phone", Points: 15, Active: true},
		))

	_, err := svc.UpdateRule(context.Background(), "r1", map[string]interface{}{
		"expression": "status ==",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
