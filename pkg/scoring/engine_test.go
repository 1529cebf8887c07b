package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadEnv() map[string]interface{} {
	return map[string]interface{}{
		"status":  "qualified",
		"source":  "referral",
		"title":   "VP Engineering",
		"company": "Acme Corp",
		"email":   "vp@acme.com",
	}
}

func TestScoreSumsMatchingRules(t *testing.T) {
	engine := NewEngine()

	rules := []Rule{
		{Name: "qualified", Expression: `status == "qualified"`, Points: 30, Active: true},
		{Name: "referral", Expression: `source == "referral"`, Points: 20, Active: true},
		{Name: "enterprise", Expression: `company == "Globex"`, Points: 50, Active: true},
	}

	total, matched, err := engine.Score(rules, leadEnv())
	require.NoError(t, err)
	assert.Equal(t, 50, total)
	assert.ElementsMatch(t, []string{"qualified", "referral"}, matched)
}

func TestScoreSkipsInactiveRules(t *testing.T) {
	engine := NewEngine()

	rules := []Rule{
		{Name: "qualified", Expression: `status == "qualified"`, Points: 30, Active: false},
	}

	total, matched, err := engine.Score(rules, leadEnv())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, matched)
}

func TestScoreMissingFieldDoesNotMatch(t *testing.T) {
	engine := NewEngine()

	rules := []Rule{
		{Name: "has-phone", Expression: `phone != nil && phone != ""`, Points: 10, Active: true},
	}

	total, _, err := engine.Score(rules, leadEnv())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestScoreBadExpressionFails(t *testing.T) {
	engine := NewEngine()

	rules := []Rule{
		{Name: "broken", Expression: `status ==`, Points: 10, Active: true},
	}

	_, _, err := engine.Score(rules, leadEnv())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.Validate(`status == "new" && source == "web"`))
	assert.Error(t, engine.Validate(``))
	assert.Error(t, engine.Validate(`status ==`))
}

func TestProgramCacheReuse(t *testing.T) {
	engine := NewEngine()

	rules := []Rule{
		{Name: "qualified", Expression: `status == "qualified"`, Points: 5, Active: true},
	}

	for i := 0; i < 3; i++ {
		total, _, err := engine.Score(rules, leadEnv())
		require.NoError(t, err)
		assert.Equal(t, 5, total)
	}
	assert.Len(t, engine.programCache, 1)
}
