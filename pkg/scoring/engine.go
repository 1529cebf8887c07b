package scoring

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Rule is a single scoring rule: when Expression evaluates to true against a
// lead environment, Points are added to the lead's score.
type Rule struct {
	ID         string
	Name       string
	Expression string
	Points     int
	Active     bool
}

// Engine evaluates scoring rules against lead environments.
// Compiled programs are cached per expression string.
type Engine struct {
	programCache map[string]*vm.Program
	mu           sync.RWMutex
}

// NewEngine creates a new scoring engine
func NewEngine() *Engine {
	return &Engine{
		programCache: make(map[string]*vm.Program),
	}
}

// Validate checks the expression syntax and that it produces a boolean.
// Called when a rule is created or updated so bad rules never reach scoring.
func (e *Engine) Validate(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return fmt.Errorf("expression is empty")
	}
	_, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return fmt.Errorf("invalid expression: %w", err)
	}
	return nil
}

// Score evaluates all active rules against the lead environment and returns
// the summed points. A rule that fails to evaluate is skipped rather than
// failing the whole score; the caller only sees rules that compiled.
func (e *Engine) Score(rules []Rule, env map[string]interface{}) (int, []string, error) {
	total := 0
	matched := make([]string, 0, len(rules))

	for _, rule := range rules {
		if !rule.Active {
			continue
		}

		program, err := e.getProgram(rule.Expression)
		if err != nil {
			return 0, nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}

		output, err := expr.Run(program, env)
		if err != nil {
			// Missing fields evaluate against nil; a genuine runtime error
			// means the env and rule disagree on types. Skip the rule.
			continue
		}

		if hit, ok := output.(bool); ok && hit {
			total += rule.Points
			matched = append(matched, rule.Name)
		}
	}

	return total, matched, nil
}

func (e *Engine) getProgram(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if prog, ok := e.programCache[expression]; ok {
		return prog, nil
	}

	prog, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}
	e.programCache[expression] = prog
	return prog, nil
}
