package services

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	"github.com/pingcap/tidb/pkg/parser/test_driver" // ValueExpr for literal injection

	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/meridiancrm/backend/pkg/errors"
)

// SecurityValidator parses analytics SQL, enforces the read-only surface, and
// rewrites queries for row-level visibility. Only single SELECT statements
// over the allowlisted CRM tables are accepted; non-admin callers get an
// owner_id filter injected into the WHERE clause.
type SecurityValidator struct {
	parser *parser.Parser
}

func NewSecurityValidator() *SecurityValidator {
	return &SecurityValidator{parser: parser.New()}
}

// ValidateAndRewrite parses the SQL, validates it, and returns the rewritten
// statement to execute.
func (v *SecurityValidator) ValidateAndRewrite(sql string, user *auth.UserSession) (string, error) {
	stmtNodes, _, err := v.parser.Parse(sql, "", "")
	if err != nil {
		return "", errors.NewValidationError("query", fmt.Sprintf("SQL parse error: %v", err))
	}

	if len(stmtNodes) != 1 {
		return "", errors.NewValidationError("query", "Only single SQL statements are allowed")
	}

	selectStmt, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok {
		return "", errors.NewValidationError("query", "Only SELECT statements are allowed in analytics")
	}

	visitor := &tableAllowlistVisitor{}
	selectStmt.Accept(visitor)
	if visitor.err != nil {
		return "", visitor.err
	}

	// Inject RLS after the visitor pass to avoid mutating the AST mid-walk
	if !user.IsSuperUser() {
		applyOwnerFilter(selectStmt, user.ID)
	}

	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := selectStmt.Restore(restoreCtx); err != nil {
		return "", fmt.Errorf("SQL restore error: %v", err)
	}

	// owner_id is injected as a literal: user.ID is a trusted internal UUID,
	// and literals keep the caller's own placeholders positionally intact.
	return sb.String(), nil
}

// applyOwnerFilter injects "AND owner_id = '<userID>'" into the WHERE clause.
// Every allowlisted table carries owner_id, so no schema lookup is needed. The
// column is qualified against the first FROM table so joins between two
// allowlisted tables stay unambiguous.
func applyOwnerFilter(stmt *ast.SelectStmt, userID string) {
	colName := &ast.ColumnName{Name: ast.NewCIStr(constants.FieldOwnerID)}
	if table := firstFromTable(stmt); table != "" {
		colName.Table = ast.NewCIStr(table)
	}
	colExpr := &ast.ColumnNameExpr{Name: colName}

	rightExpr := &test_driver.ValueExpr{}
	rightExpr.SetString(userID)

	cond := &ast.BinaryOperationExpr{
		Op: opcode.EQ,
		L:  colExpr,
		R:  rightExpr,
	}

	if stmt.Where == nil {
		stmt.Where = cond
	} else {
		stmt.Where = &ast.BinaryOperationExpr{
			Op: opcode.LogicAnd,
			L:  stmt.Where,
			R:  cond,
		}
	}
}

// firstFromTable resolves the leftmost table reference of the FROM clause,
// preferring its alias. Returns "" when the shape is not a plain table (the
// unqualified column then still resolves for single-table selects).
func firstFromTable(stmt *ast.SelectStmt) string {
	if stmt.From == nil || stmt.From.TableRefs == nil {
		return ""
	}

	var node ast.ResultSetNode = stmt.From.TableRefs
	for {
		switch n := node.(type) {
		case *ast.Join:
			node = n.Left
		case *ast.TableSource:
			if n.AsName.O != "" {
				return n.AsName.O
			}
			if tn, ok := n.Source.(*ast.TableName); ok {
				return tn.Name.O
			}
			return ""
		default:
			return ""
		}
	}
}

// tableAllowlistVisitor rejects any table reference outside the analytics
// allowlist. Subqueries are walked too, so nothing slips through a FROM
// (SELECT ...) wrapper.
type tableAllowlistVisitor struct {
	err error
}

func (v *tableAllowlistVisitor) Enter(in ast.Node) (ast.Node, bool) {
	if v.err != nil {
		return in, true
	}

	if t, ok := in.(*ast.TableName); ok {
		name := strings.ToLower(t.Name.O)
		if !constants.AnalyticsTables[name] {
			v.err = errors.NewPermissionError("query", fmt.Sprintf("table '%s'", name))
			return in, true
		}
	}
	return in, false
}

func (v *tableAllowlistVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
