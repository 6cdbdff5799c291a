package sqlstore

import (
	"strings"

	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/types"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where accumulates filter conditions and their arguments, written with ? placeholders.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) equal(column string, v types.Optional[string]) {
	if s, ok := v.Get(); ok {
		w.add(column+" = ?", s)
	}
}

func (w *where) equalBool(column string, v types.Optional[bool]) {
	if b, ok := v.Get(); ok {
		w.add(column+" = ?", b)
	}
}

func (w *where) prefix(column string, v types.Optional[string]) {
	if s, ok := v.Get(); ok {
		w.add(column+` LIKE ? ESCAPE '\'`, likeEscaper.Replace(s)+"%")
	}
}

func (w *where) contains(column string, v types.Optional[string]) {
	if s, ok := v.Get(); ok {
		w.add(column+` LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(s)+"%")
	}
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT and OFFSET to args and returns the clause.
func (w *where) page(p storage.Page) (string, []any) {
	return " LIMIT ? OFFSET ?", append(append([]any{}, w.args...), p.Limit, p.Offset)
}
