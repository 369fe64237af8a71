package store

import "strings"

// Ident quotes a column or table name for use in generated SQL.
func Ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableSQL renders an idempotent CREATE TABLE statement. Schema
// definitions are static program data, never request input.
func (s Schema[T]) CreateTableSQL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(Ident(s.Table))
	b.WriteString(" (\n")

	lines := make([]string, 0, len(s.Columns)+len(s.Constraints))
	for _, c := range s.Columns {
		lines = append(lines, "\t"+Ident(c.Name)+" "+c.Type)
	}
	for _, c := range s.Constraints {
		lines = append(lines, "\t"+c)
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

func (s Schema[T]) CreateIndexSQL() []string {
	stmts := make([]string, 0, len(s.Indexes))
	for _, idx := range s.Indexes {
		cols := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			cols[i] = Ident(c)
		}

		kind := "INDEX"
		if idx.Unique {
			kind = "UNIQUE INDEX"
		}
		stmts = append(stmts, "CREATE "+kind+" IF NOT EXISTS "+Ident(idx.Name)+
			" ON "+Ident(s.Table)+" ("+strings.Join(cols, ", ")+")")
	}
	return stmts
}
