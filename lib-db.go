package main

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// dbProvider is the "db" plugin module. connections are handed to scripts
// as small integer handles.
type dbProvider struct {
	sync.Mutex
	handles map[int]*sql.DB
	next    int
}

func newDBProvider() *dbProvider {
	return &dbProvider{handles: make(map[int]*sql.DB), next: 1}
}

func (p *dbProvider) Name() string { return "db" }

func (p *dbProvider) Functions() []string {
	return []string{"dbOpen", "dbQuery", "dbExec", "dbClose"}
}

// driver names as scripts spell them
var dbDrivers = map[string]string{
	"mysql":   "mysql",
	"sqlite":  "sqlite",
	"sqlite3": "sqlite",
}

func (p *dbProvider) handle(v Value) (*sql.DB, int, error) {
	h := intArg(v)
	p.Lock()
	defer p.Unlock()
	db, found := p.handles[h]
	if !found {
		return nil, h, fef("no open database with handle %d", h)
	}
	return db, h, nil
}

func (p *dbProvider) Dispatch(fn, argsJSON string) string {
	av, err := jsonToObject(argsJSON)
	if err != nil || av.kind != KindList {
		return pluginError("db.%s: bad argument list", fn)
	}
	args := av.list.Items()

	switch fn {
	case "dbOpen":
		if ok, err := expect_args(fn, args, 1, "2", "string", "string"); !ok {
			return pluginError("%v", err)
		}
		driver, found := dbDrivers[args[0].s]
		if !found {
			return pluginError("dbOpen(): unsupported driver '%s' (want mysql or sqlite)", args[0].s)
		}
		db, err := sql.Open(driver, args[1].s)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			return pluginError("dbOpen(): %v", err)
		}
		if driver == "sqlite" {
			// every sqlite connection to :memory: is its own database
			db.SetMaxOpenConns(1)
		} else {
			db.SetConnMaxLifetime(5 * time.Minute)
		}
		p.Lock()
		h := p.next
		p.next++
		p.handles[h] = db
		p.Unlock()
		return objectToJson(Number(float64(h)))

	case "dbQuery", "dbExec":
		if len(args) < 2 || args[0].kind != KindNumber || args[1].kind != KindString {
			return pluginError("%s() takes a handle, a statement and optional parameters", fn)
		}
		db, _, err := p.handle(args[0])
		if err != nil {
			return pluginError("%s(): %v", fn, err)
		}
		params := make([]any, 0, len(args)-2)
		for _, a := range args[2:] {
			params = append(params, valueToNative(a))
		}
		if fn == "dbExec" {
			res, err := db.Exec(args[1].s, params...)
			if err != nil {
				return pluginError("dbExec(): %v", err)
			}
			n, _ := res.RowsAffected()
			return objectToJson(Number(float64(n)))
		}
		rows, err := queryRows(db, args[1].s, params)
		if err != nil {
			return pluginError("dbQuery(): %v", err)
		}
		return objectToJson(rows)

	case "dbClose":
		if ok, err := expect_args(fn, args, 1, "1", "number"); !ok {
			return pluginError("%v", err)
		}
		db, h, err := p.handle(args[0])
		if err != nil {
			return pluginError("dbClose(): %v", err)
		}
		p.Lock()
		delete(p.handles, h)
		p.Unlock()
		if err := db.Close(); err != nil {
			return pluginError("dbClose(): %v", err)
		}
		return objectToJson(Bool(true))
	}
	return pluginError("db: unknown function %s", fn)
}

// queryRows returns a list with one index per row, keyed by column name.
func queryRows(db *sql.DB, query string, params []any) (Value, error) {
	rows, err := db.Query(query, params...)
	if err != nil {
		return Null, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Null, err
	}
	out := NewList()
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Null, err
		}
		row := NewIndex()
		for i, c := range cols {
			row.idx.Set(StringKey(c), sqlValue(cells[i]))
		}
		out.list.Append(row)
	}
	return out, rows.Err()
}

func sqlValue(cell any) Value {
	switch t := cell.(type) {
	case nil:
		return Null
	case int64:
		return Number(float64(t))
	case float64:
		return Number(t)
	case bool:
		return Bool(t)
	case []byte:
		return String(string(t))
	case string:
		return String(t)
	case time.Time:
		return String(t.Format(time.RFC3339))
	}
	return String(sf("%v", cell))
}
