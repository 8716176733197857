// Package pgstore implements internal/store.Store against PostgreSQL,
// grounded on tendulkar-cred-hack25-be's pkg/database (sqlx.DB pool setup)
// and internal/repository (raw parameterized SQL, sql.ErrNoRows handling)
// patterns, with State lookups pushed down via internal/sqlpredicate
// instead of filtered in the process.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/logging"
	"github.com/danslapman/stubbery/internal/optic"
	"github.com/danslapman/stubbery/internal/predicate"
	"github.com/danslapman/stubbery/internal/sqlpredicate"
	"github.com/danslapman/stubbery/internal/store"
	"github.com/danslapman/stubbery/internal/stub"
	"github.com/danslapman/stubbery/internal/wire"
)

// Config is the connection configuration for a Postgres-backed Store.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c Config) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Store is a PostgreSQL-backed store.Store implementation.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres, pings it, and sets pool limits following the
// teacher pack's convention for a long-lived service connection.
func Open(cfg Config) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	return &Store{db: db}, nil
}

// InitSchema creates the stub and state tables if they don't already
// exist. Indexable columns (scope/times/method/path/path_pattern) back
// find_stubs' narrowing; "spec" is a single jsonb blob holding everything
// else (predicates, request/response/persist/callback), decoded via
// internal/wire — queried through internal/sqlpredicate's jsonpath
// translation only for the state table's predicate search.
func (s *Store) InitSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS stub (
			id uuid PRIMARY KEY,
			created timestamptz NOT NULL DEFAULT now(),
			scope varchar(16) NOT NULL,
			times integer,
			service_name varchar(64) NOT NULL DEFAULT '',
			name varchar(64) NOT NULL DEFAULT '',
			method varchar(16) NOT NULL,
			path varchar(256),
			path_pattern varchar(256),
			seed jsonb,
			state jsonb,
			spec jsonb NOT NULL
		);
		CREATE TABLE IF NOT EXISTS state (
			id uuid PRIMARY KEY,
			created timestamptz NOT NULL DEFAULT now(),
			data jsonb NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("pgstore: init schema: %w", err)
	}
	return nil
}

func (s *Store) log() *logrus.Entry {
	return logging.Log.WithField("component", "pgstore")
}

// row is the flat column shape InsertStub/FindCandidates read and write.
// "Spec" carries everything beyond the indexable columns — predicates,
// request/response/persist/callback — as a single jsonb blob, decoded via
// internal/wire.
type row struct {
	ID          uuid.UUID      `db:"id"`
	Created     time.Time      `db:"created"`
	Scope       string         `db:"scope"`
	Times       *int           `db:"times"`
	ServiceName string         `db:"service_name"`
	Name        string         `db:"name"`
	Method      string         `db:"method"`
	Path        sql.NullString `db:"path"`
	PathPattern sql.NullString `db:"path_pattern"`
	Seed        jsn.Jsn        `db:"seed"`
	State       jsn.Jsn        `db:"state"`
	Spec        jsn.Jsn        `db:"spec"`
}

func (s *Store) InsertStub(ctx context.Context, n stub.NewStub) (stub.Stub, error) {
	id := uuid.New()
	created := time.Now()

	spec := wire.StubToJsn(stub.Stub{
		Scope: n.Scope, ServiceName: n.ServiceName, Name: n.Name, Method: n.Method,
		Path: n.Path, PathPattern: n.PathPattern,
		QueryPredicate: n.QueryPredicate, HeaderPredicate: n.HeaderPredicate,
		Request: n.Request, Persist: n.Persist, Response: n.Response, Callback: n.Callback,
	})

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stub (id, created, scope, times, service_name, name, method, path, path_pattern, seed, state, spec)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		id, created, n.Scope.String(), n.Times, n.ServiceName, n.Name, string(n.Method),
		nullableString(n.Path), nullableString(n.PathPattern), n.Seed, n.State, spec)
	if err != nil {
		s.log().WithError(err).Error("insert stub failed")
		return stub.Stub{}, fmt.Errorf("pgstore: insert stub: %w", err)
	}

	return stub.Stub{
		ID: id, Created: created, Scope: n.Scope, Times: n.Times,
		ServiceName: n.ServiceName, Name: n.Name, Method: n.Method,
		Path: n.Path, PathPattern: n.PathPattern, Seed: n.Seed, State: n.State,
		QueryPredicate: n.QueryPredicate, HeaderPredicate: n.HeaderPredicate,
		Request: n.Request, Persist: n.Persist, Response: n.Response, Callback: n.Callback,
	}, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) FindCandidates(ctx context.Context, method stub.HttpMethod, path string) ([]stub.Stub, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, created, scope, times, service_name, name, method, path, path_pattern, seed, state, spec
		FROM stub
		WHERE method = $1 AND (times IS NULL OR times > 0)`, string(method))
	if err != nil {
		s.log().WithError(err).Error("find candidates failed")
		return nil, fmt.Errorf("pgstore: find candidates: %w", err)
	}

	out := make([]stub.Stub, 0, len(rows))
	for _, r := range rows {
		if r.Path.Valid && r.Path.String != "" && r.Path.String != path {
			continue
		}
		st, err := rowToStub(r)
		if err != nil {
			s.log().WithError(err).WithField("stub_id", r.ID).Warn("skipping stub with unparseable spec")
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func rowToStub(r row) (stub.Stub, error) {
	st, err := wire.StubSpecFromJsn(r.Spec)
	if err != nil {
		return stub.Stub{}, err
	}
	st.ID = r.ID
	st.Created = r.Created
	st.Scope = parseScope(r.Scope)
	st.Times = r.Times
	st.ServiceName = r.ServiceName
	st.Name = r.Name
	st.Method = stub.HttpMethod(r.Method)
	st.Path = r.Path.String
	st.PathPattern = r.PathPattern.String
	st.Seed = r.Seed
	st.State = r.State
	return st, nil
}

func parseScope(s string) stub.Scope {
	switch s {
	case "countdown":
		return stub.ScopeCountdown
	case "ephemeral":
		return stub.ScopeEphemeral
	default:
		return stub.ScopePersistent
	}
}

// DecrementCountdown decrements times in a single UPDATE ... RETURNING
// statement, so the read-decrement-write is atomic at the database level
// rather than needing an explicit transaction in application code.
func (s *Store) DecrementCountdown(ctx context.Context, id uuid.UUID) (stub.Stub, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `
		UPDATE stub SET times = times - 1
		WHERE id = $1 AND times > 0
		RETURNING id, created, scope, times, service_name, name, method, path, path_pattern, seed, state, spec`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return stub.Stub{}, store.ErrNotFound{ID: id}
	}
	if err != nil {
		s.log().WithError(err).Error("decrement countdown failed")
		return stub.Stub{}, fmt.Errorf("pgstore: decrement countdown: %w", err)
	}

	if r.Times != nil && *r.Times <= 0 {
		if _, delErr := s.db.ExecContext(ctx, `DELETE FROM stub WHERE id = $1`, id); delErr != nil {
			s.log().WithError(delErr).Warn("failed to clean up exhausted countdown stub")
		}
	}
	return rowToStub(r)
}

func (s *Store) InsertState(ctx context.Context, data jsn.Jsn) (stub.State, error) {
	id := uuid.New()
	created := time.Now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO state (id, created, data) VALUES ($1,$2,$3)`, id, created, data)
	if err != nil {
		s.log().WithError(err).Error("insert state failed")
		return stub.State{}, fmt.Errorf("pgstore: insert state: %w", err)
	}
	return stub.State{ID: id, Created: created, Data: data}, nil
}

var sqlKeyword = map[predicate.Keyword]sqlpredicate.Keyword{
	predicate.Eq:      sqlpredicate.Eq,
	predicate.NotEq:   sqlpredicate.NotEq,
	predicate.Greater: sqlpredicate.Greater,
	predicate.Gte:     sqlpredicate.Gte,
	predicate.Less:    sqlpredicate.Less,
	predicate.Lte:     sqlpredicate.Lte,
	predicate.Rx:      sqlpredicate.Rx,
}

// pushDownSpec converts pred's conditions into a sqlpredicate.Spec, and
// reports ok=false the moment it meets a condition sqlpredicate has no
// jsonpath equivalent for (Size, Exists, and the array-membership
// keywords), so the caller can fall back to the application-layer filter
// for that predicate instead of pushing part of it down.
func pushDownSpec(p *predicate.Predicate) (sqlpredicate.Spec, bool) {
	conds := p.Conditions()
	spec := make(sqlpredicate.Spec, 0, len(conds))
	for rawOptic, cs := range conds {
		o, err := optic.Parse(rawOptic)
		if err != nil {
			return nil, false
		}
		for _, c := range cs {
			kw, ok := sqlKeyword[c.Keyword]
			if !ok {
				return nil, false
			}
			spec = append(spec, sqlpredicate.Condition{Optic: o, Keyword: kw, Arg: c.Arg})
		}
	}
	return spec, true
}

// FindStates pushes pred down into a WHERE clause via internal/sqlpredicate
// whenever pred is a *predicate.Predicate using only jsonpath-expressible
// keywords; any other predicate shape (array-membership conditions, or a
// StatePredicate that isn't *predicate.Predicate at all) falls back to
// fetching every state and filtering in the process.
func (s *Store) FindStates(ctx context.Context, pred store.StatePredicate) ([]stub.State, error) {
	var rows []struct {
		ID      uuid.UUID `db:"id"`
		Created time.Time `db:"created"`
		Data    jsn.Jsn   `db:"data"`
	}

	if p, ok := pred.(*predicate.Predicate); ok {
		if spec, ok := pushDownSpec(p); ok && len(spec) > 0 {
			translations, err := sqlpredicate.Translate(spec, 1)
			if err == nil {
				where := sqlpredicate.CombineExprs(translations, "data")
				args := make([]interface{}, len(translations))
				for i, t := range translations {
					args[i] = t.Param
				}
				query := fmt.Sprintf(`SELECT id, created, data FROM state WHERE %s`, where)
				if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
					s.log().WithError(err).Error("find states (pushed down) failed")
					return nil, fmt.Errorf("pgstore: find states: %w", err)
				}
				out := make([]stub.State, len(rows))
				for i, r := range rows {
					out[i] = stub.State{ID: r.ID, Created: r.Created, Data: r.Data}
				}
				return out, nil
			}
			s.log().WithError(err).Warn("predicate push-down translation failed, falling back to full scan")
		}
	}

	if err := s.db.SelectContext(ctx, &rows, `SELECT id, created, data FROM state`); err != nil {
		s.log().WithError(err).Error("find states failed")
		return nil, fmt.Errorf("pgstore: find states: %w", err)
	}

	out := make([]stub.State, 0, len(rows))
	for _, r := range rows {
		ok, err := pred.Validate(r.Data)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, stub.State{ID: r.ID, Created: r.Created, Data: r.Data})
		}
	}
	return out, nil
}
