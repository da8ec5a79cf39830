package vectorstore

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on Postgres with the pgvector extension.
// Each collection maps to one table.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewPostgresStore connects to Postgres and binds the store to the table
// named after the collection.
func NewPostgresStore(ctx context.Context, connStr, collection string) (*PostgresStore, error) {
	if !identRe.MatchString(collection) {
		return nil, fmt.Errorf("collection %q is not a valid table name", collection)
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, table: collection}, nil
}

// Close releases the connection pool.
func (ps *PostgresStore) Close() {
	ps.pool.Close()
}

func (ps *PostgresStore) EnsureCollection(ctx context.Context, dim int, recreate bool) error {
	if dim <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dim)
	}
	if _, err := ps.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	if recreate {
		if _, err := ps.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, ps.table)); err != nil {
			return fmt.Errorf("drop table %s: %w", ps.table, err)
		}
	}
	_, err := ps.pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id UUID PRIMARY KEY,
            embedding vector(%d) NOT NULL,
            text TEXT NOT NULL,
            source_file TEXT NOT NULL,
            game_name TEXT NOT NULL,
            chunk_index INTEGER NOT NULL,
            doc_chars INTEGER NOT NULL,
            chunk_chars INTEGER NOT NULL
        )`, ps.table, dim))
	if err != nil {
		return fmt.Errorf("create table %s: %w", ps.table, err)
	}
	_, err = ps.pool.Exec(ctx, fmt.Sprintf(`
        CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s
        USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`, ps.table, ps.table))
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	_, err = ps.pool.Exec(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_game_name_idx ON %s (game_name)`, ps.table, ps.table))
	if err != nil {
		return fmt.Errorf("create game_name index: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Upsert(ctx context.Context, records []Record) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (id, embedding, text, source_file, game_name, chunk_index, doc_chars, chunk_chars)
        VALUES ($1, $2::vector, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO UPDATE SET
            embedding = EXCLUDED.embedding,
            text = EXCLUDED.text,
            source_file = EXCLUDED.source_file,
            game_name = EXCLUDED.game_name,
            chunk_index = EXCLUDED.chunk_index,
            doc_chars = EXCLUDED.doc_chars,
            chunk_chars = EXCLUDED.chunk_chars`, ps.table)

	for start := 0; start < len(records); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(records))
		batch := &pgx.Batch{}
		for _, rec := range records[start:end] {
			p := rec.Payload
			batch.Queue(query, rec.ID, vectorLiteral(rec.Vector), p.Text, p.SourceFile, p.GameName, p.ChunkIndex, p.DocChars, p.ChunkChars)
		}
		if err := ps.pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start+1, end, err)
		}
	}
	return nil
}

func (ps *PostgresStore) Search(ctx context.Context, vector []float32, topK int, gameName string) ([]Result, error) {
	if topK <= 0 {
		topK = 3
	}
	lit := vectorLiteral(vector)
	query := fmt.Sprintf(`
        SELECT id, text, source_file, game_name, chunk_index, doc_chars, chunk_chars,
               1 - (embedding <=> $1::vector) AS score
        FROM %s`, ps.table)
	args := []any{lit}
	if gameName != "" {
		query += ` WHERE game_name = $2`
		args = append(args, gameName)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1::vector LIMIT %d`, topK)

	rows, err := ps.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search table %s: %w", ps.table, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var res Result
		p := &res.Payload
		if err := rows.Scan(&res.ID, &p.Text, &p.SourceFile, &p.GameName, &p.ChunkIndex, &p.DocChars, &p.ChunkChars, &res.Score); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read search rows: %w", err)
	}
	return results, nil
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := ps.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, ps.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count table %s: %w", ps.table, err)
	}
	return count, nil
}

func vectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v)*10 + 2)
	sb.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

var _ Store = (*PostgresStore)(nil)
