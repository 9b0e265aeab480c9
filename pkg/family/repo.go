package family

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/crystal-mush/emberfall/pkg/world"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS relationships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	character_id INTEGER NOT NULL,
	related_id INTEGER NOT NULL DEFAULT 0,
	related_name TEXT NOT NULL DEFAULT '',
	relationship TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(character_id, related_id, related_name, relationship)
);
CREATE INDEX IF NOT EXISTS idx_relationships_character ON relationships(character_id);
`

// Repo manages the SQLite database holding family relationships.
type Repo struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// OpenRepo opens a SQLite database, sets WAL mode and busy timeout, and
// creates the schema if needed.
func OpenRepo(path string, busyTimeoutSec int) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// Set WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	// Set busy timeout (milliseconds)
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutSec*1000)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating relationships schema: %w", err)
	}
	return &Repo{db: db, path: path}, nil
}

// Close closes the SQLite database connection.
func (r *Repo) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the filesystem path of the SQLite database.
func (r *Repo) Path() string { return r.path }

// AddRelation records a relationship. When reciprocal is true and the
// relative is a player character, the reverse relation is recorded as well
// (unless it already exists). Duplicate rows are ignored.
func (r *Repo) AddRelation(rel Relation, reciprocal bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !ValidType(rel.Type) {
		return fmt.Errorf("family: unknown relationship type %q", rel.Type)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("family: begin: %w", err)
	}
	defer tx.Rollback()

	const ins = `INSERT OR IGNORE INTO relationships (character_id, related_id, related_name, relationship) VALUES (?, ?, ?, ?)`
	if _, err := tx.Exec(ins, int(rel.Character), int(rel.RelatedRef), rel.RelatedName, rel.Type); err != nil {
		return fmt.Errorf("family: insert relation: %w", err)
	}

	if reciprocal && rel.IsPC() {
		if rev, ok := Reciprocals[rel.Type]; ok {
			if _, err := tx.Exec(ins, int(rel.RelatedRef), int(rel.Character), "", rev); err != nil {
				return fmt.Errorf("family: insert reciprocal: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteRelation removes a relationship row by id. When reciprocal is true
// and the row pointed at a player character, the reverse row is removed too.
func (r *Repo) DeleteRelation(id int64, reciprocal bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rel Relation
	var charID, relatedID int
	err := r.db.QueryRow(
		`SELECT character_id, related_id, related_name, relationship FROM relationships WHERE id = ?`, id,
	).Scan(&charID, &relatedID, &rel.RelatedName, &rel.Type)
	if err == sql.ErrNoRows {
		return fmt.Errorf("family: relation %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("family: load relation %d: %w", id, err)
	}
	rel.Character = world.Ref(charID)
	rel.RelatedRef = world.Ref(relatedID)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("family: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM relationships WHERE id = ?`, id); err != nil {
		return fmt.Errorf("family: delete relation %d: %w", id, err)
	}

	if reciprocal && rel.IsPC() {
		if rev, ok := Reciprocals[rel.Type]; ok {
			_, err := tx.Exec(
				`DELETE FROM relationships WHERE character_id = ? AND related_id = ? AND relationship = ?`,
				int(rel.RelatedRef), int(rel.Character), rev,
			)
			if err != nil {
				return fmt.Errorf("family: delete reciprocal: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Relations returns all stored relationship rows for a character, ordered
// by type then name.
func (r *Repo) Relations(character world.Ref) ([]Relation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(
		`SELECT id, character_id, related_id, related_name, relationship
		 FROM relationships WHERE character_id = ?
		 ORDER BY relationship, related_name`, int(character),
	)
	if err != nil {
		return nil, fmt.Errorf("family: query relations for #%d: %w", character, err)
	}
	defer rows.Close()

	var out []Relation
	for rows.Next() {
		var rel Relation
		var charID, relatedID int
		if err := rows.Scan(&rel.ID, &charID, &relatedID, &rel.RelatedName, &rel.Type); err != nil {
			return nil, fmt.Errorf("family: scan relation: %w", err)
		}
		rel.Character = world.Ref(charID)
		rel.RelatedRef = world.Ref(relatedID)
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("family: iterate relations: %w", err)
	}
	return out, nil
}

// FamilyOf returns a character's relatives grouped by relationship display
// name. PC relatives are named through resolve; NPC relatives keep their
// stored name.
func (r *Repo) FamilyOf(character world.Ref, resolve func(world.Ref) string) (map[string][]Member, error) {
	rels, err := r.Relations(character)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Member)
	for _, rel := range rels {
		m := Member{Name: rel.RelatedName, IsPC: rel.IsPC()}
		if rel.IsPC() && resolve != nil {
			m.Name = resolve(rel.RelatedRef)
		}
		key := DisplayName(rel.Type)
		out[key] = append(out[key], m)
	}
	return out, nil
}
