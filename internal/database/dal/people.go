// Package dal holds one data-access file per catalog table: each exposes
// the operations spec §4.9 requires (upsert by natural key, update by id,
// get by id/natural key, batched insert, mark-missing, counters) directly
// against *sql.DB, grounded on original_source's dal/people.py shape.
package dal

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PeopleDAL wraps people/people_tags access.
type PeopleDAL struct {
	db *sql.DB
}

func NewPeopleDAL(db *sql.DB) *PeopleDAL { return &PeopleDAL{db: db} }

// GetOrCreate returns the id of the person named name, creating a row if
// one doesn't already exist.
func (d *PeopleDAL) GetOrCreate(name string) (uuid.UUID, error) {
	return getOrCreatePerson(d.db, name)
}

func getOrCreatePerson(q execer, name string) (uuid.UUID, error) {
	var idStr string
	err := q.QueryRow("SELECT id FROM people WHERE name = ?", name).Scan(&idStr)
	if err == nil {
		return uuid.Parse(idStr)
	}
	if err != sql.ErrNoRows {
		return uuid.UUID{}, fmt.Errorf("looking up person %q: %w", name, err)
	}

	id := uuid.New()
	if _, err := q.Exec("INSERT INTO people (id, name) VALUES (?, ?)", id.String(), name); err != nil {
		return uuid.UUID{}, fmt.Errorf("creating person %q: %w", name, err)
	}
	return id, nil
}

// ReplaceTags replaces a media item's people tags wholesale with
// peopleNames, in order, per spec's "tags are replaced wholesale whenever
// a media item is (re)processed" invariant.
func (d *PeopleDAL) ReplaceTags(mediaItemID uuid.UUID, peopleNames []string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning tag replace transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceTags(tx, mediaItemID, peopleNames); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceTagsTx is ReplaceTags run against an already-open transaction,
// for callers batching several writes (see internal/pipeline.Writer) into
// one commit. The caller owns the transaction's lifetime.
func (d *PeopleDAL) ReplaceTagsTx(tx *sql.Tx, mediaItemID uuid.UUID, peopleNames []string) error {
	return replaceTags(tx, mediaItemID, peopleNames)
}

func replaceTags(q execer, mediaItemID uuid.UUID, peopleNames []string) error {
	if _, err := q.Exec("DELETE FROM people_tags WHERE media_item_id = ?", mediaItemID.String()); err != nil {
		return fmt.Errorf("clearing tags for %s: %w", mediaItemID, err)
	}

	for order, name := range peopleNames {
		personID, err := getOrCreatePerson(q, name)
		if err != nil {
			return err
		}
		if _, err := q.Exec(
			"INSERT INTO people_tags (media_item_id, person_id, tag_order) VALUES (?, ?, ?)",
			mediaItemID.String(), personID.String(), order,
		); err != nil {
			return fmt.Errorf("tagging %s with %q: %w", mediaItemID, name, err)
		}
	}

	return nil
}

// NamesFor returns the people names tagged on mediaItemID, in tag order.
func (d *PeopleDAL) NamesFor(mediaItemID uuid.UUID) ([]string, error) {
	rows, err := d.db.Query(`
		SELECT p.name FROM people_tags pt
		JOIN people p ON pt.person_id = p.id
		WHERE pt.media_item_id = ?
		ORDER BY pt.tag_order`, mediaItemID.String())
	if err != nil {
		return nil, fmt.Errorf("listing people for %s: %w", mediaItemID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
