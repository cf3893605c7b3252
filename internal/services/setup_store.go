package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"divine-deck/internal/models"
)

// SetupNamespace is the single key every saved setup is stored under
const SetupNamespace = "divineDeckSetups"

var ErrSetupNotFound = errors.New("setup not found")

// SetupStore persists named queue snapshots
type SetupStore struct {
	database *sql.DB
}

// NewSetupStore creates a new setup store
func NewSetupStore(database *sql.DB) *SetupStore {
	return &SetupStore{
		database: database,
	}
}

// Save stores a setup, creating an id and timestamp when missing.
// Saving an existing id overwrites it.
func (ss *SetupStore) Save(setup models.MassSetup) (models.MassSetup, error) {
	setup.Name = strings.TrimSpace(setup.Name)
	if setup.Name == "" {
		return models.MassSetup{}, fmt.Errorf("setup name is required")
	}
	if setup.ID == "" {
		setup.ID = "setup-" + uuid.NewString()
	}
	if setup.CreatedAt.IsZero() {
		setup.CreatedAt = time.Now()
	}
	// stored as text, so a single zone keeps ORDER BY chronological
	setup.CreatedAt = setup.CreatedAt.UTC()
	if setup.Queue == nil {
		setup.Queue = []models.QueueEntry{}
	}

	queueJSON, err := json.Marshal(setup.Queue)
	if err != nil {
		return models.MassSetup{}, fmt.Errorf("failed to marshal queue: %w", err)
	}

	query := `INSERT INTO mass_setups (id, namespace, name, queue_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, queue_json = excluded.queue_json`

	_, err = ss.database.Exec(query, setup.ID, SetupNamespace, setup.Name, string(queueJSON), setup.CreatedAt)
	if err != nil {
		return models.MassSetup{}, fmt.Errorf("failed to insert setup: %w", err)
	}

	log.Printf("Setup saved: ID=%s, Name=%q, Slides=%d", setup.ID, setup.Name, len(setup.Queue))
	return setup, nil
}

// Get returns one setup by id
func (ss *SetupStore) Get(id string) (models.MassSetup, error) {
	query := `SELECT id, name, queue_json, created_at
		FROM mass_setups WHERE namespace = ? AND id = ?`

	setup, err := scanSetup(ss.database.QueryRow(query, SetupNamespace, id))
	if err == sql.ErrNoRows {
		return models.MassSetup{}, fmt.Errorf("%w: %s", ErrSetupNotFound, id)
	}
	if err != nil {
		return models.MassSetup{}, fmt.Errorf("failed to query setup: %w", err)
	}
	return setup, nil
}

// List returns every setup, oldest first
func (ss *SetupStore) List() ([]models.MassSetup, error) {
	query := `SELECT id, name, queue_json, created_at
		FROM mass_setups WHERE namespace = ? ORDER BY created_at ASC, id ASC`

	rows, err := ss.database.Query(query, SetupNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query setups: %w", err)
	}
	defer rows.Close()

	setups := []models.MassSetup{}
	for rows.Next() {
		setup, err := scanSetup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setup: %w", err)
		}
		setups = append(setups, setup)
	}

	return setups, rows.Err()
}

// Delete removes a setup
func (ss *SetupStore) Delete(id string) error {
	query := `DELETE FROM mass_setups WHERE namespace = ? AND id = ?`
	result, err := ss.database.Exec(query, SetupNamespace, id)
	if err != nil {
		return fmt.Errorf("failed to delete setup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrSetupNotFound, id)
	}

	log.Printf("Setup deleted: %s", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSetup(row rowScanner) (models.MassSetup, error) {
	var setup models.MassSetup
	var queueJSON string

	if err := row.Scan(&setup.ID, &setup.Name, &queueJSON, &setup.CreatedAt); err != nil {
		return models.MassSetup{}, err
	}
	if err := json.Unmarshal([]byte(queueJSON), &setup.Queue); err != nil {
		return models.MassSetup{}, fmt.Errorf("failed to decode queue of setup %s: %w", setup.ID, err)
	}
	return setup, nil
}
