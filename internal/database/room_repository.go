package database

import (
	"database/sql"

	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// RoomRepository handles database operations for the rooms table
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, room_number, room_type, nightly_rate, status,
	   floor, max_occupancy, created_at, updated_at`

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(roomID string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	return r.scanRoom(r.db.QueryRow(query, roomID))
}

// List retrieves all rooms ordered by room number
func (r *RoomRepository) List() ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY room_number`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room := models.Room{}
		if err := r.scanRoomFields(rows, &room); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// UpdateStatus updates the room's cached occupancy status. The availability
// index, not this column, is the source of truth for conflicts.
func (r *RoomRepository) UpdateStatus(roomID string, status models.RoomStatus) error {
	query := `UPDATE rooms SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(query, roomID, status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *RoomRepository) scanRoom(row *sql.Row) (*models.Room, error) {
	room := &models.Room{}
	err := row.Scan(
		&room.ID, &room.RoomNumber, &room.RoomType, &room.NightlyRate, &room.Status,
		&room.Floor, &room.MaxOccupancy, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *RoomRepository) scanRoomFields(rows *sql.Rows, room *models.Room) error {
	return rows.Scan(
		&room.ID, &room.RoomNumber, &room.RoomType, &room.NightlyRate, &room.Status,
		&room.Floor, &room.MaxOccupancy, &room.CreatedAt, &room.UpdatedAt,
	)
}
