package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-queue-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type catalogRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}
