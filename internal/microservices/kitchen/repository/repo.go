package repository

import "database/sql"

type Repository struct {
	Journal JournalInterface
}

func New(db *sql.DB) *Repository {
	return &Repository{
		Journal: NewJournal(db),
	}
}
