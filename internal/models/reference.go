package models

import (
	"time"
)

// Category is a reference entity identified by its plain name
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Icon        string    `json:"icon,omitempty" db:"icon"`
	Color       string    `json:"color,omitempty" db:"color"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Manufacturer is a reference entity identified by its plain name
type Manufacturer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Location is a reference entity uniquely identified by its derived
// display name, built from the sector/floor/building composite key.
type Location struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Building    string    `json:"building,omitempty" db:"building"`
	Floor       string    `json:"floor,omitempty" db:"floor"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// User is an external collaborator consumed only for owner resolution
type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
}
