package models

import "time"

// Department represents an academic department.
type Department struct {
	ID        int64     `db:"id" json:"department_id"`
	Name      string    `db:"name" json:"department_name"`
	Code      string    `db:"code" json:"department_code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
