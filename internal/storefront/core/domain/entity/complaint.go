package entity

import "time"

type Complaint struct {
	ComplaintNumber string
	Name            string
	Email           string
	Message         string
	UserType        string
	// Status is empty until the first status update.
	Status    string
	CreatedAt time.Time
}
