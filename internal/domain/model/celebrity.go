package model

import "time"

// Celebrity is the part of a directory profile this service reads and writes.
type Celebrity struct {
	ID          string
	DisplayName string
	IsVerified  bool
	IsAvailable bool
	UpdatedAt   time.Time
}

func (c *Celebrity) IsZero() bool { return c == nil || c.ID == "" }

// ProfileFlags are always written as a pair.
type ProfileFlags struct {
	IsVerified  bool
	IsAvailable bool
}

var (
	FlagsListed   = ProfileFlags{IsVerified: true, IsAvailable: true}
	FlagsUnlisted = ProfileFlags{IsVerified: false, IsAvailable: false}
)

// AdminIdentity is a caller that passed the admin capability check.
type AdminIdentity struct {
	ID    string
	Email string
}
