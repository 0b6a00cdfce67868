package config

import "time"

const (
	// Escalation
	DefaultEscalationHours = 72
	DefaultSweepInterval   = time.Hour
	MinSeniorityLevel      = 1
	MaxSeniorityLevel      = 4
	SweepLockTTL           = 10 * time.Minute

	// SystemActorID marks timeline events authored by the sweeper rather
	// than a user.
	SystemActorID = "system"

	// Auth
	TokenTTL    = 72 * time.Hour
	TokenIssuer = "caredesk-service"

	// Listing
	DefaultPageSize = 20
	MaxPageSize     = 100
)
