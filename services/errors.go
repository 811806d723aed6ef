package services

import "errors"

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource was changed concurrently, retry the request")

	ErrBracketNotGenerated = errors.New("bracket has not been generated for this tournament")
	ErrMatchNotFound       = errors.New("match not found")
	ErrCompetitorNotFound  = errors.New("competitor not found")
	ErrCompetitorExists    = errors.New("competitor is already registered for this tournament")

	ErrCompetitorNameRequired = errors.New("competitor name is required")
	ErrInvalidSkill           = errors.New("competitor skill must be a finite number")
	ErrInvalidPlacement       = errors.New("seed placement must be at least 1")
	ErrUnknownSeedingEntry    = errors.New("seeding scores reference an unknown competitor")
)
