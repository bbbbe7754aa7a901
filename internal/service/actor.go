package service

import (
	"go-blindbox-store/internal/notify"

	"github.com/google/uuid"
)

// Actor is the authenticated user behind a call.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

func (a *Actor) auditID() string {
	if a == nil || a.ID == uuid.Nil {
		return "system"
	}
	return a.ID.String()
}

func (a *Actor) displayName() string {
	if a == nil || a.Name == "" {
		return "System"
	}
	return a.Name
}

func (a *Actor) notifyActor() *notify.Actor {
	if a == nil {
		return nil
	}
	return &notify.Actor{ID: a.auditID(), Name: a.Name, Email: a.Email}
}
