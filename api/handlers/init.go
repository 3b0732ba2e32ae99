package handlers

import "github.com/mailsweep/mailsweep/services"

type APIHandlers struct {
	Scans *ScansHandler
}

func InitHandlers(s *services.Services) *APIHandlers {
	return &APIHandlers{
		Scans: NewScansHandler(s.ScanService, s.GoogleTokenService),
	}
}
