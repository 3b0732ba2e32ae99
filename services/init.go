package services

import (
	"github.com/mailsweep/mailsweep/config"
	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/logger"
	"github.com/mailsweep/mailsweep/internal/repository"
	"github.com/mailsweep/mailsweep/services/events"
	"github.com/mailsweep/mailsweep/services/gmail"
	"github.com/mailsweep/mailsweep/services/google"
	"github.com/mailsweep/mailsweep/services/scan"
)

type Services struct {
	EventsService      *events.EventsService
	GoogleTokenService interfaces.GoogleTokenService
	GmailClient        interfaces.GmailClient
	ScanService        interfaces.ScanService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	services := &Services{
		GoogleTokenService: google.NewGoogleTokenService(cfg.GoogleConfig, repos),
		GmailClient:        gmail.NewGmailClient(cfg.GoogleConfig),
	}

	// RabbitMQ is optional; without it progress is poll-only
	var publisher interfaces.ScanEventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		publisherConfig := &events.PublisherConfig{
			MessageTTL:          events.DefaultMessageTTL,
			MaxRetries:          events.DefaultMaxRetries,
			PublishTimeout:      events.DefaultPublishTimeout,
			ReconnectBackoff:    events.DefaultReconnectBackoff,
			MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
		}

		eventsService, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
		if err != nil {
			return nil, err
		}
		services.EventsService = eventsService
		publisher = eventsService.Publisher
	}

	services.ScanService = scan.NewScanService(log, repos, services.GmailClient, services.GoogleTokenService, publisher)

	return services, nil
}

func (s *Services) Close() error {
	if s.EventsService != nil {
		return s.EventsService.Close()
	}
	return nil
}
