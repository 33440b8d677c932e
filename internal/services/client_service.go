package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"gorm.io/gorm"
)

// ClientService manages borrowers and their reputation
type ClientService struct {
	repos   *repository.Repositories
	audit   *AuditService
	advisor Advisor
	now     func() time.Time
}

func NewClientService(repos *repository.Repositories, audit *AuditService, advisor Advisor) *ClientService {
	return &ClientService{repos: repos, audit: audit, advisor: advisor, now: time.Now}
}

// CreateClientInput is the data collected when registering a client.
// CollectorID is required when a provider or admin registers the client.
type CreateClientInput struct {
	FullName    string `json:"full_name" binding:"required"`
	Identity    string `json:"identity"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CollectorID uint   `json:"collector_id"`
}

// Create registers a client on a collector's route
func (s *ClientService) Create(ctx context.Context, actor Actor, input CreateClientInput) (*models.Client, error) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, newError(KindValidation, "el nombre del cliente es obligatorio")
	}

	collectorID, providerID, err := s.assignment(ctx, actor, input.CollectorID)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		CollectorID: collectorID,
		ProviderID:  providerID,
		FullName:    name,
		Identity:    strings.TrimSpace(input.Identity),
		Phone:       strings.TrimSpace(input.Phone),
		Address:     strings.TrimSpace(input.Address),
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Client.Create(ctx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		return s.audit.Record(ctx, tx.Audit, actor, models.AuditActionCreate, "client", client.ID, client.FullName)
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return client, nil
}

// assignment resolves which collector and provider a new client belongs to
func (s *ClientService) assignment(ctx context.Context, actor Actor, collectorID uint) (uint, uint, error) {
	if actor.Role == models.RoleCollector {
		if actor.ProviderID == 0 {
			return 0, 0, newError(KindConfiguration, "el cobrador no está asignado a un proveedor")
		}
		return actor.UserID, actor.ProviderID, nil
	}

	if collectorID == 0 {
		return 0, 0, newError(KindValidation, "debe indicar el cobrador del cliente")
	}
	collector, err := s.repos.User.FindByID(ctx, collectorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, notFound("cobrador")
	}
	if err != nil {
		return 0, 0, err
	}
	if !collector.IsCollector() || collector.ProviderID == nil {
		return 0, 0, newError(KindValidation, "el usuario indicado no es un cobrador asignado a un proveedor")
	}
	if !actor.CanViewCollector(collector) {
		return 0, 0, ErrForbidden
	}
	return collector.ID, *collector.ProviderID, nil
}

// Get returns a client visible to the actor
func (s *ClientService) Get(ctx context.Context, actor Actor, id uint) (*models.Client, error) {
	client, err := s.repos.Client.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("cliente")
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessClient(client) {
		return nil, ErrForbidden
	}
	return client, nil
}

// ListByCollector returns the clients on a collector's route
func (s *ClientService) ListByCollector(ctx context.Context, actor Actor, collectorID uint) ([]models.Client, error) {
	if actor.Role == models.RoleCollector && actor.UserID != collectorID {
		return nil, ErrForbidden
	}
	clients, err := s.repos.Client.FindByCollector(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleProvider {
		visible := clients[:0]
		for _, c := range clients {
			if actor.CanAccessClient(&c) {
				visible = append(visible, c)
			}
		}
		clients = visible
	}
	return clients, nil
}

// Reputation scores the client's repayment history and stores the score
func (s *ClientService) Reputation(ctx context.Context, actor Actor, clientID uint) (*Advice, error) {
	client, err := s.Get(ctx, actor, clientID)
	if err != nil {
		return nil, err
	}

	credits, err := s.repos.Credit.FindByClient(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client credits: %w", err)
	}
	ids := make([]uint, len(credits))
	for i, c := range credits {
		ids[i] = c.ID
	}
	payments, err := s.repos.Payment.FindByCredits(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load client payments: %w", err)
	}

	input := AdviceInput{ClientID: client.ID, AsOf: s.now()}
	for _, c := range credits {
		input.Credits = append(input.Credits, CreditHistory{Credit: c, Payments: payments[c.ID]})
	}

	advice, err := s.advisor.Advise(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to score client: %w", err)
	}
	if err := s.repos.Client.UpdateReputation(ctx, client.ID, advice.Score, input.AsOf); err != nil {
		return nil, fmt.Errorf("failed to store reputation: %w", err)
	}
	return advice, nil
}
