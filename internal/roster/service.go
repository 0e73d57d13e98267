package roster

import "context"

// RepositoryPort defines data access methods for the roster.
type RepositoryPort interface {
	ListActive(ctx context.Context) ([]Person, error)
}

// Service handles roster lookups.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ActivePeople returns the active roster entries.
func (s *Service) ActivePeople(ctx context.Context) ([]Person, error) {
	return s.repo.ListActive(ctx)
}

// ActiveNames returns just the active names, in roster order.
func (s *Service) ActiveNames(ctx context.Context) ([]string, error) {
	people, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names, nil
}
