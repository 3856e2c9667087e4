package storage

import (
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// Service wraps a Store and notifies listeners after every mutation.
// The mirror regeneration hangs off these notifications so the table is
// rebuilt from the full authoritative history after each change.
type Service struct {
	store    Store
	onChange []func()
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// OnChange registers a hook invoked after every successful Add, Delete
// or Write.
func (s *Service) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *Service) Read() ([]models.HistoryEntry, error) {
	return s.store.Read()
}

func (s *Service) Write(entries []models.HistoryEntry) error {
	if err := s.store.Write(entries); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Service) Add(entry models.HistoryEntry) error {
	if err := s.store.Add(entry); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Service) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Service) notify() {
	for _, fn := range s.onChange {
		fn()
	}
}
