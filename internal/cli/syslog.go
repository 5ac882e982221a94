package cli

import (
	"log"

	"github.com/kardianos/service"
)

// program satisfies service.Interface. guessmac never runs as a service; it
// only borrows the service package's access to the system logger.
type program struct{}

func (program) Start(service.Service) error { return nil }
func (program) Stop(service.Service) error  { return nil }

func systemLogger() (service.Logger, error) {
	s, err := service.New(program{}, &service.Config{
		Name:        "guessmac",
		DisplayName: "guessmac",
		Description: "Guesses the primary MAC address of the host.",
	})
	if err != nil {
		return nil, err
	}

	errs := make(chan error, 5)
	l, err := s.Logger(errs)
	if err != nil {
		return nil, err
	}
	go func() {
		for err := range errs {
			log.Print(err)
		}
	}()
	return l, nil
}
