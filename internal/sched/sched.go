package sched

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oakwellhq/chatgate/internal/quota"
)

// Service clears all quota counters at UTC midnight. Deployments that run an
// external scheduler against POST /admin/reset can disable it.
type Service struct {
	cron  *cron.Cron
	guard *quota.Guard
}

func New(guard *quota.Guard) *Service {
	return &Service{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		guard: guard,
	}
}

func (s *Service) Start() error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.guard.ResetAll(ctx); err != nil {
			log.Printf("[sched] daily quota reset failed: %v", err)
			return
		}
		log.Printf("[sched] daily quota reset done")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[sched] daily quota reset scheduled at 00:00 UTC")
	return nil
}

func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}
