package scratch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zeptools/invoicing-core/svc"
)

// Sweeper is the background service that clears expired scratch files.
type Sweeper struct {
	Ctx    context.Context    // Service Context
	cancel context.CancelFunc // Service Context CancelFunc
	state  int                // internal service state
	done   chan error         // Shutdown Error Channel
	dir    *Dir
	cycle  time.Duration
}

var _ svc.Service = (*Sweeper)(nil)

func NewSweeper(parentCtx context.Context, dir *Dir, cycle time.Duration) *Sweeper {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Sweeper{
		Ctx:    svcCtx,
		cancel: svcCancel,
		state:  svc.StateREADY,
		done:   make(chan error, 1),
		dir:    dir,
		cycle:  cycle,
	}
}

func (s *Sweeper) Name() string {
	return "ScratchSweeper"
}

func (s *Sweeper) Start() error {
	if s.state == svc.StateRUNNING {
		return fmt.Errorf("already started")
	}
	if s.state != svc.StateREADY {
		return fmt.Errorf("cannot start. not ready")
	}
	s.state = svc.StateRUNNING
	log.Printf("[INFO][Scratch] sweeper started cycle=%v ttl=%v root=%s", s.cycle, s.dir.TTL, s.dir.Root)
	go s.run()
	return nil
}

func (s *Sweeper) Stop() {
	if s.state != svc.StateRUNNING {
		log.Println("[ERROR][Scratch] cannot stop. not running")
		return
	}
	s.cancel()
	s.state = svc.StateSTOPPED
	log.Println("[INFO][Scratch] sweeper stopped")
}

func (s *Sweeper) Done() <-chan error {
	return s.done
}

func (s *Sweeper) run() {
	ticker := time.NewTicker(s.cycle)
	defer ticker.Stop()
	for {
		select {
		case <-s.Ctx.Done():
			log.Println("[INFO][Scratch] stopping sweeper")
			s.done <- nil
			return
		case now := <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[PANIC] recovered in scratch sweeper: %v", r)
					}
				}()
				removed, err := s.dir.SweepOlderThan(now.Add(-s.dir.TTL))
				if err != nil {
					log.Printf("[ERROR][Scratch] sweep failed: %v", err)
					return
				}
				if removed > 0 {
					log.Printf("[INFO][Scratch] swept %d expired artifacts", removed)
				}
			}()
		}
	}
}
