package usecase

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"plate-backend/internal/domain"
)

type MetroRepo interface {
	ListMetroCounts() ([]domain.MetroAreaCounts, error)
	InsertAlert(*domain.AdminAlert) error
}

// MetroService handles the database-trigger webhook for metro counter
// updates. Default caps apply when the trigger payload carries none.
type MetroService struct {
	Repo            MetroRepo
	DefaultMakerCap int
	DefaultTakerCap int
}

// CapUpdate is the trigger payload shape: {type, record, old_record}.
type CapUpdate struct {
	Type      string                  `json:"type"`
	Record    *domain.MetroAreaCounts `json:"record"`
	OldRecord *domain.MetroAreaCounts `json:"old_record"`
}

// HandleCapUpdate writes one admin alert per counter that crossed its cap in
// this update. Edge-triggered: old below cap and new at-or-above; a counter
// sitting at the cap across updates never re-alerts. The returned message is
// echoed in the acknowledgement body.
func (s *MetroService) HandleCapUpdate(u CapUpdate) (string, error) {
	if u.Type != "UPDATE" || u.Record == nil || u.OldRecord == nil {
		return "ignored: not a counter update", nil
	}
	rec, old := *u.Record, *u.OldRecord

	makerCap := rec.MakerCap
	if makerCap <= 0 {
		makerCap = s.DefaultMakerCap
	}
	takerCap := rec.TakerCap
	if takerCap <= 0 {
		takerCap = s.DefaultTakerCap
	}

	alerted := 0
	if crossed(old.MakerCount, rec.MakerCount, makerCap) {
		if err := s.alert("maker_cap_reached", rec.MetroArea, rec.MakerCount, makerCap); err != nil {
			return "", err
		}
		alerted++
	}
	if crossed(old.TakerCount, rec.TakerCount, takerCap) {
		if err := s.alert("taker_cap_reached", rec.MetroArea, rec.TakerCount, takerCap); err != nil {
			return "", err
		}
		alerted++
	}
	if alerted == 0 {
		return "ignored: no cap crossing", nil
	}
	return fmt.Sprintf("alerted: %d cap crossing(s) in %s", alerted, rec.MetroArea), nil
}

func (s *MetroService) alert(kind, metro string, count, limit int) error {
	a := &domain.AdminAlert{
		ID:        uuid.NewString(),
		Kind:      kind,
		MetroArea: metro,
		Message:   fmt.Sprintf("%s in %s: %d/%d", kind, metro, count, limit),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.InsertAlert(a); err != nil {
		return err
	}
	log.Printf("[metro] %s", a.Message)
	return nil
}

func crossed(prev, curr, limit int) bool {
	return limit > 0 && prev < limit && curr >= limit
}
