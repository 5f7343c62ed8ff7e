// Package allocation decide qué unidades consumir para cubrir un volumen requerido.
// Es lógica pura: recibe una foto de candidatos ya ordenados FEFO y devuelve un plan, sin I/O.
package allocation

import (
	"errors"
	"fmt"

	"github.com/jhoicas/lifeflow-api/internal/domain/entity"
)

var (
	// ErrInfeasible la suma de volumen disponible no alcanza el requerido.
	ErrInfeasible = errors.New("allocation: volumen disponible insuficiente")
	// ErrInvalidVolume el volumen requerido debe ser positivo.
	ErrInvalidVolume = errors.New("allocation: volumen requerido inválido")
	// ErrInvalidCandidate un candidato sin volumen nunca debe llegar al algoritmo.
	ErrInvalidCandidate = errors.New("allocation: candidato sin volumen")
)

// Candidate unidad elegible con su volumen restante.
type Candidate struct {
	UnitID    string
	Remaining int
}

// Step consumo de una unidad dentro del plan.
type Step struct {
	UnitID    string
	Take      int // volumen a restar, > 0
	Remaining int // volumen resultante tras restar Take
}

// Plan lista ordenada de consumos cuya suma es exactamente Required.
type Plan struct {
	Required int
	Steps    []Step
}

// Total suma de los volúmenes consumidos.
func (p Plan) Total() int {
	total := 0
	for _, s := range p.Steps {
		total += s.Take
	}
	return total
}

// Candidates construye candidatos a partir de unidades en el orden recibido.
func Candidates(units []*entity.InventoryUnit) []Candidate {
	out := make([]Candidate, 0, len(units))
	for _, u := range units {
		out = append(out, Candidate{UnitID: u.ID, Remaining: u.RemainingVolume})
	}
	return out
}

// Allocate recorre los candidatos en el orden dado tomando min(restante, requerido - tomado)
// y se detiene en cuanto tomado == requerido. Para una misma foto el plan es siempre el mismo.
func Allocate(required int, candidates []Candidate) (Plan, error) {
	if required <= 0 {
		return Plan{}, ErrInvalidVolume
	}

	plan := Plan{Required: required}
	taken := 0
	for _, c := range candidates {
		if taken == required {
			break
		}
		if c.Remaining <= 0 {
			return Plan{}, fmt.Errorf("%w: unidad %s", ErrInvalidCandidate, c.UnitID)
		}
		take := min(c.Remaining, required-taken)
		taken += take
		plan.Steps = append(plan.Steps, Step{
			UnitID:    c.UnitID,
			Take:      take,
			Remaining: c.Remaining - take,
		})
	}

	if taken < required {
		return Plan{}, fmt.Errorf("%w: disponible %d ml, requerido %d ml", ErrInfeasible, taken, required)
	}
	return plan, nil
}

// Deltas traduce el plan a actualizaciones de unidades (stored -> exhausted al llegar a 0).
func (p Plan) Deltas() []entity.UnitDelta {
	deltas := make([]entity.UnitDelta, 0, len(p.Steps))
	for _, s := range p.Steps {
		deltas = append(deltas, entity.UnitDelta{
			UnitID:       s.UnitID,
			NewRemaining: s.Remaining,
			NewStatus:    entity.StatusForVolume(entity.UnitStatusStored, s.Remaining),
		})
	}
	return deltas
}
