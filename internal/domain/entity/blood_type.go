package entity

import (
	"fmt"
	"strings"
)

// BloodType grupo ABO/Rh de una unidad, un donante o una solicitud.
type BloodType string

// Los 8 grupos sanguíneos admitidos.
const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

var bloodTypes = map[BloodType]struct{}{
	BloodTypeAPos: {}, BloodTypeANeg: {},
	BloodTypeBPos: {}, BloodTypeBNeg: {},
	BloodTypeABPos: {}, BloodTypeABNeg: {},
	BloodTypeOPos: {}, BloodTypeONeg: {},
}

// Valid indica si el grupo es uno de los 8 admitidos.
func (b BloodType) Valid() bool {
	_, ok := bloodTypes[b]
	return ok
}

func (b BloodType) String() string { return string(b) }

// ParseBloodType normaliza entradas como " o+ " u "ab-".
func ParseBloodType(s string) (BloodType, error) {
	b := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("grupo sanguíneo inválido: %q", s)
	}
	return b, nil
}
