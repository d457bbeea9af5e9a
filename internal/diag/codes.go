package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Нормализация (remarks от трансформаций)
	NormInfo               Code = 1000
	NormCastRemoved        Code = 1001
	NormCastKept           Code = 1002
	NormOverloadPinned     Code = 1003
	NormOverloadNarrowed   Code = 1004
	NormAnnotationConflict Code = 1005
	NormUnresolvedCallee   Code = 1006
	NormUnresolvedType     Code = 1007

	// Файлы юнитов
	UnitInfo          Code = 4000
	UnitLoadError     Code = 4001
	UnitDecodeError   Code = 4002
	UnitInvalidTree   Code = 4003
	UnitCacheMismatch Code = 4004
	UnitWriteError    Code = 4005

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		NormInfo:               "Normalization information",
		NormCastRemoved:        "Redundant cast removed",
		NormCastKept:           "Cast kept: removal would change the promoted type",
		NormOverloadPinned:     "Ambiguous call pinned with explicit casts",
		NormOverloadNarrowed:   "Call resolves to a single overload by argument types",
		NormAnnotationConflict: "Conflicting type annotation refused",
		NormUnresolvedCallee:   "Callee could not be resolved",
		NormUnresolvedType:     "Declaring type could not be resolved",
		UnitInfo:               "Unit information",
		UnitLoadError:          "Unit load error",
		UnitDecodeError:        "Unit decode error",
		UnitInvalidTree:        "Unit tree is malformed",
		UnitCacheMismatch:      "Cached unit does not match its source",
		UnitWriteError:         "Unit write error",
		ObsInfo:                "Observability information",
		ObsTimings:             "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("NRM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("UNT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
