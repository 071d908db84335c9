package domain

import (
	"fmt"

	"casting_ops_backend/platform/apperr"
)

// CastType separates in-house talent from agency talent.
type CastType string

const (
	CastInternal CastType = "internal"
	CastExternal CastType = "external"
)

func (c CastType) Valid() bool { return c == CastInternal || c == CastExternal }

func (c CastType) Label() string {
	switch c {
	case CastInternal:
		return "内部"
	case CastExternal:
		return "外部"
	}
	return string(c)
}

// Tier is the billing position of a cast on a project.
type Tier string

const (
	TierMain  Tier = "main"
	TierSub   Tier = "sub"
	TierOther Tier = "other"
)

func (t Tier) Valid() bool { return t == TierMain || t == TierSub || t == TierOther }

func (t Tier) Label() string {
	switch t {
	case TierMain:
		return "メイン"
	case TierSub:
		return "サブ"
	}
	return "その他"
}

// Mode is the kind of order being submitted.
type Mode string

const (
	ModeShooting Mode = "shooting"
	ModeExternal Mode = "external"
	ModeInternal Mode = "internal"
)

func (m Mode) Valid() bool { return m == ModeShooting || m == ModeExternal || m == ModeInternal }

// Special reports the external engagement and internal event order forms.
func (m Mode) Special() bool { return m == ModeExternal || m == ModeInternal }

// ParseMode defaults an empty mode to a shooting order.
func ParseMode(raw string) (Mode, error) {
	if raw == "" {
		return ModeShooting, nil
	}
	m := Mode(raw)
	if !m.Valid() {
		return "", apperr.Validation(fmt.Sprintf("unknown order mode %q", raw))
	}
	return m, nil
}
