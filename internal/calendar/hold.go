package calendar

import (
	"fmt"
	"strings"
)

// Timing places a hold on the calendar. Dates are YYYY-MM-DD and inclusive;
// the event is timed only when both clock times are set.
type Timing struct {
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
}

func (t Timing) timed() bool { return t.StartTime != "" && t.EndTime != "" }

// Hold is a calendar placeholder for one internal cast booking.
type Hold struct {
	Timing
	BookingID   string
	AccountName string
	ProjectName string
	RoleName    string
	TierLabel   string
	CastName    string
	CastEmail   string
	Rank        int
	StatusLabel string
	Confirmed   bool
}

// Summary renders the event title. Provisional holds carry the rank and
// status label; confirmed holds drop both.
func (h Hold) Summary() string {
	if h.Confirmed {
		return h.AccountName + "_決定キャスティング"
	}
	rank := ""
	if h.Rank > 0 {
		rank = fmt.Sprintf("_%d候補", h.Rank)
	}
	return fmt.Sprintf("%s%s_%s", h.AccountName, rank, h.StatusLabel)
}

func (h Hold) Description() string {
	role := h.RoleName
	if role == "" {
		role = "出演"
	}
	tier := h.TierLabel
	if tier == "" {
		tier = "その他"
	}

	lines := []string{
		"【キャスティング仮ホールド】",
		"",
		"・アカウント: " + h.AccountName,
		"・作品名: " + h.ProjectName,
		"・役名: " + role,
		"・区分: " + tier,
		"・キャスト: " + h.CastName,
	}
	if h.BookingID != "" {
		lines = append(lines, "・キャスティングID: "+h.BookingID)
	}
	lines = append(lines,
		"・ステータス: "+h.StatusLabel,
		"",
		"この予定はキャスティング管理システムから自動作成されています。",
		"ステータス変更時にはシステム側で更新される場合があります。",
	)
	return strings.Join(lines, "\n")
}

// Patch selects what PatchHold rewrites. A nil field is left untouched.
type Patch struct {
	Text   *Hold
	Timing *Timing
}
