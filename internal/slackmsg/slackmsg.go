// Package slackmsg renders casting notifications as Slack mrkdwn text.
package slackmsg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const footer = "--------------------------------------------------"

// Candidate is one cast proposed for a role.
type Candidate struct {
	ProjectName string
	RoleName    string
	Rank        int
	CastName    string
	MentionID   string
	Internal    bool
	Conflict    string
}

func (c Candidate) mention() string { return Mention(c.MentionID, c.CastName) }

// Mention renders a user mention, or the plain name when no id is known.
func Mention(id, fallback string) string {
	if id == "" {
		return fallback
	}
	return "<@" + id + ">"
}

// ConflictNote annotates a cast already booked elsewhere that day.
func ConflictNote(projectName string) string {
	if projectName == "" {
		projectName = "不明"
	}
	return fmt.Sprintf("同日に別の撮影があります（%s）", projectName)
}

// OrderParams feeds the full order message.
type OrderParams struct {
	Mode           string
	MentionGroupID string
	CC             string
	Dates          []string
	AccountName    string
	Candidates     []Candidate
	TrackerURL     string
}

// Order renders a new order thread starter.
func Order(p OrderParams) string {
	shooting := p.Mode == "" || p.Mode == "shooting"
	var lines []string

	if p.MentionGroupID != "" {
		lines = append(lines, "<!subteam^"+p.MentionGroupID+">")
	}
	if p.CC != "" {
		lines = append(lines, "cc: "+p.CC)
	}
	if p.MentionGroupID != "" || p.CC != "" {
		lines = append(lines, "")
	}

	switch {
	case shooting:
		lines = append(lines, "キャスティングオーダーがありました。")
	case p.Mode == "external":
		lines = append(lines, "外部案件のオーダーがありました。")
	default:
		lines = append(lines, "社内イベントのオーダーがありました。")
	}
	if hasInternal(p.Candidates) {
		lines = append(lines, "*内部キャストはスタンプで反応ください*")
	}

	dateLabel := "日程"
	if shooting {
		dateLabel = "撮影日"
	}
	lines = append(lines, "", "`"+dateLabel+"`")
	for _, d := range p.Dates {
		lines = append(lines, "・"+d)
	}

	lines = append(lines, "", "`アカウント`", orDefault(p.AccountName, "未入力"))
	lines = append(lines, "", "`作品名`", orDefault(strings.Join(projectNames(p.Candidates), "/"), "未定"))

	lines = append(lines, "", "`役名`")
	for _, project := range group(p.Candidates) {
		lines = append(lines, "【"+project.name+"】")
		for _, role := range project.roles {
			lines = append(lines, "  "+role.name)
			for _, c := range role.candidates {
				lines = append(lines, fmt.Sprintf("    第%d候補：%s", c.Rank, c.mention()))
				if c.Conflict != "" {
					lines = append(lines, "    🚨 "+c.Conflict)
				}
			}
		}
	}

	if p.TrackerURL != "" {
		lines = append(lines, "", "`Notionリンク`", p.TrackerURL)
	}
	lines = append(lines, "", footer)
	return strings.Join(lines, "\n")
}

// AdditionalParams feeds the compact reply used when an order joins an existing thread.
type AdditionalParams struct {
	MentionGroupID string
	Candidates     []Candidate
}

func AdditionalOrder(p AdditionalParams) string {
	var lines []string
	if p.MentionGroupID != "" {
		lines = append(lines, "<!subteam^"+p.MentionGroupID+">", "")
	}
	lines = append(lines, "追加オーダーのお知らせ")
	if hasInternal(p.Candidates) {
		lines = append(lines, "*内部キャストはスタンプで反応ください*")
	}
	lines = append(lines, "")

	for _, project := range group(p.Candidates) {
		lines = append(lines, "【"+project.name+"】")
		for _, role := range project.roles {
			names := make([]string, 0, len(role.candidates))
			for _, c := range role.candidates {
				names = append(names, c.mention())
			}
			lines = append(lines, role.name+"："+strings.Join(names, " / "))
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SpecialParams feeds external engagement and internal event orders.
type SpecialParams struct {
	Mode       string
	Title      string
	Dates      []string
	StartTime  string
	EndTime    string
	Candidates []Candidate
	CCMention  string
}

func SpecialOrder(p SpecialParams) string {
	var lines []string
	if p.Mode == "external" {
		lines = append(lines, "【外部案件】")
	} else {
		lines = append(lines, "【社内イベント】")
	}

	lines = append(lines, "`タイトル`", orDefault(p.Title, "未入力"))
	lines = append(lines, "`日時`", orDefault(strings.Join(p.Dates, ", "), "未入力"))
	if p.StartTime != "" || p.EndTime != "" {
		var parts []string
		for _, t := range []string{p.StartTime, p.EndTime} {
			if t != "" {
				parts = append(parts, t)
			}
		}
		lines = append(lines, "`時間`", strings.Join(parts, " ~ "))
	}

	lines = append(lines, "", "`キャスト`")
	for _, c := range p.Candidates {
		label := ""
		if p.Mode == "internal" && c.Internal {
			label = " （内部）"
		}
		lines = append(lines, "・"+c.mention()+label)
		if c.Conflict != "" {
			lines = append(lines, "  🚨 "+c.Conflict)
		}
	}

	if p.CCMention != "" {
		lines = append(lines, "", "CC: "+p.CCMention)
	}
	return strings.Join(lines, "\n")
}

// StatusParams feeds a status change reply. Statuses are display labels.
type StatusParams struct {
	CastName  string
	OldStatus string
	NewStatus string
	Cost      int64
	Note      string
}

func StatusChange(p StatusParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* のステータスが変更されました\n", statusEmoji(p.NewStatus), p.CastName)
	fmt.Fprintf(&b, "`%s` → `%s`", p.OldStatus, p.NewStatus)
	if p.Cost > 0 {
		b.WriteString("\nギャラ: ¥" + groupThousands(p.Cost))
	}
	if p.Note != "" {
		b.WriteString("\n備考: " + p.Note)
	}
	return b.String()
}

func statusEmoji(label string) string {
	switch label {
	case "OK":
		return "✅"
	case "決定":
		return "🎉"
	case "NG":
		return "❌"
	case "キャンセル":
		return "🚫"
	case "条件つきOK":
		return "🟡"
	}
	return "📝"
}

// Change is a before/after pair of one edited field.
type Change struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UpdateParams feeds the order edit reply. Changes is keyed by field name:
// projectName, startDate, endDate, startTime, endTime.
type UpdateParams struct {
	CastName    string
	ProjectName string
	Changes     map[string]Change
}

var updateLines = []struct{ key, label string }{
	{"projectName", "作品名"},
	{"startDate", "日程"},
	{"endDate", "終了日"},
	{"startTime", "開始時間"},
	{"endTime", "終了時間"},
}

func OrderUpdate(p UpdateParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *オーダー内容が変更されました*\nキャスト: %s（%s）\n", p.CastName, p.ProjectName)
	b.WriteString("\n`変更内容`\n")
	for _, l := range updateLines {
		if c, ok := p.Changes[l.key]; ok {
			fmt.Fprintf(&b, "・%s: %s → %s\n", l.label, c.From, c.To)
		}
	}
	return strings.TrimSpace(b.String())
}

func Deletion(castName, projectName string) string {
	return fmt.Sprintf("🗑️ *%s* のキャスティングが削除されました（%s）", castName, projectName)
}

type roleGroup struct {
	name       string
	candidates []Candidate
}

type projectGroup struct {
	name  string
	roles []*roleGroup
}

// group buckets candidates by project then role in first-seen order, with
// each role's candidates sorted by rank.
func group(cands []Candidate) []*projectGroup {
	var projects []*projectGroup
	byProject := map[string]*projectGroup{}
	byRole := map[[2]string]*roleGroup{}

	for _, c := range cands {
		pg, ok := byProject[c.ProjectName]
		if !ok {
			pg = &projectGroup{name: c.ProjectName}
			byProject[c.ProjectName] = pg
			projects = append(projects, pg)
		}
		key := [2]string{c.ProjectName, c.RoleName}
		rg, ok := byRole[key]
		if !ok {
			rg = &roleGroup{name: c.RoleName}
			byRole[key] = rg
			pg.roles = append(pg.roles, rg)
		}
		rg.candidates = append(rg.candidates, c)
	}

	for _, pg := range projects {
		for _, rg := range pg.roles {
			sort.SliceStable(rg.candidates, func(i, j int) bool {
				return rg.candidates[i].Rank < rg.candidates[j].Rank
			})
		}
	}
	return projects
}

func projectNames(cands []Candidate) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range cands {
		if !seen[c.ProjectName] {
			seen[c.ProjectName] = true
			out = append(out, c.ProjectName)
		}
	}
	return out
}

func hasInternal(cands []Candidate) bool {
	for _, c := range cands {
		if c.Internal {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
