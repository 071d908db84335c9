package slackmsg

import (
	"strings"
	"testing"
)

func TestOrderGroupsCandidatesByProjectAndRole(t *testing.T) {
	msg := Order(OrderParams{
		Mode:           "shooting",
		MentionGroupID: "S1",
		CC:             "CD: <@U9> / P: Team",
		Dates:          []string{"2026/02/01"},
		AccountName:    "acct",
		Candidates: []Candidate{
			{ProjectName: "Spring", RoleName: "Lead", Rank: 2, CastName: "B"},
			{ProjectName: "Spring", RoleName: "Lead", Rank: 1, CastName: "A", MentionID: "UA", Internal: true, Conflict: ConflictNote("Winter")},
			{ProjectName: "Spring", RoleName: "Friend", Rank: 1, CastName: "C"},
		},
		TrackerURL: "https://www.notion.so/abc",
	})

	want := strings.Join([]string{
		"<!subteam^S1>",
		"cc: CD: <@U9> / P: Team",
		"",
		"キャスティングオーダーがありました。",
		"*内部キャストはスタンプで反応ください*",
		"",
		"`撮影日`",
		"・2026/02/01",
		"",
		"`アカウント`",
		"acct",
		"",
		"`作品名`",
		"Spring",
		"",
		"`役名`",
		"【Spring】",
		"  Lead",
		"    第1候補：<@UA>",
		"    🚨 同日に別の撮影があります（Winter）",
		"    第2候補：B",
		"  Friend",
		"    第1候補：C",
		"",
		"`Notionリンク`",
		"https://www.notion.so/abc",
		"",
		footer,
	}, "\n")
	if msg != want {
		t.Fatalf("unexpected message:\n%s\n---\nwant:\n%s", msg, want)
	}
}

func TestOrderDefaultsAndSpecialHeaders(t *testing.T) {
	msg := Order(OrderParams{Mode: "external", Candidates: []Candidate{{RoleName: "r", Rank: 1, CastName: "x"}}})
	for _, want := range []string{"外部案件のオーダーがありました。", "`日程`", "未入力"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("missing %q in:\n%s", want, msg)
		}
	}
	if strings.HasPrefix(msg, "\n") {
		t.Fatal("no leading blank line without mention or cc")
	}
}

func TestAdditionalOrder(t *testing.T) {
	msg := AdditionalOrder(AdditionalParams{
		Candidates: []Candidate{
			{ProjectName: "Spring", RoleName: "Lead", Rank: 2, CastName: "B"},
			{ProjectName: "Spring", RoleName: "Lead", Rank: 1, CastName: "A", MentionID: "UA"},
		},
	})
	want := "追加オーダーのお知らせ\n\n【Spring】\nLead：<@UA> / B"
	if msg != want {
		t.Fatalf("got %q want %q", msg, want)
	}
}

func TestSpecialOrder(t *testing.T) {
	msg := SpecialOrder(SpecialParams{
		Mode:      "internal",
		Title:     "Launch party",
		Dates:     []string{"2026/02/01", "2026/02/03"},
		StartTime: "18:00",
		Candidates: []Candidate{
			{CastName: "A", Internal: true, Conflict: ConflictNote("")},
			{CastName: "B", MentionID: "UB"},
		},
		CCMention: "<@UC>",
	})
	want := strings.Join([]string{
		"【社内イベント】",
		"`タイトル`",
		"Launch party",
		"`日時`",
		"2026/02/01, 2026/02/03",
		"`時間`",
		"18:00",
		"",
		"`キャスト`",
		"・A （内部）",
		"  🚨 同日に別の撮影があります（不明）",
		"・<@UB>",
		"",
		"CC: <@UC>",
	}, "\n")
	if msg != want {
		t.Fatalf("unexpected message:\n%s", msg)
	}
}

func TestStatusChange(t *testing.T) {
	msg := StatusChange(StatusParams{CastName: "A", OldStatus: "仮押さえ", NewStatus: "決定", Cost: 1234567, Note: "early call"})
	want := "🎉 *A* のステータスが変更されました\n`仮押さえ` → `決定`\nギャラ: ¥1,234,567\n備考: early call"
	if msg != want {
		t.Fatalf("got %q", msg)
	}
	if !strings.HasPrefix(StatusChange(StatusParams{NewStatus: "打診中"}), "📝") {
		t.Fatal("default emoji expected")
	}
}

func TestOrderUpdateListsChangesInFixedOrder(t *testing.T) {
	msg := OrderUpdate(UpdateParams{
		CastName:    "A",
		ProjectName: "Spring",
		Changes: map[string]Change{
			"startTime":   {From: "", To: "09:00"},
			"startDate":   {From: "2026-02-01", To: "2026-03-10"},
			"projectName": {From: "Spring", To: "Summer"},
		},
	})
	want := "📅 *オーダー内容が変更されました*\nキャスト: A（Spring）\n\n`変更内容`\n" +
		"・作品名: Spring → Summer\n・日程: 2026-02-01 → 2026-03-10\n・開始時間:  → 09:00"
	if msg != want {
		t.Fatalf("got %q", msg)
	}
}

func TestDeletion(t *testing.T) {
	if got := Deletion("A", "Spring"); got != "🗑️ *A* のキャスティングが削除されました（Spring）" {
		t.Fatalf("got %q", got)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Fatalf("groupThousands(%d) = %q", in, got)
		}
	}
}
