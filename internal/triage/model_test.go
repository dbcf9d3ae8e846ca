package triage

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	for _, p := range Priorities {
		got, err := ParsePriority(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePriority("p0")
	assert.Error(t, err)
	_, err = ParsePriority("")
	assert.Error(t, err)
}

func TestParseComponent(t *testing.T) {
	got, err := ParseComponent("infra")
	require.NoError(t, err)
	assert.Equal(t, ComponentInfra, got)

	_, err = ParseComponent("INFRA")
	assert.ErrorContains(t, err, "allowed: frontend, backend, infra, docs, testing, unknown")
}

func TestIssue_IsTriaged(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   bool
	}{
		{"正常系: ラベルなし", nil, false},
		{"正常系: 優先度以外のラベル", []string{"bug", "enhancement"}, false},
		{"正常系: P2ラベル", []string{"P2"}, true},
		// Pで始まるラベルはすべて優先度ラベルとみなす
		{"正常系: Pで始まる任意のラベル", []string{"bug", "Performance"}, true},
		{"正常系: 小文字のpは対象外", []string{"performance"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := Issue{Labels: tt.labels}
			assert.Equal(t, tt.want, issue.IsTriaged())
		})
	}
}

func TestIssue_HelperMethods(t *testing.T) {
	empty := ""
	bob := "bob"

	issue := Issue{Labels: []string{"bug", "P1"}}
	assert.True(t, issue.HasLabel("bug"))
	assert.False(t, issue.HasLabel("Bug"))
	assert.Equal(t, []string{"P1"}, issue.PriorityLabels())

	assert.False(t, (&Issue{}).IsAssigned())
	assert.False(t, (&Issue{Assignee: &empty}).IsAssigned())
	assert.True(t, (&Issue{Assignee: &bob}).IsAssigned())
}

func TestSession(t *testing.T) {
	s := &Session{}
	assert.False(t, s.HasErrors())

	s.AddError("Error processing issue #%d: %s", 7, "boom")
	assert.True(t, s.HasErrors())
	assert.Equal(t, []string{"Error processing issue #7: boom"}, s.Errors)

	s.Actions = []*Action{
		{Executed: true},
		{Executed: false},
		{Executed: true},
	}
	assert.Equal(t, 2, s.SuccessfulActions())
}

func TestRoster(t *testing.T) {
	roster := Roster{
		Frontend: []string{"fred"},
		Backend:  []string{"alice"},
		Members:  []string{"zoe"},
	}

	t.Run("正常系: IsMember", func(t *testing.T) {
		assert.True(t, roster.IsMember("fred"))
		assert.True(t, roster.IsMember("zoe"))
		assert.False(t, roster.IsMember("mallory"))
		assert.False(t, roster.IsMember(""))
	})

	t.Run("正常系: MemberFor", func(t *testing.T) {
		tests := []struct {
			component Component
			want      string
			ok        bool
		}{
			{ComponentFrontend, "fred", true},
			{ComponentBackend, "alice", true},
			{ComponentInfra, "", false},
			{ComponentDocs, "zoe", true},
			{ComponentUnknown, "zoe", true},
		}
		for _, tt := range tests {
			got, ok := roster.MemberFor(tt.component)
			assert.Equal(t, tt.ok, ok, tt.component)
			assert.Equal(t, tt.want, got, tt.component)
		}
	})
}

func TestAction(t *testing.T) {
	t.Run("正常系: 結果は一度だけ記録される", func(t *testing.T) {
		a := NewAction(5, LabelPayload{Labels: []string{"P1"}}, false)
		assert.False(t, a.Recorded())

		assert.True(t, a.record(true, OutcomeSuccess))
		assert.False(t, a.record(false, "failed"))
		assert.True(t, a.Executed)
		assert.Equal(t, OutcomeSuccess, a.Outcome)
	})

	t.Run("正常系: 種別と説明", func(t *testing.T) {
		assert.Equal(t, ActionKindLabel, NewAction(1, LabelPayload{Labels: []string{"P1", "bug"}}, false).Kind())
		assert.Equal(t, "add labels [P1, bug]", LabelPayload{Labels: []string{"P1", "bug"}}.Describe())
		assert.Equal(t, "assign to alice", AssignPayload{Assignee: "alice"}.Describe())
		assert.Equal(t, ActionKind(""), (&Action{}).Kind())
		assert.Equal(t, "<empty action>", (&Action{}).Describe())
	})

	t.Run("正常系: 長いコメントは省略される", func(t *testing.T) {
		long := make([]byte, 150)
		for i := range long {
			long[i] = 'x'
		}
		desc := CommentPayload{Body: string(long)}.Describe()
		assert.Equal(t, len("comment: ")+100+len("..."), len(desc))
	})

	t.Run("正常系: マルチバイトのコメントも文字単位で省略される", func(t *testing.T) {
		body := strings.Repeat("ログイン障害🔥", 30)
		desc := CommentPayload{Body: body}.Describe()
		assert.True(t, utf8.ValidString(desc))
		preview := strings.TrimSuffix(strings.TrimPrefix(desc, "comment: "), "...")
		assert.Equal(t, 100, utf8.RuneCountInString(preview))
		assert.True(t, strings.HasPrefix(body, preview))
	})

	t.Run("正常系: ParseActionKind", func(t *testing.T) {
		kind, err := ParseActionKind("assign")
		require.NoError(t, err)
		assert.Equal(t, ActionKindAssign, kind)

		_, err = ParseActionKind("close")
		assert.Error(t, err)
	})
}
