package triage

// Roster はプロンプトに埋め込むチーム構成
type Roster struct {
	Frontend []string
	Backend  []string
	Infra    []string
	Members  []string
}

// IsMember はユーザーがいずれかのチームに所属しているかを判定する
func (r Roster) IsMember(username string) bool {
	if username == "" {
		return false
	}
	for _, team := range [][]string{r.Members, r.Frontend, r.Backend, r.Infra} {
		for _, member := range team {
			if member == username {
				return true
			}
		}
	}
	return false
}

// MemberFor はコンポーネントを担当するチームの先頭メンバーを返す。
// 担当チームがないコンポーネントは全メンバーの先頭を返す。
func (r Roster) MemberFor(component Component) (string, bool) {
	team := r.Members
	switch component {
	case ComponentFrontend:
		team = r.Frontend
	case ComponentBackend:
		team = r.Backend
	case ComponentInfra:
		team = r.Infra
	}
	if len(team) == 0 {
		return "", false
	}
	return team[0], true
}
