package auth

type Phase string

const (
	PhaseAnonymous      Phase = "anonymous"
	PhaseAuthenticating Phase = "authenticating"
	PhaseAuthenticated  Phase = "authenticated"
)

// Session is one client's sign-in state. It changes only through the
// transition methods below.
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"-"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	IsLoading       bool   `json:"isLoading"`
}

func (s Session) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseAuthenticating
	case s.IsAuthenticated:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// begin covers both login and registration start.
func (s *Session) begin() {
	s.IsLoading = true
}

func (s *Session) succeed(u User, token string) {
	s.User = &u
	s.Token = token
	s.IsAuthenticated = true
	s.IsLoading = false
}

func (s *Session) fail() {
	*s = Session{}
}

func (s *Session) logout() {
	*s = Session{}
}

// load restores a persisted session without passing through authenticating.
func (s *Session) load(u User, token string) {
	s.succeed(u, token)
}

func (s *Session) replaceUser(u User) bool {
	if s.User == nil {
		return false
	}
	s.User = &u
	return true
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
