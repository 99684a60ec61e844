package domain

// Player wraps the User that plays.
type Player struct {
	ID   int64 `json:"id"`
	User *User `json:"user"`
}

func NewPlayer(id int64, user *User) (*Player, error) {
	if user == nil {
		return nil, ErrPlayerUserRequired
	}
	return &Player{ID: id, User: user}, nil
}

func (p *Player) Equal(o *Player) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.ID == o.ID && p.User.Equal(o.User)
}

// Coach wraps the User that coaches. A coach leads zero or more teams.
type Coach struct {
	ID   int64 `json:"id"`
	User *User `json:"user"`
}

func NewCoach(id int64, user *User) (*Coach, error) {
	if user == nil {
		return nil, ErrCoachUserRequired
	}
	return &Coach{ID: id, User: user}, nil
}

func (c *Coach) Equal(o *Coach) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.ID == o.ID && c.User.Equal(o.User)
}
