package model

// Identity is either Anonymous (the zero value) or Named.
type Identity struct {
	username string
}

func Anonymous() Identity { return Identity{} }

func Named(username string) Identity { return Identity{username: username} }

func (i Identity) IsAnonymous() bool { return i.username == "" }

func (i Identity) Username() string { return i.username }

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return i.username
}
